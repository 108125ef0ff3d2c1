package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/beaconsafety/beacon-server/internal/models"
	"github.com/beaconsafety/beacon-server/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileServiceInterface
}

func NewProfileHandler(profileService services.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	ProfileType *string `json:"profile_type"`
	PhotoURL    *string `json:"photo_url"`
}

type ProfileResponse struct {
	Profile *models.UserProfile `json:"profile"`
}

type ProfileSearchResponse struct {
	Profiles []models.UserProfile `json:"profiles"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	profileID := r.PathValue("id")
	if profileID == "" {
		writeError(w, http.StatusBadRequest, "Invalid profile ID")
		return
	}

	profile, err := h.profileService.GetByID(r.Context(), profileID)
	if errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		log.Printf("Error getting profile: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := models.UpdateProfileParams{
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	}
	if req.ProfileType != nil {
		pt := models.ProfileType(*req.ProfileType)
		if pt != models.ProfileTypePublic && pt != models.ProfileTypePrivate {
			writeError(w, http.StatusBadRequest, "Invalid profile type")
			return
		}
		params.ProfileType = &pt
	}

	profile, err := h.profileService.Update(r.Context(), user.ID, params)
	if errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if err != nil {
		log.Printf("Error updating profile: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		writeJSON(w, http.StatusOK, ProfileSearchResponse{Profiles: []models.UserProfile{}})
		return
	}

	profiles, err := h.profileService.FindByEmailOrUsername(r.Context(), query)
	if err != nil {
		log.Printf("Error searching profiles: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProfileSearchResponse{Profiles: profiles})
}
