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

type FriendHandler struct {
	requestService services.FriendRequestServiceInterface
	friendService  services.FriendshipServiceInterface
}

func NewFriendHandler(requestService services.FriendRequestServiceInterface, friendService services.FriendshipServiceInterface) *FriendHandler {
	return &FriendHandler{
		requestService: requestService,
		friendService:  friendService,
	}
}

type SendRequestRequest struct {
	Query string `json:"query"`
}

type SendRequestResponse struct {
	Request *models.FriendRequest `json:"request"`
}

type FriendListResponse struct {
	Friends []models.Friend `json:"friends"`
}

type RequestListResponse struct {
	Incoming []models.FriendRequest `json:"incoming,omitempty"`
	Sent     []models.FriendRequest `json:"sent,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Email or username is required")
		return
	}

	request, err := h.requestService.SendRequest(r.Context(), req.Query)
	if errors.Is(err, services.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "No user found for that email or username")
		return
	}
	if errors.Is(err, services.ErrAlreadyFriends) {
		writeError(w, http.StatusConflict, "You are already friends with this user")
		return
	}
	if errors.Is(err, services.ErrDuplicateRequest) {
		writeError(w, http.StatusConflict, "A friend request is already pending")
		return
	}
	if err != nil {
		log.Printf("Error sending friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, SendRequestResponse{Request: request})
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, true)
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, false)
}

func (h *FriendHandler) respond(w http.ResponseWriter, r *http.Request, accept bool) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID := r.PathValue("id")
	if requestID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	err := h.requestService.Respond(r.Context(), requestID, accept)
	if errors.Is(err, services.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}
	if errors.Is(err, services.ErrNotAuthorized) {
		writeError(w, http.StatusForbidden, "Only the recipient can respond to this request")
		return
	}
	if err != nil {
		log.Printf("Error responding to friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := "Friend request rejected"
	if accept {
		message = "Friend request accepted"
	}
	writeJSON(w, http.StatusOK, RequestListResponse{Message: message})
}

func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	incoming, err := h.requestService.ListIncoming(r.Context())
	if err != nil {
		log.Printf("Error listing incoming requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	sent, err := h.requestService.ListSent(r.Context())
	if err != nil {
		log.Printf("Error listing sent requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, RequestListResponse{
		Incoming: incoming,
		Sent:     sent,
	})
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing friends: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Friends: friends})
}

func (h *FriendHandler) UpdateNickname(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friendID := r.PathValue("id")
	if friendID == "" {
		writeError(w, http.StatusBadRequest, "Invalid friend ID")
		return
	}

	var req UpdateNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.friendService.UpdateNickname(r.Context(), user.ID, friendID, req.Nickname)
	if errors.Is(err, services.ErrNotFriends) {
		writeError(w, http.StatusNotFound, "You are not friends with this user")
		return
	}
	if err != nil {
		log.Printf("Error updating nickname: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, RequestListResponse{Message: "Nickname updated"})
}
