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

type ReportHandler struct {
	reportService services.ReportServiceInterface
}

func NewReportHandler(reportService services.ReportServiceInterface) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type CreateReportRequest struct {
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Location      string   `json:"location"`
	NotifyUserIDs []string `json:"notify_user_ids"`
}

type ReportResponse struct {
	Report *models.Report `json:"report"`
}

type AddCommentRequest struct {
	Text string `json:"text"`
}

type CommentResponse struct {
	Comment *models.ReportComment `json:"comment"`
}

type CommentListResponse struct {
	Comments []models.ReportComment `json:"comments"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "Category and description are required")
		return
	}

	report, err := h.reportService.Create(r.Context(), models.CreateReportParams{
		Category:      req.Category,
		Description:   req.Description,
		Location:      req.Location,
		NotifyUserIDs: req.NotifyUserIDs,
	})
	if err != nil {
		log.Printf("Error creating report: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, ReportResponse{Report: report})
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	report, err := h.reportService.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		log.Printf("Error getting report: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{Report: report})
}

func (h *ReportHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.reportService.AddComment(r.Context(), r.PathValue("id"), req.Text)
	if errors.Is(err, services.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "Comment text is required")
		return
	}
	if err != nil {
		log.Printf("Error adding comment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, CommentResponse{Comment: comment})
}

func (h *ReportHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	comments, err := h.reportService.ListComments(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		log.Printf("Error listing comments: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CommentListResponse{Comments: comments})
}
