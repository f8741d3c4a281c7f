package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/internal/service"
)

// SummaryHandler handles summary generation and listing endpoints.
type SummaryHandler struct {
	summaries *service.SummaryService
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaries *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// Create handles POST /api/episodes/{id}/summary.
func (h *SummaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	episodeID := chi.URLParam(r, "id")

	var req domain.CreateSummaryRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	summary, err := h.summaries.Generate(r.Context(), userID, episodeID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, summary)
}

// List handles GET /api/summaries.
func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	summaries, err := h.summaries.List(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, summaries)
}
