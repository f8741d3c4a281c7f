package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/internal/repository"
)

// HistoryHandler handles listening-history endpoints.
type HistoryHandler struct {
	history *repository.HistoryRepository
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// SaveProgress handles PUT /api/episodes/{id}/progress.
func (h *HistoryHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.ProgressRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	progress := &domain.PlaybackProgress{
		UserID:          userID,
		EpisodeID:       chi.URLParam(r, "id"),
		EpisodeTitle:    req.EpisodeTitle,
		PodcastTitle:    req.PodcastTitle,
		PositionSeconds: req.PositionSeconds,
		DurationSeconds: req.DurationSeconds,
		Completed:       req.Completed,
	}
	if err := h.history.Upsert(r.Context(), progress); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// List handles GET /api/history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	history, err := h.history.ListByUser(r.Context(), userID, 50)
	if err != nil {
		Error(w, err)
		return
	}
	if history == nil {
		history = []*domain.PlaybackProgress{}
	}

	JSON(w, http.StatusOK, history)
}
