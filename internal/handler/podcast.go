package handler

import (
	"net/http"

	"github.com/podclip/backend/internal/service"
)

// PodcastHandler handles podcast discovery endpoints.
type PodcastHandler struct {
	search *service.SearchService
}

// NewPodcastHandler creates a new PodcastHandler.
func NewPodcastHandler(search *service.SearchService) *PodcastHandler {
	return &PodcastHandler{search: search}
}

// Search handles GET /api/podcasts/search?q=term.
func (h *PodcastHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	podcasts, err := h.search.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, podcasts)
}
