package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/internal/service"
)

// ChatHandler handles episode chat endpoints.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Send handles POST /api/episodes/{id}/chat.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	episodeID := chi.URLParam(r, "id")

	var req domain.ChatRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	reply, err := h.chat.Send(r.Context(), userID, episodeID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, reply)
}

// History handles GET /api/episodes/{id}/chat.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	msgs, err := h.chat.History(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, msgs)
}
