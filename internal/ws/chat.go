package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is handled at the HTTP level
	},
}

// ChatHandler handles WebSocket connections for live episode chat.
type ChatHandler struct {
	chat *service.ChatService
	auth *service.AuthService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.ChatService, auth *service.AuthService) *ChatHandler {
	return &ChatHandler{chat: chat, auth: auth}
}

// Handle upgrades HTTP to WebSocket and relays chat turns for an episode.
// URL: /episodes/{episodeId}/chat?token=JWT_TOKEN
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Extract episode ID from URL path
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 3 {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	episodeID := parts[2]

	// Authenticate via query param token; browsers cannot set headers
	// on WebSocket upgrades.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.VerifyToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.EnsureUser(context.Background(), claims)
	if err != nil {
		http.Error(w, "user lookup failed", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.WithFields(log.Fields{
		"episode_id": episodeID,
		"user":       claims.Email,
	}).Info("chat connected")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req domain.ChatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.writeError(conn, "invalid message")
			continue
		}

		reply, err := h.chat.Send(context.Background(), user.ID, episodeID, &req)
		if err != nil {
			log.WithError(err).Warn("chat turn failed")
			h.writeError(conn, "chat unavailable")
			continue
		}

		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (h *ChatHandler) writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(map[string]string{"error": message})
}
