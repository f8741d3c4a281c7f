package handler

import (
	"net/http"

	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/internal/service"
)

// SettingsHandler handles per-user settings endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// SaveExportToken handles PUT /api/settings/export-token.
func (h *SettingsHandler) SaveExportToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.ExportTokenRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	if err := h.settings.SaveExportToken(r.Context(), userID, &req); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
