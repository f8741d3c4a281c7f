package handler

import (
	"net/http"

	"github.com/podclip/backend/internal/service"
)

// QuotaHandler exposes the derived quota view for remaining-usage banners.
type QuotaHandler struct {
	quota *service.QuotaService
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(quota *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

// Get handles GET /api/quota.
func (h *QuotaHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	report, err := h.quota.Report(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, report)
}
