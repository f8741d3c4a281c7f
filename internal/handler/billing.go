package handler

import (
	"io"
	"net/http"

	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/internal/service"
	"github.com/podclip/backend/pkg/payment"
)

// BillingHandler handles checkout, webhook, and subscription endpoints.
type BillingHandler struct {
	subs    *service.SubscriptionService
	gateway payment.Gateway
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(subs *service.SubscriptionService, gateway payment.Gateway) *BillingHandler {
	return &BillingHandler{subs: subs, gateway: gateway}
}

// CreateCheckout handles POST /api/billing/checkout.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.CheckoutRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.subs.CreateCheckout(r.Context(), userID, &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Webhook handles POST /api/billing/webhook. Public endpoint; trust comes
// from the HMAC signature, not from authentication.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable payload"})
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if !h.gateway.VerifySignature(payload, signature) {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid webhook signature"})
		return
	}

	event, err := payment.ParseWebhook(payload)
	if err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.subs.HandleWebhook(r.Context(), event); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"received": true})
}

// GetSubscription handles GET /api/billing/subscription.
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	resp, err := h.subs.Current(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, resp)
}

// Cancel handles POST /api/billing/cancel.
func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	if err := h.subs.Cancel(r.Context(), userID); err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Portal handles GET /api/billing/portal.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	url, err := h.subs.PortalURL(r.Context(), userID)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"portalUrl": url})
}
