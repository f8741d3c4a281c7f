package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Gateway defines the interface for payment providers.
type Gateway interface {
	// CreatePaymentLink creates a checkout session/link for a plan tier.
	CreatePaymentLink(userID, tier, orderID string, amountCents int64) (string, error)
	// PortalURL returns the self-service billing portal URL for a user.
	PortalURL(userID string) (string, error)
	// VerifySignature verifies a webhook payload signature.
	VerifySignature(payload []byte, signature string) bool
}

// Webhook event types the backend consumes. The provider's raw payloads are
// richer; this is the denormalized view the core stores.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventRenewed           = "subscription.renewed"
	EventCancelled         = "subscription.cancelled"
)

// WebhookEvent is the parsed payment notification.
type WebhookEvent struct {
	Type           string    `json:"type"`
	UserID         string    `json:"userId"`
	Tier           string    `json:"tier"`
	SubscriptionID string    `json:"subscriptionId"`
	AmountCents    int64     `json:"amountCents"`
	Currency       string    `json:"currency"`
	Interval       string    `json:"interval"`
	PeriodEnd      time.Time `json:"periodEnd"`
}

// ParseWebhook decodes a webhook payload after signature verification.
func ParseWebhook(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if event.Type == "" || event.UserID == "" {
		return nil, fmt.Errorf("webhook payload missing type or userId")
	}
	return &event, nil
}

// HMACGateway signs and verifies webhooks with a shared secret and builds
// hosted checkout/portal links. It stands in for the real provider SDK; the
// core never computes billing amounts itself.
type HMACGateway struct {
	checkoutBase string
	portalBase   string
	secret       []byte
}

// NewHMACGateway creates a gateway pointed at the provider's hosted pages.
func NewHMACGateway(checkoutBase, portalBase, secret string) *HMACGateway {
	return &HMACGateway{checkoutBase: checkoutBase, portalBase: portalBase, secret: []byte(secret)}
}

func (g *HMACGateway) CreatePaymentLink(userID, tier, orderID string, amountCents int64) (string, error) {
	return fmt.Sprintf("%s?order_id=%s&tier=%s&amount=%d", g.checkoutBase, orderID, tier, amountCents), nil
}

func (g *HMACGateway) PortalURL(userID string) (string, error) {
	return fmt.Sprintf("%s?user=%s", g.portalBase, userID), nil
}

func (g *HMACGateway) VerifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature for a payload. Used by tests and the payment
// simulator; the real provider signs on their side.
func (g *HMACGateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
