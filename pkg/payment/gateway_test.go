package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACGatewaySignatureRoundTrip(t *testing.T) {
	g := NewHMACGateway("https://pay.example.com/checkout", "https://pay.example.com/portal", "secret-1")
	payload := []byte(`{"type":"checkout.completed","userId":"u1"}`)

	sig := g.Sign(payload)
	assert.True(t, g.VerifySignature(payload, sig))
}

func TestHMACGatewayRejectsBadSignature(t *testing.T) {
	g := NewHMACGateway("", "", "secret-1")
	payload := []byte(`{"type":"checkout.completed","userId":"u1"}`)

	assert.False(t, g.VerifySignature(payload, "deadbeef"))

	// A signature made with a different secret never verifies.
	other := NewHMACGateway("", "", "secret-2")
	assert.False(t, g.VerifySignature(payload, other.Sign(payload)))

	// Tampered payload invalidates a valid signature.
	sig := g.Sign(payload)
	assert.False(t, g.VerifySignature([]byte(`{"type":"checkout.completed","userId":"u2"}`), sig))
}

func TestParseWebhook(t *testing.T) {
	event, err := ParseWebhook([]byte(`{"type":"subscription.renewed","userId":"u1","amountCents":999}`))
	require.NoError(t, err)
	assert.Equal(t, EventRenewed, event.Type)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, int64(999), event.AmountCents)
}

func TestParseWebhookRejectsIncompletePayload(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"userId":"u1"}`))
	assert.Error(t, err)

	_, err = ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}
