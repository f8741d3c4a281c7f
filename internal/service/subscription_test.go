package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/pkg/payment"
)

func newTestSubscriptionService(subs *memSubscriptionStore, users *memUserStore) *SubscriptionService {
	svc := NewSubscriptionService(subs, users, payment.NewHMACGateway(
		"https://pay.example.com/checkout", "https://pay.example.com/portal", "test-secret"))
	svc.now = fixedNow
	return svc
}

func TestCreateCheckout(t *testing.T) {
	users := newMemUserStore(&domain.User{ID: "u1", Plan: domain.PlanFree})
	svc := newTestSubscriptionService(newMemSubscriptionStore(), users)

	resp, err := svc.CreateCheckout(context.Background(), "u1", &domain.CheckoutRequest{Tier: "standard"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OrderID)
	assert.True(t, strings.HasPrefix(resp.PaymentURL, "https://pay.example.com/checkout"))
	assert.Contains(t, resp.PaymentURL, "tier=standard")
	assert.Contains(t, resp.PaymentURL, "amount=999")
}

func TestCreateCheckoutUnknownTier(t *testing.T) {
	svc := newTestSubscriptionService(newMemSubscriptionStore(), newMemUserStore())

	_, err := svc.CreateCheckout(context.Background(), "u1", &domain.CheckoutRequest{Tier: "gold"})
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 422, appErr.Code)
}

func TestWebhookCheckoutCompleted(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanFree, SummaryCount: 1, SearchCount: 3,
		QuotaPeriodStart: fixedNow().AddDate(0, 0, -20),
	})
	subs := newMemSubscriptionStore()
	svc := newTestSubscriptionService(subs, users)

	err := svc.HandleWebhook(ctx, &payment.WebhookEvent{
		Type: payment.EventCheckoutCompleted, UserID: "u1", Tier: "standard",
		SubscriptionID: "prov_123", AmountCents: 999, Currency: "usd", Interval: "month",
	})
	require.NoError(t, err)

	sub, _ := subs.FindByUserID(ctx, "u1")
	require.NotNil(t, sub)
	assert.Equal(t, domain.StatusActive, sub.Status)
	assert.Equal(t, int64(999), sub.AmountCents)
	assert.Equal(t, fixedNow().AddDate(0, 1, 0), sub.CurrentPeriodEnd)

	// The user is upgraded and starts the paid period with clean counters.
	u, _ := users.FindByID(ctx, "u1")
	assert.Equal(t, domain.PlanMonthly, u.Plan)
	assert.Equal(t, 0, u.SummaryCount)
	assert.Equal(t, 0, u.SearchCount)
	assert.Equal(t, fixedNow(), u.QuotaPeriodStart)
}

func TestWebhookLifetimeCheckout(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{ID: "u1", Plan: domain.PlanFree})
	subs := newMemSubscriptionStore()
	svc := newTestSubscriptionService(subs, users)

	err := svc.HandleWebhook(ctx, &payment.WebhookEvent{
		Type: payment.EventCheckoutCompleted, UserID: "u1", Tier: "lifetime",
		AmountCents: 9900, Currency: "usd", Interval: "lifetime",
	})
	require.NoError(t, err)

	u, _ := users.FindByID(ctx, "u1")
	assert.Equal(t, domain.PlanLifetime, u.Plan)
}

func TestWebhookCancelledOnlyFlags(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{ID: "u1", Plan: domain.PlanMonthly})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusActive, Interval: "month",
		AmountCents: 999, CurrentPeriodEnd: fixedNow().AddDate(0, 0, 12),
	})
	svc := newTestSubscriptionService(subs, users)

	err := svc.HandleWebhook(ctx, &payment.WebhookEvent{
		Type: payment.EventCancelled, UserID: "u1",
	})
	require.NoError(t, err)

	// Cancellation flags the record; the plan survives until the expiry sweep.
	sub, _ := subs.FindByUserID(ctx, "u1")
	assert.Equal(t, domain.StatusCancelled, sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)
	u, _ := users.FindByID(ctx, "u1")
	assert.Equal(t, domain.PlanMonthly, u.Plan)
}

func TestWebhookRenewed(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{ID: "u1", Plan: domain.PlanMonthly})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusCancelled, Interval: "month",
		AmountCents: 999, CancelAtPeriodEnd: true,
		CurrentPeriodEnd: fixedNow().AddDate(0, 0, 2),
	})
	svc := newTestSubscriptionService(subs, users)

	err := svc.HandleWebhook(ctx, &payment.WebhookEvent{
		Type: payment.EventRenewed, UserID: "u1",
	})
	require.NoError(t, err)

	sub, _ := subs.FindByUserID(ctx, "u1")
	assert.Equal(t, domain.StatusActive, sub.Status)
	assert.False(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, fixedNow().AddDate(0, 1, 0), sub.CurrentPeriodEnd)
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	svc := newTestSubscriptionService(newMemSubscriptionStore(), newMemUserStore())
	err := svc.HandleWebhook(context.Background(), &payment.WebhookEvent{
		Type: "invoice.finalized", UserID: "u1",
	})
	assert.NoError(t, err)
}

func TestCurrentCancelledPending(t *testing.T) {
	ctx := context.Background()
	periodEnd := fixedNow().AddDate(0, 0, 9)
	users := newMemUserStore(&domain.User{ID: "u1", Plan: domain.PlanMonthly})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusCancelled, Interval: "month",
		AmountCents: 999, CancelAtPeriodEnd: true, CurrentPeriodEnd: periodEnd,
	})
	svc := newTestSubscriptionService(subs, users)

	resp, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, resp.State)
	assert.True(t, resp.CancelledPending)
	assert.False(t, resp.WillRenew)
	require.NotNil(t, resp.AccessUntil)
	assert.Equal(t, periodEnd, *resp.AccessUntil)
}

func TestCurrentNoSubscription(t *testing.T) {
	users := newMemUserStore(&domain.User{ID: "u1", Plan: domain.PlanFree})
	svc := newTestSubscriptionService(newMemSubscriptionStore(), users)

	resp, err := svc.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionNone, resp.State)
	assert.Nil(t, resp.Subscription)
}
