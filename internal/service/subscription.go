package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/pkg/payment"
	log "github.com/sirupsen/logrus"
)

// SubscriptionService owns the subscription lifecycle: checkout, webhook
// processing, cancellation and the billing view. The payment processor is
// the source of truth; this service only stores the denormalized view and
// never computes billing amounts itself.
type SubscriptionService struct {
	subs     SubscriptionStore
	users    UserStore
	gateway  payment.Gateway
	validate *validator.Validate
	now      func() time.Time
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(subs SubscriptionStore, users UserStore, gateway payment.Gateway) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		users:    users,
		gateway:  gateway,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateCheckout creates a payment link for upgrading to a paid tier.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID string, req *domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	option := domain.GetPricingOption(req.Tier)
	if option == nil {
		return nil, domain.ErrBadRequest("unknown plan tier")
	}

	orderID := uuid.New().String()
	paymentURL, err := s.gateway.CreatePaymentLink(userID, option.ID, orderID, option.AmountCents)
	if err != nil {
		return nil, domain.ErrUpstream("failed to create payment link", err)
	}

	return &domain.CheckoutResponse{PaymentURL: paymentURL, OrderID: orderID}, nil
}

// HandleWebhook processes a verified payment notification. Checkout creates
// or replaces the subscription and upgrades the user; cancellation only
// flags the record — the grace period runs until the expiry sweep downgrades.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, event *payment.WebhookEvent) error {
	switch event.Type {
	case payment.EventCheckoutCompleted:
		return s.applyCheckout(ctx, event)
	case payment.EventRenewed:
		periodEnd := event.PeriodEnd
		if periodEnd.IsZero() {
			periodEnd = s.now().AddDate(0, 1, 0)
		}
		return s.subs.Renew(ctx, event.UserID, s.now(), periodEnd)
	case payment.EventCancelled:
		return s.subs.MarkCancelled(ctx, event.UserID)
	default:
		log.WithField("type", event.Type).Warn("ignoring unknown webhook event")
		return nil
	}
}

func (s *SubscriptionService) applyCheckout(ctx context.Context, event *payment.WebhookEvent) error {
	now := s.now()

	plan := domain.PlanMonthly
	periodEnd := event.PeriodEnd
	if event.Interval == "lifetime" {
		plan = domain.PlanLifetime
		if periodEnd.IsZero() {
			periodEnd = now.AddDate(100, 0, 0)
		}
	} else if periodEnd.IsZero() {
		periodEnd = now.AddDate(0, 1, 0)
	}

	sub := &domain.Subscription{
		ID:                 uuid.New().String(),
		UserID:             event.UserID,
		Status:             domain.StatusActive,
		AmountCents:        event.AmountCents,
		Currency:           event.Currency,
		Interval:           event.Interval,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   periodEnd,
		CancelAtPeriodEnd:  false,
		ProviderID:         event.SubscriptionID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return err
	}

	if err := s.users.SetPlan(ctx, event.UserID, plan); err != nil {
		return err
	}
	// Fresh paid period starts with clean counters.
	return s.users.ResetQuota(ctx, event.UserID, now)
}

// Current returns the billing view for a user, including the resolved state
// and the "access until" date for cancelled-but-active subscriptions.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*domain.SubscriptionResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load user", err)
	}
	if u == nil {
		return nil, domain.ErrUnauthorized("unknown user")
	}

	sub, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to load subscription", err)
	}

	now := s.now()
	state := domain.ResolveStatus(sub, now)
	resp := &domain.SubscriptionResponse{
		State:        state,
		Plan:         u.Plan,
		Subscription: sub,
	}
	if sub != nil && state == domain.SubscriptionActive {
		resp.WillRenew = !sub.CancelAtPeriodEnd && sub.Interval != "lifetime"
		if sub.CancelAtPeriodEnd {
			resp.CancelledPending = true
			end := sub.CurrentPeriodEnd
			resp.AccessUntil = &end
		}
	}
	return resp, nil
}

// Cancel flags the user's subscription to lapse at period end.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) error {
	return s.subs.MarkCancelled(ctx, userID)
}

// PortalURL returns the payment processor's self-service portal link.
func (s *SubscriptionService) PortalURL(ctx context.Context, userID string) (string, error) {
	url, err := s.gateway.PortalURL(userID)
	if err != nil {
		return "", domain.ErrUpstream("failed to create portal link", err)
	}
	return url, nil
}
