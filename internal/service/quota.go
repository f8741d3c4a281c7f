package service

import (
	"context"
	"time"

	"github.com/podclip/backend/internal/domain"
)

// QuotaService answers "can this user perform action X right now?" and
// records completed actions.
//
// Check and Consume are deliberately not one atomic operation: two
// concurrent requests can both pass Check before either increment lands, so
// a counter can overshoot its limit by at most the number of in-flight
// requests. The increment itself is a single SQL statement, so the overshoot
// stays bounded. A conditional increment-with-ceiling in the store would
// close the gap if stronger guarantees are ever needed.
type QuotaService struct {
	users UserStore
	subs  SubscriptionStore
	now   func() time.Time
}

// NewQuotaService creates a QuotaService.
func NewQuotaService(users UserStore, subs SubscriptionStore) *QuotaService {
	return &QuotaService{users: users, subs: subs, now: time.Now}
}

// effective returns the user, subscription and the plan actually in force at
// now. A monthly plan whose subscription has lapsed counts as free even
// before the expiry sweep has downgraded the user row.
func (s *QuotaService) effective(ctx context.Context, userID string) (*domain.User, *domain.Subscription, domain.Plan, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, "", domain.ErrInternal("failed to load user", err)
	}
	if u == nil {
		return nil, nil, "", domain.ErrUnauthorized("unknown user")
	}

	sub, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, "", domain.ErrInternal("failed to load subscription", err)
	}

	plan := u.Plan
	if plan == domain.PlanMonthly && domain.ResolveStatus(sub, s.now()) != domain.SubscriptionActive {
		plan = domain.PlanFree
	}
	return u, sub, plan, nil
}

// usedFor returns the counter to compare against the limit, treating an
// expired counting period as zero. The reset itself is not persisted here;
// the read path stays side-effect free and the daily sweep does the write.
func (s *QuotaService) usedFor(u *domain.User, feature domain.Feature) int {
	if u.Plan != domain.PlanLifetime && domain.PeriodExpired(u.QuotaPeriodStart, s.now()) {
		return 0
	}
	return u.UsedFor(feature)
}

// Check decides whether a quota-gated action is permitted. Pure read; must
// be called before the gated work so rejected requests never reach the
// costly external call.
func (s *QuotaService) Check(ctx context.Context, userID string, feature domain.Feature) error {
	u, sub, plan, err := s.effective(ctx, userID)
	if err != nil {
		return err
	}

	limit := domain.LimitsForUser(u, sub, s.now()).For(feature)
	if limit == domain.Unlimited {
		return nil
	}

	used := s.usedFor(u, feature)
	if used >= limit {
		return &domain.QuotaExceededError{Feature: feature, Used: used, Limit: limit, Plan: plan}
	}
	return nil
}

// Consume records that a gated action completed. Call it only after the
// external work actually succeeded; charging on failure would overcount.
func (s *QuotaService) Consume(ctx context.Context, userID string, feature domain.Feature) error {
	return s.users.IncrementUsage(ctx, userID, feature)
}

// Report derives the full quota view for the UI.
func (s *QuotaService) Report(ctx context.Context, userID string) (*domain.QuotaReport, error) {
	u, sub, plan, err := s.effective(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits := domain.LimitsForUser(u, sub, s.now())
	return &domain.QuotaReport{
		Plan:        plan,
		PeriodStart: u.QuotaPeriodStart,
		Summaries:   domain.NewQuotaSnapshot(s.usedFor(u, domain.FeatureSummary), limits.Summaries),
		Searches:    domain.NewQuotaSnapshot(s.usedFor(u, domain.FeatureSearch), limits.Searches),
	}, nil
}
