package service

import (
	"context"
	"time"

	"github.com/podclip/backend/internal/domain"
	log "github.com/sirupsen/logrus"
)

// SweepService runs the two periodic correction jobs: quota resets for users
// whose counting period rolled over, and expiry for cancelled subscriptions
// whose grace period has elapsed. Both sweeps are idempotent and process
// records independently, so one bad row never aborts the run. That
// idempotence is also the only protection against a double-firing scheduler.
type SweepService struct {
	users    UserStore
	subs     SubscriptionStore
	interval time.Duration
	now      func() time.Time
}

// NewSweepService creates a SweepService with the given cadence.
func NewSweepService(users UserStore, subs SubscriptionStore, interval time.Duration) *SweepService {
	return &SweepService{users: users, subs: subs, interval: interval, now: time.Now}
}

// Start runs both sweeps immediately, then on the configured cadence, in a
// background goroutine until ctx is cancelled.
func (s *SweepService) Start(ctx context.Context) {
	go func() {
		s.runOnce(context.Background())
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(context.Background())
			}
		}
	}()
}

func (s *SweepService) runOnce(ctx context.Context) {
	if n, err := s.RunQuotaResetSweep(ctx); err != nil {
		log.WithError(err).Error("quota reset sweep failed")
	} else if n > 0 {
		log.WithField("users", n).Info("quota reset sweep completed")
	}

	if n, err := s.RunExpirySweep(ctx); err != nil {
		log.WithError(err).Error("subscription expiry sweep failed")
	} else if n > 0 {
		log.WithField("subscriptions", n).Info("subscription expiry sweep completed")
	}
}

// RunQuotaResetSweep zeroes the counters of every user whose counting period
// has rolled over and advances quota_period_start to the newest boundary at
// or before now. Users already inside their current period are not selected,
// so re-running is a no-op.
func (s *SweepService) RunQuotaResetSweep(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.users.ListExpiredPeriods(ctx, now)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, u := range expired {
		newStart := domain.NextPeriodStart(u.QuotaPeriodStart, now)
		if err := s.users.ResetQuota(ctx, u.ID, newStart); err != nil {
			log.WithError(err).WithField("user", u.ID).Error("failed to reset quota")
			continue
		}
		reset++
	}
	return reset, nil
}

// RunExpirySweep transitions cancelled subscriptions past their period end
// to expired and downgrades the owning user to the free plan. This is the
// only place in the system that performs the downgrade. The expired-status
// predicate in the store makes re-runs exactly-once.
func (s *SweepService) RunExpirySweep(ctx context.Context) (int, error) {
	expirable, err := s.subs.ListExpirable(ctx, s.now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range expirable {
		if err := s.subs.MarkExpired(ctx, sub.ID); err != nil {
			log.WithError(err).WithField("subscription", sub.ID).Error("failed to expire subscription")
			continue
		}
		if err := s.users.SetPlan(ctx, sub.UserID, domain.PlanFree); err != nil {
			log.WithError(err).WithField("user", sub.UserID).Error("failed to downgrade user plan")
			continue
		}
		expired++
	}
	return expired, nil
}
