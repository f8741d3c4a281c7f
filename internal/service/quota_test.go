package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podclip/backend/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
}

func newTestQuotaService(users *memUserStore, subs *memSubscriptionStore) *QuotaService {
	svc := NewQuotaService(users, subs)
	svc.now = fixedNow
	return svc
}

func TestQuotaCheckFreeUser(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{
		ID: "u1", Email: "a@b.c", Plan: domain.PlanFree,
		QuotaPeriodStart: fixedNow().AddDate(0, 0, -5),
	})
	svc := newTestQuotaService(users, newMemSubscriptionStore())

	// Free plan: 1 summary, 3 searches.
	require.NoError(t, svc.Check(ctx, "u1", domain.FeatureSummary))
	require.NoError(t, svc.Consume(ctx, "u1", domain.FeatureSummary))

	err := svc.Check(ctx, "u1", domain.FeatureSummary)
	qe, ok := domain.AsQuotaExceeded(err)
	require.True(t, ok)
	assert.Equal(t, domain.FeatureSummary, qe.Feature)
	assert.Equal(t, 1, qe.Used)
	assert.Equal(t, 1, qe.Limit)
	assert.Equal(t, domain.PlanFree, qe.Plan)

	// Searches are counted independently.
	assert.NoError(t, svc.Check(ctx, "u1", domain.FeatureSearch))
}

func TestQuotaCheckUnknownUser(t *testing.T) {
	svc := newTestQuotaService(newMemUserStore(), newMemSubscriptionStore())
	err := svc.Check(context.Background(), "ghost", domain.FeatureSummary)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.Code)
}

func TestQuotaCheckExpiredPeriodReadsAsZero(t *testing.T) {
	ctx := context.Background()
	// Counter is maxed out, but the period rolled over and no sweep has run.
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanFree, SummaryCount: 1,
		QuotaPeriodStart: fixedNow().AddDate(0, -2, 0),
	})
	svc := newTestQuotaService(users, newMemSubscriptionStore())

	assert.NoError(t, svc.Check(ctx, "u1", domain.FeatureSummary))

	// The lazy read never writes; the stored counter is untouched.
	u, err := users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.SummaryCount)
}

func TestQuotaLifetimeCounterNeverLapses(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanLifetime, SummaryCount: 70,
		QuotaPeriodStart: fixedNow().AddDate(-1, 0, 0),
	})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusActive, Interval: "lifetime", AmountCents: 9900,
	})
	svc := newTestQuotaService(users, subs)

	// A year-old period start means nothing on lifetime; the cap holds.
	err := svc.Check(ctx, "u1", domain.FeatureSummary)
	qe, ok := domain.AsQuotaExceeded(err)
	require.True(t, ok)
	assert.Equal(t, 70, qe.Limit)

	// Searches have headroom up to 150.
	assert.NoError(t, svc.Check(ctx, "u1", domain.FeatureSearch))
}

func TestQuotaMonthlyLapsedTreatedAsFree(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanMonthly, SummaryCount: 5,
		QuotaPeriodStart: fixedNow().AddDate(0, 0, -10),
	})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusCancelled, Interval: "month",
		AmountCents: 999, CancelAtPeriodEnd: true,
		CurrentPeriodEnd: fixedNow().AddDate(0, 0, -1),
	})
	svc := newTestQuotaService(users, subs)

	// Grace period over: free limits apply even though the row still says monthly.
	err := svc.Check(ctx, "u1", domain.FeatureSummary)
	qe, ok := domain.AsQuotaExceeded(err)
	require.True(t, ok)
	assert.Equal(t, 1, qe.Limit)
	assert.Equal(t, domain.PlanFree, qe.Plan)
}

func TestQuotaMonthlyInsideGracePeriod(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanMonthly, SummaryCount: 5,
		QuotaPeriodStart: fixedNow().AddDate(0, 0, -10),
	})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusCancelled, Interval: "month",
		AmountCents: 999, CancelAtPeriodEnd: true,
		CurrentPeriodEnd: fixedNow().AddDate(0, 0, 5),
	})
	svc := newTestQuotaService(users, subs)

	// Cancelled but inside the paid period: full paid limits remain.
	assert.NoError(t, svc.Check(ctx, "u1", domain.FeatureSummary))
}

func TestQuotaUnlimitedTier(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanMonthly, SummaryCount: 100000,
		QuotaPeriodStart: fixedNow().AddDate(0, 0, -10),
	})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusActive, Interval: "month",
		AmountCents: 2499, CurrentPeriodEnd: fixedNow().AddDate(0, 0, 20),
	})
	svc := newTestQuotaService(users, subs)

	assert.NoError(t, svc.Check(ctx, "u1", domain.FeatureSummary))
	assert.NoError(t, svc.Check(ctx, "u1", domain.FeatureSearch))
}

func TestQuotaReport(t *testing.T) {
	ctx := context.Background()
	periodStart := fixedNow().AddDate(0, 0, -10)
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanMonthly, SummaryCount: 12, SearchCount: 3,
		QuotaPeriodStart: periodStart,
	})
	subs := newMemSubscriptionStore(&domain.Subscription{
		ID: "s1", UserID: "u1", Status: domain.StatusActive, Interval: "month",
		AmountCents: 999, CurrentPeriodEnd: fixedNow().AddDate(0, 0, 20),
	})
	svc := newTestQuotaService(users, subs)

	report, err := svc.Report(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanMonthly, report.Plan)
	assert.Equal(t, periodStart, report.PeriodStart)
	assert.Equal(t, 12, report.Summaries.Used)
	assert.Equal(t, 40, report.Summaries.Limit)
	assert.Equal(t, 28, report.Summaries.Remaining)
	assert.True(t, report.Summaries.CanGenerate)
	assert.Equal(t, 3, report.Searches.Used)
	assert.Equal(t, 50, report.Searches.Limit)
}

func TestQuotaConcurrentConsumeBoundedOvershoot(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore(&domain.User{
		ID: "u1", Plan: domain.PlanFree,
		QuotaPeriodStart: fixedNow().AddDate(0, 0, -5),
	})
	svc := newTestQuotaService(users, newMemSubscriptionStore())

	// N in-flight requests that all passed Check can each land one increment;
	// the counter overshoots by at most N-limit, never more.
	const inflight = 8
	var wg sync.WaitGroup
	for i := 0; i < inflight; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Check(ctx, "u1", domain.FeatureSearch) == nil {
				_ = svc.Consume(ctx, "u1", domain.FeatureSearch)
			}
		}()
	}
	wg.Wait()

	u, err := users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, u.SearchCount, 3)
	assert.LessOrEqual(t, u.SearchCount, inflight)

	// Once the dust settles, further requests are rejected.
	err = svc.Check(ctx, "u1", domain.FeatureSearch)
	_, ok := domain.AsQuotaExceeded(err)
	assert.True(t, ok)
}
