package domain

import "time"

// Feature is a quota-gated action category.
type Feature string

const (
	FeatureSummary Feature = "summary"
	FeatureSearch  Feature = "search"
)

// QuotaPeriod is the rolling window over which usage counters accumulate
// before resetting. Lifetime plans never reset.
const QuotaPeriodMonths = 1

// QuotaSnapshot is the derived per-feature view of usage against the limit.
// It is computed at read time and never persisted.
type QuotaSnapshot struct {
	Used        int  `json:"used"`
	Limit       int  `json:"limit"`
	Remaining   int  `json:"remaining"`
	CanGenerate bool `json:"canGenerate"`
}

// NewQuotaSnapshot derives a snapshot from a counter and its limit.
func NewQuotaSnapshot(used, limit int) QuotaSnapshot {
	if limit == Unlimited {
		return QuotaSnapshot{Used: used, Limit: Unlimited, Remaining: Unlimited, CanGenerate: true}
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaSnapshot{Used: used, Limit: limit, Remaining: remaining, CanGenerate: used < limit}
}

// QuotaReport is the full quota view returned to the UI.
type QuotaReport struct {
	Plan        Plan          `json:"plan"`
	PeriodStart time.Time     `json:"periodStart"`
	Summaries   QuotaSnapshot `json:"summaries"`
	Searches    QuotaSnapshot `json:"searches"`
}

// NextPeriodStart rolls a period start forward to the newest monthly
// boundary at or before now. A start already inside the current period is
// returned unchanged, which is what makes the reset sweep idempotent.
func NextPeriodStart(start, now time.Time) time.Time {
	for !start.AddDate(0, QuotaPeriodMonths, 0).After(now) {
		start = start.AddDate(0, QuotaPeriodMonths, 0)
	}
	return start
}

// PeriodExpired reports whether a counting period that began at start has
// rolled over by now.
func PeriodExpired(start, now time.Time) bool {
	return !start.AddDate(0, QuotaPeriodMonths, 0).After(now)
}

// QuotaInconsistency is a diagnostic record for a user whose stored summary
// counter disagrees with the number of persisted summaries in the current
// period. It is surfaced by the admin diagnostics view, never auto-corrected.
type QuotaInconsistency struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	StoredCount   int    `json:"storedCount"`
	ObservedCount int    `json:"observedCount"`
}
