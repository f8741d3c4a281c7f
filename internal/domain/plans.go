package domain

import "time"

// Plan is a user's billing tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanMonthly  Plan = "monthly"
	PlanLifetime Plan = "lifetime"
)

// Unlimited marks a feature limit with no ceiling.
const Unlimited = -1

// PlanLimits holds the per-period allotment for each gated feature.
type PlanLimits struct {
	Summaries int `json:"summaries"`
	Searches  int `json:"searches"`
}

// For returns the limit for a single feature.
func (l PlanLimits) For(f Feature) int {
	if f == FeatureSearch {
		return l.Searches
	}
	return l.Summaries
}

// The canonical limit table. Every component that needs a limit goes through
// this table; nothing else hardcodes a number.
var (
	freeLimits     = PlanLimits{Summaries: 1, Searches: 3}
	lifetimeLimits = PlanLimits{Summaries: 70, Searches: 150}

	// Monthly tiers keyed by price ceiling in USD cents.
	monthlyBrackets = []struct {
		MaxAmountCents int64
		Limits         PlanLimits
	}{
		{599, PlanLimits{Summaries: 20, Searches: 25}},
		{1099, PlanLimits{Summaries: 40, Searches: 50}},
		{1599, PlanLimits{Summaries: 60, Searches: 70}},
	}
)

// FreeLimits returns the free-tier allotment.
func FreeLimits() PlanLimits { return freeLimits }

// LifetimeLimits returns the lifetime-tier allotment.
func LifetimeLimits() PlanLimits { return lifetimeLimits }

// MonthlyLimits maps a billed monthly amount to its bracket. Amounts above
// the highest bracket are unlimited.
func MonthlyLimits(amountCents int64) PlanLimits {
	for _, b := range monthlyBrackets {
		if amountCents <= b.MaxAmountCents {
			return b.Limits
		}
	}
	return PlanLimits{Summaries: Unlimited, Searches: Unlimited}
}

// LimitsForUser picks the limit table for a user given the resolved state of
// their subscription at the given time. A lapsed paid plan falls back to the
// free allotment even before the expiry sweep has downgraded the user row.
func LimitsForUser(u *User, sub *Subscription, now time.Time) PlanLimits {
	switch u.Plan {
	case PlanLifetime:
		return lifetimeLimits
	case PlanMonthly:
		if ResolveStatus(sub, now) == SubscriptionActive && sub != nil {
			return MonthlyLimits(sub.AmountCents)
		}
		return freeLimits
	default:
		return freeLimits
	}
}

// PricingOption is a purchasable tier shown on the pricing page.
type PricingOption struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	AmountCents int64      `json:"amountCents"`
	Currency    string     `json:"currency"`
	Interval    string     `json:"interval"` // "month" or "lifetime"
	Limits      PlanLimits `json:"limits"`
	Popular     bool       `json:"popular"`
}

// AvailablePlans returns all purchasable tiers.
func AvailablePlans() []PricingOption {
	return []PricingOption{
		{ID: "basic", Name: "Basic", AmountCents: 499, Currency: "usd", Interval: "month", Limits: MonthlyLimits(499)},
		{ID: "standard", Name: "Standard", AmountCents: 999, Currency: "usd", Interval: "month", Limits: MonthlyLimits(999), Popular: true},
		{ID: "premium", Name: "Premium", AmountCents: 1499, Currency: "usd", Interval: "month", Limits: MonthlyLimits(1499)},
		{ID: "unlimited", Name: "Unlimited", AmountCents: 2499, Currency: "usd", Interval: "month", Limits: MonthlyLimits(2499)},
		{ID: "lifetime", Name: "Lifetime", AmountCents: 9900, Currency: "usd", Interval: "lifetime", Limits: lifetimeLimits},
	}
}

// GetPricingOption returns the tier for a given ID, or nil if unknown.
func GetPricingOption(id string) *PricingOption {
	for _, p := range AvailablePlans() {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
