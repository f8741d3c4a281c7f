package domain

import "time"

// SubscriptionStatus is the raw status stored on a subscription record, a
// denormalized view of the payment processor's state.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Subscription represents a paid plan. At most one per user. Cancelled
// subscriptions keep access until current_period_end (the grace period);
// the expiry sweep is what finally flips them to expired.
type Subscription struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"userId"`
	Status             SubscriptionStatus `json:"status"`
	AmountCents        int64              `json:"amountCents"`
	Currency           string             `json:"currency"`
	Interval           string             `json:"interval"` // "month" or "lifetime"
	CurrentPeriodStart time.Time          `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time          `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool               `json:"cancelAtPeriodEnd"`
	ProviderID         string             `json:"paymentProviderId"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// SubscriptionState is the single logical status derived from a raw record
// and the current time. It is what quota logic and the UI consume.
type SubscriptionState string

const (
	SubscriptionNone    SubscriptionState = "none"
	SubscriptionActive  SubscriptionState = "active"
	SubscriptionExpired SubscriptionState = "expired"
)

// ResolveStatus derives the logical state of a subscription at a point in
// time. Cancelled-but-inside-grace-period counts as active; a subscription
// marked cancel_at_period_end lapses the instant its period end passes,
// whether or not the sweep has run yet.
func ResolveStatus(sub *Subscription, now time.Time) SubscriptionState {
	if sub == nil {
		return SubscriptionNone
	}
	if sub.Interval == "lifetime" {
		if sub.Status == StatusExpired {
			return SubscriptionExpired
		}
		return SubscriptionActive
	}
	if sub.Status == StatusExpired {
		return SubscriptionExpired
	}
	if sub.Status == StatusCancelled || sub.CancelAtPeriodEnd {
		if now.Before(sub.CurrentPeriodEnd) {
			return SubscriptionActive
		}
		return SubscriptionExpired
	}
	return SubscriptionActive
}

// SubscriptionResponse is the billing view returned to the UI, including the
// resolved state and grace-period messaging fields.
type SubscriptionResponse struct {
	State            SubscriptionState `json:"state"`
	Plan             Plan              `json:"plan"`
	Subscription     *Subscription     `json:"subscription,omitempty"`
	AccessUntil      *time.Time        `json:"accessUntil,omitempty"`
	WillRenew        bool              `json:"willRenew"`
	CancelledPending bool              `json:"cancelledPending"`
}
