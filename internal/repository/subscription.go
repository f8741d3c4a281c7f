package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/podclip/backend/internal/domain"
)

const subscriptionColumns = `id, user_id, status, amount_cents, currency, billing_interval, current_period_start, current_period_end, cancel_at_period_end, provider_id, created_at, updated_at`

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.UserID, &s.Status, &s.AmountCents, &s.Currency, &s.Interval,
		&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CancelAtPeriodEnd, &s.ProviderID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert writes a subscription, replacing any prior record for the user.
// One subscription at most per user, by design.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, status, amount_cents, currency, billing_interval,
			current_period_start, current_period_end, cancel_at_period_end, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			amount_cents = EXCLUDED.amount_cents,
			currency = EXCLUDED.currency,
			billing_interval = EXCLUDED.billing_interval,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			provider_id = EXCLUDED.provider_id,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		sub.ID, sub.UserID, sub.Status, sub.AmountCents, sub.Currency, sub.Interval,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, sub.ProviderID,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// FindByUserID returns the user's subscription record regardless of status;
// the status resolver decides what it means at query time.
func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	row := r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return sub, nil
}

// MarkCancelled flags the user's subscription to lapse at period end. Access
// continues through the grace period; the expiry sweep does the downgrade.
func (r *SubscriptionRepository) MarkCancelled(ctx context.Context, userID string) error {
	query := `
		UPDATE subscriptions
		SET status = 'cancelled', cancel_at_period_end = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND status <> 'expired'
	`
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("no active subscription to cancel")
	}
	return nil
}

// Renew advances the period after a successful renewal payment.
func (r *SubscriptionRepository) Renew(ctx context.Context, userID string, periodStart, periodEnd time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = 'active', cancel_at_period_end = FALSE,
			current_period_start = $2, current_period_end = $3, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, periodStart, periodEnd)
	if err != nil {
		return fmt.Errorf("failed to renew subscription: %w", err)
	}
	return nil
}

// ListExpirable returns cancelled subscriptions whose grace period has
// elapsed and which the sweep has not yet expired.
func (r *SubscriptionRepository) ListExpirable(ctx context.Context, now time.Time) ([]*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE cancel_at_period_end = TRUE AND current_period_end <= $1 AND status <> 'expired'
	`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expirable subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// MarkExpired transitions a subscription to expired.
func (r *SubscriptionRepository) MarkExpired(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE subscriptions SET status = 'expired', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to expire subscription: %w", err)
	}
	return nil
}

// CountActive returns the number of currently active paid subscriptions.
func (r *SubscriptionRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = 'active'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}
