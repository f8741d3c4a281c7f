package service

import (
	"context"
	"time"

	"github.com/podclip/backend/internal/domain"
)

// Narrow store interfaces implemented by the pgx repositories. Services
// depend on these rather than the concrete types so tests can substitute
// in-memory fakes.

// UserStore is the persistence surface for user rows and usage counters.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetOrCreate(ctx context.Context, id, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, id string, feature domain.Feature) error
	ResetQuota(ctx context.Context, id string, periodStart time.Time) error
	ListExpiredPeriods(ctx context.Context, now time.Time) ([]*domain.User, error)
	SetPlan(ctx context.Context, id string, plan domain.Plan) error
	SetExportToken(ctx context.Context, id, encrypted string) error
}

// SubscriptionStore is the persistence surface for subscription records.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *domain.Subscription) error
	FindByUserID(ctx context.Context, userID string) (*domain.Subscription, error)
	MarkCancelled(ctx context.Context, userID string) error
	Renew(ctx context.Context, userID string, periodStart, periodEnd time.Time) error
	ListExpirable(ctx context.Context, now time.Time) ([]*domain.Subscription, error)
	MarkExpired(ctx context.Context, id string) error
}

// SummaryStore is the persistence surface for generated summaries.
type SummaryStore interface {
	Create(ctx context.Context, s *domain.Summary) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Summary, error)
}

// ChatStore is the persistence surface for episode chat history.
type ChatStore interface {
	Create(ctx context.Context, m *domain.ChatMessage) error
	ListByEpisode(ctx context.Context, userID, episodeID string, limit int) ([]*domain.ChatMessage, error)
}
