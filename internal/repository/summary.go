package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/podclip/backend/internal/domain"
)

// SummaryRepository handles database operations for generated summaries.
type SummaryRepository struct {
	db *pgxpool.Pool
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(db *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Create persists a generated summary.
func (r *SummaryRepository) Create(ctx context.Context, s *domain.Summary) error {
	query := `
		INSERT INTO summaries (id, user_id, episode_id, episode_title, podcast_title, body, takeaways, degraded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.UserID, s.EpisodeID, s.EpisodeTitle, s.PodcastTitle, s.Text, s.Takeaways, s.Degraded, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

// ListByUser returns a user's summaries, newest first.
func (r *SummaryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Summary, error) {
	query := `
		SELECT id, user_id, episode_id, episode_title, podcast_title, body, takeaways, degraded, created_at
		FROM summaries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.Summary
	for rows.Next() {
		var s domain.Summary
		err := rows.Scan(&s.ID, &s.UserID, &s.EpisodeID, &s.EpisodeTitle, &s.PodcastTitle,
			&s.Text, &s.Takeaways, &s.Degraded, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, &s)
	}
	return summaries, nil
}

// CountByUserSince counts summaries a user generated since a point in time.
// The diagnostics view compares this against the stored counter.
func (r *SummaryRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM summaries WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}

// CountAll returns the total number of summaries ever generated.
func (r *SummaryRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}
