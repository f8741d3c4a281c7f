package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/podclip/backend/internal/domain"
)

// HistoryRepository handles database operations for listening history.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Upsert saves the playback position for a user and episode.
func (r *HistoryRepository) Upsert(ctx context.Context, p *domain.PlaybackProgress) error {
	query := `
		INSERT INTO playback_progress (user_id, episode_id, episode_title, podcast_title,
			position_seconds, duration_seconds, completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id, episode_id) DO UPDATE SET
			episode_title = EXCLUDED.episode_title,
			podcast_title = EXCLUDED.podcast_title,
			position_seconds = EXCLUDED.position_seconds,
			duration_seconds = EXCLUDED.duration_seconds,
			completed = EXCLUDED.completed,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		p.UserID, p.EpisodeID, p.EpisodeTitle, p.PodcastTitle,
		p.PositionSeconds, p.DurationSeconds, p.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to save playback progress: %w", err)
	}
	return nil
}

// ListByUser returns a user's listening history, most recent first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.PlaybackProgress, error) {
	query := `
		SELECT user_id, episode_id, episode_title, podcast_title,
			position_seconds, duration_seconds, completed, updated_at
		FROM playback_progress WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list playback progress: %w", err)
	}
	defer rows.Close()

	var history []*domain.PlaybackProgress
	for rows.Next() {
		var p domain.PlaybackProgress
		err := rows.Scan(&p.UserID, &p.EpisodeID, &p.EpisodeTitle, &p.PodcastTitle,
			&p.PositionSeconds, &p.DurationSeconds, &p.Completed, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playback progress: %w", err)
		}
		history = append(history, &p)
	}
	return history, nil
}
