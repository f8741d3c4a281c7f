package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/podclip/backend/internal/domain"
)

// ChatRepository handles database operations for episode chat history.
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create persists one chat turn.
func (r *ChatRepository) Create(ctx context.Context, m *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, user_id, episode_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.UserID, m.EpisodeID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListByEpisode returns a user's conversation for one episode, oldest first.
func (r *ChatRepository) ListByEpisode(ctx context.Context, userID, episodeID string, limit int) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, user_id, episode_id, role, content, created_at
		FROM chat_messages
		WHERE user_id = $1 AND episode_id = $2
		ORDER BY created_at ASC LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, userID, episodeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.EpisodeID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}
