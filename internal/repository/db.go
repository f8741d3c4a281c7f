package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id                 TEXT PRIMARY KEY,
			email              TEXT NOT NULL UNIQUE,
			password           TEXT NOT NULL DEFAULT '',
			role               TEXT NOT NULL DEFAULT 'user',
			plan               TEXT NOT NULL DEFAULT 'free',
			summary_count      INT NOT NULL DEFAULT 0,
			search_count       INT NOT NULL DEFAULT 0,
			quota_period_start TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			export_token       TEXT NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id                   TEXT PRIMARY KEY,
			user_id              TEXT NOT NULL UNIQUE,
			status               TEXT NOT NULL,
			amount_cents         BIGINT NOT NULL DEFAULT 0,
			currency             TEXT NOT NULL DEFAULT 'usd',
			billing_interval     TEXT NOT NULL DEFAULT 'month',
			current_period_start TIMESTAMPTZ NOT NULL,
			current_period_end   TIMESTAMPTZ NOT NULL,
			cancel_at_period_end BOOLEAN NOT NULL DEFAULT FALSE,
			provider_id          TEXT NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS summaries (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			episode_id    TEXT NOT NULL,
			episode_title TEXT NOT NULL,
			podcast_title TEXT NOT NULL,
			body          TEXT NOT NULL,
			takeaways     TEXT[] NOT NULL DEFAULT '{}',
			degraded      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_summaries_user_id ON summaries(user_id);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			episode_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_chat_user_episode ON chat_messages(user_id, episode_id);

		CREATE TABLE IF NOT EXISTS playback_progress (
			user_id          TEXT NOT NULL,
			episode_id       TEXT NOT NULL,
			episode_title    TEXT NOT NULL DEFAULT '',
			podcast_title    TEXT NOT NULL DEFAULT '',
			position_seconds INT NOT NULL DEFAULT 0,
			duration_seconds INT NOT NULL DEFAULT 0,
			completed        BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, episode_id)
		);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
