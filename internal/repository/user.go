package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/podclip/backend/internal/domain"
)

const userColumns = `id, email, password, role, plan, summary_count, search_count, quota_period_start, export_token, created_at, updated_at`

// UserRepository handles database operations for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.Role, &u.Plan,
		&u.SummaryCount, &u.SearchCount, &u.QuotaPeriodStart, &u.ExportToken,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, password, role, plan, quota_period_start, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Email, u.Password, u.Role, u.Plan, u.QuotaPeriodStart, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetOrCreate returns the user row for an authenticated identity, creating a
// free-plan row on first access (upsert-on-login semantics).
func (r *UserRepository) GetOrCreate(ctx context.Context, id, email string) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, plan, quota_period_start)
		VALUES ($1, $2, 'free', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, id, email); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return r.FindByID(ctx, id)
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// FindByID returns a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// Exists checks if a user with the given email already exists.
func (r *UserRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// ListAll returns all users ordered by creation date.
func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// IncrementUsage bumps the counter for one feature by one. The increment is
// a single statement, so concurrent requests never lose updates even though
// check-then-increment as a whole is not atomic.
func (r *UserRepository) IncrementUsage(ctx context.Context, id string, feature domain.Feature) error {
	column := "summary_count"
	if feature == domain.FeatureSearch {
		column = "search_count"
	}
	query := fmt.Sprintf(`UPDATE users SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, column, column)
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s usage: %w", feature, err)
	}
	return nil
}

// ResetQuota zeroes both counters and moves the counting period forward.
func (r *UserRepository) ResetQuota(ctx context.Context, id string, periodStart time.Time) error {
	query := `
		UPDATE users
		SET summary_count = 0, search_count = 0, quota_period_start = $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, periodStart)
	if err != nil {
		return fmt.Errorf("failed to reset quota: %w", err)
	}
	return nil
}

// ListExpiredPeriods returns users whose counting period has rolled over.
// Lifetime plans have no recurring reset and are excluded.
func (r *UserRepository) ListExpiredPeriods(ctx context.Context, now time.Time) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE plan <> 'lifetime' AND quota_period_start + INTERVAL '1 month' <= $1
		ORDER BY quota_period_start
	`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired periods: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// SetPlan updates a user's billing tier.
func (r *UserRepository) SetPlan(ctx context.Context, id string, plan domain.Plan) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET plan = $2, updated_at = NOW() WHERE id = $1`, id, plan)
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	return nil
}

// SetExportToken stores the encrypted workspace-export token.
func (r *UserRepository) SetExportToken(ctx context.Context, id, encrypted string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET export_token = $2, updated_at = NOW() WHERE id = $1`, id, encrypted)
	if err != nil {
		return fmt.Errorf("failed to set export token: %w", err)
	}
	return nil
}
