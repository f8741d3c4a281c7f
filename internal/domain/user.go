package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered listener. The ID is the opaque account
// identifier issued by the authentication provider; rows are created on
// first authenticated access (upsert-on-login) and never hard-deleted by
// quota logic.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Password         string    `json:"-"` // bcrypt hash, never serialized
	Role             string    `json:"role"`
	Plan             Plan      `json:"plan"`
	SummaryCount     int       `json:"summaryCount"`
	SearchCount      int       `json:"searchCount"`
	QuotaPeriodStart time.Time `json:"quotaPeriodStart"`
	ExportToken      string    `json:"-"` // workspace-export token, AES-GCM encrypted at rest
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UsedFor returns the stored counter for a feature.
func (u *User) UsedFor(f Feature) int {
	if f == FeatureSearch {
		return u.SearchCount
	}
	return u.SummaryCount
}

// LoginRequest is the validated input for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse is the API response after successful login.
type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// LoginUser is the user info returned after login.
type LoginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Plan  Plan   `json:"plan"`
}

// JWTClaims represents the JWT payload.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateUserRequest is the validated input for creating a user.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UserResponse is the safe API response for a user (no password, no token).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportTokenRequest is the validated input for storing a workspace-export token.
type ExportTokenRequest struct {
	Token string `json:"token" validate:"required,min=8"`
}

// NewUserID generates a new UUID for a user.
func NewUserID() string {
	return uuid.New().String()
}
