package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/pkg/crypto"
)

// SettingsService manages per-user settings, currently the workspace-export
// access token stored encrypted alongside the user record. The export
// itself happens elsewhere; this only keeps the token at rest.
type SettingsService struct {
	users    UserStore
	cipher   *crypto.TokenCipher
	validate *validator.Validate
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(users UserStore, cipher *crypto.TokenCipher) *SettingsService {
	return &SettingsService{users: users, cipher: cipher, validate: validator.New()}
}

// SaveExportToken encrypts and stores a workspace-export token.
func (s *SettingsService) SaveExportToken(ctx context.Context, userID string, req *domain.ExportTokenRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return domain.ErrValidation(formatValidationErrors(err))
	}

	encrypted, err := s.cipher.Seal(req.Token)
	if err != nil {
		return domain.ErrInternal("failed to encrypt token", err)
	}

	if err := s.users.SetExportToken(ctx, userID, encrypted); err != nil {
		return domain.ErrInternal("failed to store token", err)
	}
	return nil
}
