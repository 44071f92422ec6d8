package usecase

import (
	"context"

	"github.com/polkiloo/storebot/internal/config"
	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	pkgAuth "github.com/polkiloo/storebot/internal/pkg/auth"
)

// SessionUseCase authenticates the chat frontend acting on behalf of a user.
type SessionUseCase struct {
	keyHash string
	hasher  pkgAuth.KeyHasher
	tokens  pkgAuth.Strategy
}

// NewSessionUseCase constructs SessionUseCase.
func NewSessionUseCase(cfg *config.Config, hasher pkgAuth.KeyHasher, strategy pkgAuth.Strategy) *SessionUseCase {
	return &SessionUseCase{keyHash: cfg.APIKeyHash, hasher: hasher, tokens: strategy}
}

// Open verifies the frontend API key and issues a token scoped to userID.
func (u *SessionUseCase) Open(_ context.Context, userID int64, apiKey string) (string, error) {
	if userID <= 0 || apiKey == "" {
		return "", domainErrors.ErrInvalidAPIKey
	}
	if err := u.hasher.Verify(u.keyHash, apiKey); err != nil {
		return "", domainErrors.ErrInvalidAPIKey
	}
	return u.tokens.IssueToken(userID)
}

// ParseToken extracts user id from a session token.
func (u *SessionUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
