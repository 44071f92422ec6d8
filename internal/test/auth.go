package test

import (
	"context"
	"errors"

	pkgAuth "github.com/polkiloo/storebot/internal/pkg/auth"
)

// KeyHasherStub provides deterministic key hashing for tests.
type KeyHasherStub struct {
	HashFn   func(string) (string, error)
	VerifyFn func(string, string) error
}

// Hash returns a predictable hash for the supplied key.
func (h KeyHasherStub) Hash(key string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(key)
	}
	return "hash:" + key, nil
}

// Verify validates key against stored hash.
func (h KeyHasherStub) Verify(hash, key string) error {
	if h.VerifyFn != nil {
		return h.VerifyFn(hash, key)
	}
	if hash != "hash:"+key {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(int64) (string, error)
	ParseFn func(string) (int64, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(userID int64) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(userID)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	ID      int64
	Err     error
	ParseFn func(string) (int64, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}

// SessionFacadeStub simulates session endpoints.
type SessionFacadeStub struct {
	OpenFn  func(context.Context, int64, string) (string, error)
	ParseFn func(string) (int64, error)
}

// OpenSession returns token unless overridden.
func (s SessionFacadeStub) OpenSession(ctx context.Context, userID int64, apiKey string) (string, error) {
	if s.OpenFn != nil {
		return s.OpenFn(ctx, userID, apiKey)
	}
	return "token", nil
}

// ParseToken returns stored identifier for authenticated user.
func (s SessionFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

var _ pkgAuth.KeyHasher = KeyHasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
