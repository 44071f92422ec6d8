package auth

import (
	"errors"
	"time"
)

// ErrInvalidToken indicates a malformed, forged or expired session token.
var ErrInvalidToken = errors.New("invalid session token")

// Strategy issues and verifies session tokens bound to a chat user id.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes token strategies.
type Options struct {
	TTL time.Duration
}
