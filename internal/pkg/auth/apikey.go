package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrKeyMismatch indicates the presented key does not match the stored hash.
var ErrKeyMismatch = errors.New("api key mismatch")

// KeyHasher hashes and verifies frontend API keys.
type KeyHasher interface {
	Hash(key string) (string, error)
	Verify(hash, key string) error
}

// BcryptKeyHasher stores keys as bcrypt hashes.
type BcryptKeyHasher struct {
	cost int
}

// NewBcryptKeyHasher creates BcryptKeyHasher. Zero cost selects bcrypt.DefaultCost.
func NewBcryptKeyHasher(cost int) *BcryptKeyHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptKeyHasher{cost: cost}
}

// Hash returns bcrypt hash of key. Used by operators to produce API_KEY_HASH.
func (h *BcryptKeyHasher) Hash(key string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(key), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Verify compares key with hash. An empty hash never matches.
func (h *BcryptKeyHasher) Verify(hash, key string) error {
	if hash == "" || key == "" {
		return ErrKeyMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrKeyMismatch
	}
	return nil
}
