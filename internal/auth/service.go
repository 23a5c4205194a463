package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidKey is returned when the provided API key does not match the configured hash.
var ErrInvalidKey = errors.New("invalid API key")

const keyPrefix = "rb_"

// Service provides authentication operations.
type Service struct {
	keyHash []byte
}

// NewService creates a new auth Service checking keys against a bcrypt hash.
func NewService(keyHash string) *Service {
	return &Service{keyHash: []byte(keyHash)}
}

// GenerateKey creates a new API key and its bcrypt hash. The raw key is:
// 32 random bytes -> base64url -> prepend "rb_".
func GenerateKey(bcryptCost int) (rawKey, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	rawKey = keyPrefix + base64.RawURLEncoding.EncodeToString(b)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("hashing key: %w", err)
	}

	return rawKey, string(hashBytes), nil
}

// Authenticate resolves a raw API key to an Identity.
func (s *Service) Authenticate(_ context.Context, rawKey string) (*Identity, error) {
	if rawKey == "" || len(s.keyHash) == 0 {
		return nil, ErrInvalidKey
	}

	err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(rawKey))
	if err == nil {
		id := AdminIdentity
		return &id, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, ErrInvalidKey
	}
	return nil, fmt.Errorf("comparing key hash: %w", err)
}
