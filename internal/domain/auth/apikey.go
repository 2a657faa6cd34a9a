// Package auth holds API key identities for the admin surface.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrKeyNotFound is returned when no key matches the presented hash.
var ErrKeyNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity data for a validated API key.
type APIKeyInfo struct {
	KeyHash string
	Name    string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

var _ Repository = StaticRepository{}

// StaticRepository serves keys configured at startup, keyed by hex HMAC hash.
type StaticRepository map[string]APIKeyInfo

func (r StaticRepository) FindByHash(_ context.Context, hash string) (*APIKeyInfo, error) {
	info, ok := r[hash]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &info, nil
}
