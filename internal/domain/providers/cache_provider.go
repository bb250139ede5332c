package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, returning ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// GetMulti retrieves several values at once; absent keys are left out of the map
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMulti stores several values with the same expiration
	SetMulti(ctx context.Context, values map[string][]byte, expirationSeconds int) error
}
