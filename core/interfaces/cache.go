// Package interfaces defines the core interfaces used throughout the application.
// These interfaces allow for dependency injection and make the code testable.
package interfaces

import (
	"context"
	"time"
)

// Cache defines the interface for a key-value store with per-key expiry.
// Implementations can be Redis, in-memory, or SQLite.
//
// Example usage:
//
//	// Start a cool-down for a domain
//	err := cache.Set(ctx, "ratelimit:example.com", []byte("300"), 5*time.Minute)
//
//	// How long is left?
//	ttl, err := cache.TTL(ctx, "ratelimit:example.com")
//	if errors.IsNotFound(err) {
//		// no cool-down
//	}
type Cache interface {
	// Get retrieves a value from the cache by key.
	// A missing or expired key returns *errors.NotFoundError.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given key and TTL.
	// If ttl is 0, the value should be stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// TTL returns the remaining lifetime of key.
	// A key without expiry reports 0; a missing key returns *errors.NotFoundError.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
