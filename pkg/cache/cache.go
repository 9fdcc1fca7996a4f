// Package cache stores rendered artifacts keyed by the hash of their DOT
// source. FileCache backs the CLI, RedisCache the HTTP API and
// NullCache disables caching.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with an optional
// expiry. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Close releases resources held by the cache.
	Close() error
}

// TTLArtifact is the default lifetime of a rendered SVG, PNG or PDF file.
const TTLArtifact = 24 * time.Hour
