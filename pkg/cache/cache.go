// Package cache stores backend graph responses between runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI.
//   - [RedisCache]: a shared Redis instance, for servers behind a load balancer.
//   - [NullCache]: stores nothing, for --no-cache and tests.
//
// All backends implement [Cache] and treat a missing or expired entry as a
// miss, never as an error.
//
// # Keys
//
// A [Keyer] derives keys from everything that changes a fetch response:
// project, view, threshold, node limit and language filter. Language order is
// irrelevant to the key. [ScopedKeyer] prefixes keys, typically with the
// backend's base URL, so two backends never share entries.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
