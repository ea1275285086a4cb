// Package cache stores rendered chart artifacts between runs.
//
// A rendered artifact is a pure function of the chart config, the view state,
// the loaded data and the output format, so [Keyer] hashes exactly those and
// every backend stores opaque bytes under the resulting key:
//
//   - [FileCache]: one file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance for several server replicas
//   - [NewNullCache]: stores nothing (caching disabled)
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// observability cache hooks.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by [Load] when a key is missing or expired.
var ErrNotFound = errors.New("cache entry not found")

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key and whether it was found. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Load is Get with a miss reported as [ErrNotFound].
func Load(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Entry lifetimes.
const (
	// TTLArtifact bounds rendered charts; a data refresh changes their key
	// anyway.
	TTLArtifact = 7 * 24 * time.Hour
	// TTLSnapshot bounds renders of stored snapshots, which never change.
	TTLSnapshot = 30 * 24 * time.Hour
)

// nullCache misses every lookup.
type nullCache struct{}

// NewNullCache returns a cache that stores nothing. It backs the "none"
// backend and one-off runs such as "data inspect".
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error { return nil }
func (nullCache) Clear(context.Context) (int, error) { return 0, nil }
func (nullCache) Close() error { return nil }
