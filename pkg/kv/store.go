// Package kv abstracts the eventually-consistent key/value store that backs
// every counter, set and record in this service. The store offers no
// transactions and no read-after-write guarantee across regions; callers own
// the consequences of read-modify-write over it.
package kv

import (
	"context"
	"time"
)

// Store is the minimal surface the service needs from the backing store.
type Store interface {
	// Get returns the value for key. The second return is false when the key
	// is absent or expired; that is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put writes value under key with a per-key TTL. A zero TTL means no
	// expiration.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// ListPrefix returns all live keys beginning with prefix.
	ListPrefix(ctx context.Context, prefix string) ([]string, error)

	// Health reports whether the store is reachable.
	Health(ctx context.Context) error
}
