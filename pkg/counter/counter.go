// Package counter implements the aggregation primitives: named numeric
// counters persisted as decimal strings and unique-member sets persisted as
// JSON arrays, both keyed into the KV store with a retention TTL.
package counter

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/spunkbet/analytics/pkg/kv"
	"go.uber.org/zap"
)

// Retention windows, matching the stored key contract.
const (
	CounterTTL    = 365 * 24 * time.Hour
	VisitorSetTTL = 90 * 24 * time.Hour
)

type Counters struct {
	store  kv.Store
	logger *zap.Logger
}

func New(store kv.Store, logger *zap.Logger) *Counters {
	return &Counters{store: store, logger: logger}
}

// Read returns the counter value under key, or 0 when the key is absent,
// expired, unparsable, or the store read fails. Reads never fail the caller;
// a struggling store degrades counts toward zero.
func (c *Counters) Read(ctx context.Context, key string) int64 {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("counter read degraded to zero", zap.String("key", key), zap.Error(err))
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Inc adds 1 to the counter under key.
func (c *Counters) Inc(ctx context.Context, key string) error {
	return c.IncBy(ctx, key, 1)
}

// IncBy adds n to the counter under key. The read-then-write is not atomic:
// two concurrent callers can land on the same stale read and one increment is
// lost. That is an accepted trade-off of the eventually-consistent store, not
// something this layer papers over.
func (c *Counters) IncBy(ctx context.Context, key string, n int64) error {
	current := c.Read(ctx, key)
	return c.store.Put(ctx, key, strconv.FormatInt(current+n, 10), CounterTTL)
}

// ReadSet returns the set stored under key, empty when absent, unparsable or
// the read fails.
func (c *Counters) ReadSet(ctx context.Context, key string) *Set {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("set read degraded to empty", zap.String("key", key), zap.Error(err))
		return NewSet()
	}
	if !ok {
		return NewSet()
	}
	s := NewSet()
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		return NewSet()
	}
	return s
}

// AddToSet inserts member into the set under key and reports whether it was
// newly added. The set is only written back when membership changed, so
// repeat sightings cost a read, not a write.
func (c *Counters) AddToSet(ctx context.Context, key, member string, ttl time.Duration) (bool, error) {
	s := c.ReadSet(ctx, key)
	if !s.Add(member) {
		return false, nil
	}
	encoded, err := json.Marshal(s)
	if err != nil {
		return false, err
	}
	return true, c.store.Put(ctx, key, string(encoded), ttl)
}
