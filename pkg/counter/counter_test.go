package counter

import (
	"context"
	"testing"
	"time"

	"github.com/spunkbet/analytics/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// putCountingStore counts writes so tests can assert a no-op stayed a no-op.
type putCountingStore struct {
	kv.Store
	puts int
}

func (s *putCountingStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	s.puts++
	return s.Store.Put(ctx, key, value, ttl)
}

func TestReadAbsentOrGarbled(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	counters := New(store, zaptest.NewLogger(t))

	tests := []struct {
		name   string
		stored string
		skip   bool
		want   int64
	}{
		{name: "absent key", skip: true, want: 0},
		{name: "valid value", stored: "42", want: 42},
		{name: "garbled value", stored: "not-a-number", want: 0},
		{name: "negative value", stored: "-7", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "c:" + tt.name
			if !tt.skip {
				require.NoError(t, store.Put(ctx, key, tt.stored, 0))
			}
			assert.Equal(t, tt.want, counters.Read(ctx, key))
		})
	}
}

func TestIncrementMonotonic(t *testing.T) {
	ctx := context.Background()
	counters := New(kv.NewMemory(), zaptest.NewLogger(t))

	// Serialized increments never move backwards.
	var last int64
	for i := 0; i < 5; i++ {
		before := counters.Read(ctx, "pv:total")
		require.NoError(t, counters.Inc(ctx, "pv:total"))
		after := counters.Read(ctx, "pv:total")
		assert.GreaterOrEqual(t, after, before)
		assert.Greater(t, after, last)
		last = after
	}
	assert.Equal(t, int64(5), last)

	require.NoError(t, counters.IncBy(ctx, "wager:total", 250))
	require.NoError(t, counters.IncBy(ctx, "wager:total", 100))
	assert.Equal(t, int64(350), counters.Read(ctx, "wager:total"))
}

func TestCounterExpiryReadsAsZero(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	counters := New(store, zaptest.NewLogger(t))

	now := time.Now()
	store.Clock = func() time.Time { return now }

	require.NoError(t, counters.Inc(ctx, "pv:2024-01-01"))
	assert.Equal(t, int64(1), counters.Read(ctx, "pv:2024-01-01"))

	// Jump past the retention window; the key reads back as absent, not an
	// error.
	now = now.Add(CounterTTL + time.Hour)
	assert.Equal(t, int64(0), counters.Read(ctx, "pv:2024-01-01"))
}

func TestSetRoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	counters := New(store, zaptest.NewLogger(t))

	members := []string{"charlie", "alpha", "bravo"}
	for _, m := range members {
		added, err := counters.AddToSet(ctx, "roster", m, time.Hour)
		require.NoError(t, err)
		assert.True(t, added)
	}

	got := counters.ReadSet(ctx, "roster")
	assert.Equal(t, members, got.Members(), "insertion order must survive persistence")
	assert.Equal(t, 3, got.Len())
	assert.True(t, got.Has("alpha"))
	assert.False(t, got.Has("delta"))
}

func TestAddToSetSkipsRedundantWrite(t *testing.T) {
	ctx := context.Background()
	store := &putCountingStore{Store: kv.NewMemory()}
	counters := New(store, zaptest.NewLogger(t))

	added, err := counters.AddToSet(ctx, "uv:2024-01-01", "fp1", time.Hour)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, store.puts)

	added, err = counters.AddToSet(ctx, "uv:2024-01-01", "fp1", time.Hour)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, store.puts, "re-adding an existing member must not rewrite the set")
}

func TestReadSetGarbledIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	counters := New(store, zaptest.NewLogger(t))

	require.NoError(t, store.Put(ctx, "roster", "{broken", 0))
	assert.Equal(t, 0, counters.ReadSet(ctx, "roster").Len())
}
