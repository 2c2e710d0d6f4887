package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/spunkbet/analytics/pkg/counter"
	"github.com/spunkbet/analytics/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC) // Wednesday

func newTestRecorder(t *testing.T) (*Recorder, *kv.Memory, *counter.Counters) {
	store := kv.NewMemory()
	counters := counter.New(store, zaptest.NewLogger(t))
	rec := New(counters, zaptest.NewLogger(t)).WithNow(func() time.Time { return testNow })
	return rec, store, counters
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    Event
		wantErr error
	}{
		{name: "missing event name", payload: Payload{}, wantErr: ErrMissingEvent},
		{name: "visit defaults page", payload: Payload{Event: "visit"}, want: Visit{Page: "home"}},
		{name: "visit with ref", payload: Payload{Event: "visit", Page: "games", Ref: "tw"}, want: Visit{Page: "games", Ref: "tw"}},
		{name: "game play defaults", payload: Payload{Event: "game_play", Bet: 50}, want: GamePlay{Game: "unknown", Bet: 50}},
		{name: "share defaults platform", payload: Payload{Event: "share"}, want: Share{Platform: "x"}},
		{name: "referral click keeps empty code", payload: Payload{Event: "referral_click"}, want: ReferralClick{}},
		{name: "unrecognized maps to unknown", payload: Payload{Event: "mystery"}, want: Unknown{Name: "mystery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownEventMutatesNothing(t *testing.T) {
	rec, store, _ := newTestRecorder(t)

	receipt, err := rec.Record(context.Background(), Unknown{Name: "future_event"}, Meta{Addr: "1.2.3.4"})
	require.NoError(t, err)
	assert.False(t, receipt.NewVisitor)
	assert.Equal(t, 0, store.Len(), "no counter may be touched")
}

func TestRecordVisit(t *testing.T) {
	ctx := context.Background()
	rec, _, counters := newTestRecorder(t)

	meta := Meta{Addr: "203.0.113.7", Country: "DE", UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)"}
	receipt, err := rec.Record(ctx, Visit{Page: "home", Ref: "partner"}, meta)
	require.NoError(t, err)
	assert.True(t, receipt.NewVisitor)

	assert.Equal(t, 1, counters.ReadSet(ctx, "uv:2024-01-03").Len())
	assert.Equal(t, 1, counters.ReadSet(ctx, "uv:week:2024-01-01").Len())
	assert.Equal(t, int64(1), counters.Read(ctx, "pv:2024-01-03"))
	assert.Equal(t, int64(1), counters.Read(ctx, "pv:total"))
	assert.Equal(t, int64(1), counters.Read(ctx, "hour:2024-01-03:15"))
	assert.Equal(t, int64(1), counters.Read(ctx, "country:2024-01-03:DE"))
	assert.Equal(t, int64(1), counters.Read(ctx, "country:total:DE"))
	assert.Equal(t, int64(1), counters.Read(ctx, "device:2024-01-03:mobile"))
	assert.Equal(t, int64(1), counters.Read(ctx, "ref:2024-01-03:partner"))
	assert.Equal(t, int64(1), counters.Read(ctx, "ref:total:partner"))
	assert.Equal(t, int64(1), counters.Read(ctx, "page:2024-01-03:home"))

	// Same visitor again today: views grow, uniques do not.
	receipt, err = rec.Record(ctx, Visit{Page: "home"}, meta)
	require.NoError(t, err)
	assert.False(t, receipt.NewVisitor)
	assert.Equal(t, 1, counters.ReadSet(ctx, "uv:2024-01-03").Len())
	assert.Equal(t, int64(2), counters.Read(ctx, "pv:2024-01-03"))

	// A different visitor is a new unique.
	receipt, err = rec.Record(ctx, Visit{Page: "home"}, Meta{Addr: "203.0.113.8"})
	require.NoError(t, err)
	assert.True(t, receipt.NewVisitor)
	assert.Equal(t, 2, counters.ReadSet(ctx, "uv:2024-01-03").Len())
}

func TestRecordGamePlay(t *testing.T) {
	ctx := context.Background()
	rec, _, counters := newTestRecorder(t)

	_, err := rec.Record(ctx, GamePlay{Game: "dice", Bet: 100, Result: "win"}, Meta{})
	require.NoError(t, err)
	_, err = rec.Record(ctx, GamePlay{Game: "dice", Bet: 40, Result: "lose"}, Meta{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), counters.Read(ctx, "games:2024-01-03:dice"))
	assert.Equal(t, int64(2), counters.Read(ctx, "games:total:dice"))
	assert.Equal(t, int64(2), counters.Read(ctx, "games:2024-01-03:all"))
	assert.Equal(t, int64(2), counters.Read(ctx, "games:total:all"))
	assert.Equal(t, int64(140), counters.Read(ctx, "wager:2024-01-03"))
	assert.Equal(t, int64(140), counters.Read(ctx, "wager:total"))
	assert.Equal(t, int64(1), counters.Read(ctx, "wins:2024-01-03:dice"))
	assert.Equal(t, int64(1), counters.Read(ctx, "wins:total"))
}

func TestRecordSimpleEvents(t *testing.T) {
	ctx := context.Background()
	rec, _, counters := newTestRecorder(t)

	_, err := rec.Record(ctx, FaucetClaim{}, Meta{})
	require.NoError(t, err)
	_, err = rec.Record(ctx, WalletConnect{}, Meta{})
	require.NoError(t, err)
	_, err = rec.Record(ctx, Share{Platform: "telegram"}, Meta{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), counters.Read(ctx, "faucet:2024-01-03"))
	assert.Equal(t, int64(1), counters.Read(ctx, "faucet:total"))
	assert.Equal(t, int64(1), counters.Read(ctx, "wallet:2024-01-03"))
	assert.Equal(t, int64(1), counters.Read(ctx, "wallet:total"))
	assert.Equal(t, int64(1), counters.Read(ctx, "share:2024-01-03:telegram"))
	assert.Equal(t, int64(1), counters.Read(ctx, "share:total"))
}

func TestRecordReferralClick(t *testing.T) {
	ctx := context.Background()
	rec, _, counters := newTestRecorder(t)

	// With a code: per-code counters plus the unconditional daily counter.
	_, err := rec.Record(ctx, ReferralClick{Code: "abc"}, Meta{})
	require.NoError(t, err)
	// Without a code: only the unconditional daily counter moves.
	_, err = rec.Record(ctx, ReferralClick{}, Meta{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), counters.Read(ctx, "refclick:2024-01-03:abc"))
	assert.Equal(t, int64(1), counters.Read(ctx, "refclick:total:abc"))
	assert.Equal(t, int64(2), counters.Read(ctx, "refclick:2024-01-03"))
}

func TestDeviceClass(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{ua: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", want: "desktop"},
		{ua: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", want: "mobile"},
		{ua: "Mozilla/5.0 (Linux; Android 14; Pixel 8)", want: "mobile"},
		{ua: "Mozilla/5.0 (iPad; CPU OS 17_0) Mobile/15E148", want: "mobile"},
		{ua: "", want: "desktop"},
		{ua: "curl/8.4.0", want: "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.ua, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceClass(tt.ua))
		})
	}
}
