// Package stats assembles read-only projections over the aggregated counters.
// Every figure is an independent counter read; nothing here assumes
// cross-counter atomicity, so a snapshot taken while events land may mix
// before/after values. That is the consistency the store offers.
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/spunkbet/analytics/pkg/counter"
	"github.com/spunkbet/analytics/pkg/kv"
	"github.com/spunkbet/analytics/pkg/privacy"
	"go.uber.org/zap"
)

// KnownGames enumerates the games the admin breakdown reports on.
var KnownGames = []string{"coinflip", "dice", "mines", "crash", "limbo", "keno", "wheel", "plinko", "hilo", "tower"}

type DayTotals struct {
	UniqueVisitors int   `json:"unique_visitors"`
	PageViews      int64 `json:"page_views"`
	GamesPlayed    int64 `json:"games_played"`
	WagerVolume    int64 `json:"wager_volume"`
	FaucetClaims   int64 `json:"faucet_claims"`
}

type WeekTotals struct {
	UniqueVisitors int `json:"unique_visitors"`
}

type AllTimeTotals struct {
	TotalPageViews      int64 `json:"total_page_views"`
	TotalGames          int64 `json:"total_games"`
	TotalWagered        int64 `json:"total_wagered"`
	TotalFaucetClaims   int64 `json:"total_faucet_claims"`
	TotalShares         int64 `json:"total_shares"`
	TotalWalletConnects int64 `json:"total_wallet_connects"`
}

// PublicSnapshot is the externally safe projection: aggregate counts only, no
// identifiers.
type PublicSnapshot struct {
	Today     DayTotals     `json:"today"`
	Week      WeekTotals    `json:"week"`
	AllTime   AllTimeTotals `json:"all_time"`
	Timestamp string        `json:"timestamp"`
}

type DailyEntry struct {
	Date string `json:"date"`
	DayTotals
}

type GameTotals struct {
	Today int64 `json:"today"`
	Total int64 `json:"total"`
}

type DeviceTotals struct {
	Mobile  int64 `json:"mobile"`
	Desktop int64 `json:"desktop"`
}

// AdminSnapshot is the detailed operator projection.
type AdminSnapshot struct {
	Daily     []DailyEntry          `json:"daily"`
	Games     map[string]GameTotals `json:"games"`
	Countries map[string]int64      `json:"countries"`
	Devices   DeviceTotals          `json:"devices"`
	Hourly    map[int]int64         `json:"hourly"`
	Timestamp string                `json:"timestamp"`
}

type Reader struct {
	counters *counter.Counters
	store    kv.Store
	logger   *zap.Logger
	pool     pond.Pool
	now      func() time.Time
}

func NewReader(counters *counter.Counters, store kv.Store, logger *zap.Logger) *Reader {
	return &Reader{
		counters: counters,
		store:    store,
		logger:   logger,
		pool:     pond.NewPool(8),
		now:      time.Now,
	}
}

// WithNow overrides the clock. Test hook.
func (r *Reader) WithNow(now func() time.Time) *Reader {
	r.now = now
	return r
}

// Public assembles the public snapshot. Each figure is its own key lookup, so
// the reads run concurrently; a degraded store reads as zeros rather than an
// error.
func (r *Reader) Public(ctx context.Context) PublicSnapshot {
	now := r.now()
	today := privacy.Day(now)
	weekStart := privacy.WeekStart(now)

	var snap PublicSnapshot
	group := r.pool.NewGroupContext(ctx)

	group.Submit(func() { snap.Today.UniqueVisitors = r.counters.ReadSet(ctx, "uv:"+today).Len() })
	group.Submit(func() { snap.Week.UniqueVisitors = r.counters.ReadSet(ctx, "uv:week:"+weekStart).Len() })
	group.Submit(func() { snap.Today.PageViews = r.counters.Read(ctx, "pv:"+today) })
	group.Submit(func() { snap.AllTime.TotalPageViews = r.counters.Read(ctx, "pv:total") })
	group.Submit(func() { snap.Today.GamesPlayed = r.counters.Read(ctx, "games:"+today+":all") })
	group.Submit(func() { snap.AllTime.TotalGames = r.counters.Read(ctx, "games:total:all") })
	group.Submit(func() { snap.Today.WagerVolume = r.counters.Read(ctx, "wager:"+today) })
	group.Submit(func() { snap.AllTime.TotalWagered = r.counters.Read(ctx, "wager:total") })
	group.Submit(func() { snap.Today.FaucetClaims = r.counters.Read(ctx, "faucet:"+today) })
	group.Submit(func() { snap.AllTime.TotalFaucetClaims = r.counters.Read(ctx, "faucet:total") })
	group.Submit(func() { snap.AllTime.TotalShares = r.counters.Read(ctx, "share:total") })
	group.Submit(func() { snap.AllTime.TotalWalletConnects = r.counters.Read(ctx, "wallet:total") })

	_ = group.Wait()

	snap.Timestamp = now.UTC().Format(time.RFC3339)
	return snap
}

// Admin assembles the operator snapshot: trailing 7-day series, per-game
// breakdown, today's countries, device split and the 24-bucket hourly
// histogram. Independent lookups fan out on the worker pool.
func (r *Reader) Admin(ctx context.Context) AdminSnapshot {
	now := r.now()
	today := privacy.Day(now)

	daily := make([]DailyEntry, 7)
	games := make([]GameTotals, len(KnownGames))
	var hourly [24]int64
	var devices DeviceTotals

	group := r.pool.NewGroupContext(ctx)

	for i := 0; i < 7; i++ {
		i := i
		day := privacy.Day(now.AddDate(0, 0, -i))
		group.Submit(func() {
			daily[i] = DailyEntry{
				Date: day,
				DayTotals: DayTotals{
					UniqueVisitors: r.counters.ReadSet(ctx, "uv:"+day).Len(),
					PageViews:      r.counters.Read(ctx, "pv:"+day),
					GamesPlayed:    r.counters.Read(ctx, "games:"+day+":all"),
					WagerVolume:    r.counters.Read(ctx, "wager:"+day),
					FaucetClaims:   r.counters.Read(ctx, "faucet:"+day),
				},
			}
		})
	}

	for i, game := range KnownGames {
		i, game := i, game
		group.Submit(func() {
			games[i] = GameTotals{
				Today: r.counters.Read(ctx, "games:"+today+":"+game),
				Total: r.counters.Read(ctx, "games:total:"+game),
			}
		})
	}

	for h := 0; h < 24; h++ {
		h := h
		group.Submit(func() { hourly[h] = r.counters.Read(ctx, fmt.Sprintf("hour:%s:%d", today, h)) })
	}

	group.Submit(func() { devices.Mobile = r.counters.Read(ctx, "device:"+today+":mobile") })
	group.Submit(func() { devices.Desktop = r.counters.Read(ctx, "device:"+today+":desktop") })

	countryPrefix := "country:" + today + ":"
	countryKeys, err := r.store.ListPrefix(ctx, countryPrefix)
	if err != nil {
		r.logger.Warn("country listing degraded to empty", zap.Error(err))
		countryKeys = nil
	}
	countryCounts := make([]int64, len(countryKeys))
	for i, key := range countryKeys {
		i, key := i, key
		group.Submit(func() { countryCounts[i] = r.counters.Read(ctx, key) })
	}

	_ = group.Wait()

	snap := AdminSnapshot{
		Daily:     daily,
		Games:     make(map[string]GameTotals, len(KnownGames)),
		Countries: make(map[string]int64, len(countryKeys)),
		Hourly:    make(map[int]int64, 24),
		Devices:   devices,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	for i, game := range KnownGames {
		snap.Games[game] = games[i]
	}
	for i, key := range countryKeys {
		parts := strings.Split(key, ":")
		snap.Countries[parts[len(parts)-1]] = countryCounts[i]
	}
	for h := 0; h < 24; h++ {
		snap.Hourly[h] = hourly[h]
	}
	return snap
}
