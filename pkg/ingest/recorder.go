// Package ingest classifies incoming telemetry events and fans each one out
// to the counter mutations it implies.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spunkbet/analytics/pkg/counter"
	"github.com/spunkbet/analytics/pkg/privacy"
	"go.uber.org/zap"
)

// Meta carries the request network metadata an event is attributed to. The
// raw address is hashed before anything is stored.
type Meta struct {
	Addr      string
	Country   string
	UserAgent string
}

// Receipt is what ingestion reports back to the caller.
type Receipt struct {
	// NewVisitor is set on a visit event whose daily fingerprint had not been
	// seen before today.
	NewVisitor bool
}

type Recorder struct {
	counters *counter.Counters
	logger   *zap.Logger
	now      func() time.Time
}

func New(counters *counter.Counters, logger *zap.Logger) *Recorder {
	return &Recorder{counters: counters, logger: logger, now: time.Now}
}

// WithNow overrides the clock. Test hook.
func (r *Recorder) WithNow(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record applies the event's counter effects. Write failures propagate so the
// HTTP boundary can answer 500; mutations already applied before the failure
// stay, which the eventually-consistent model tolerates.
func (r *Recorder) Record(ctx context.Context, ev Event, meta Meta) (Receipt, error) {
	now := r.now()
	today := privacy.Day(now)

	switch e := ev.(type) {
	case Visit:
		return r.recordVisit(ctx, e, meta, now)
	case GamePlay:
		keys := []string{
			"games:" + today + ":" + e.Game,
			"games:total:" + e.Game,
			"games:total:all",
			"games:" + today + ":all",
		}
		for _, k := range keys {
			if err := r.counters.Inc(ctx, k); err != nil {
				return Receipt{}, fmt.Errorf("game play counter %s: %w", k, err)
			}
		}
		if err := r.counters.IncBy(ctx, "wager:"+today, e.Bet); err != nil {
			return Receipt{}, err
		}
		if err := r.counters.IncBy(ctx, "wager:total", e.Bet); err != nil {
			return Receipt{}, err
		}
		if e.Result == "win" {
			if err := r.counters.Inc(ctx, "wins:"+today+":"+e.Game); err != nil {
				return Receipt{}, err
			}
			if err := r.counters.Inc(ctx, "wins:total"); err != nil {
				return Receipt{}, err
			}
		}
		return Receipt{}, nil

	case FaucetClaim:
		return Receipt{}, r.incPair(ctx, "faucet:"+today, "faucet:total")

	case WalletConnect:
		return Receipt{}, r.incPair(ctx, "wallet:"+today, "wallet:total")

	case Share:
		return Receipt{}, r.incPair(ctx, "share:"+today+":"+e.Platform, "share:total")

	case ReferralClick:
		if e.Code != "" {
			if err := r.incPair(ctx, "refclick:"+today+":"+e.Code, "refclick:total:"+e.Code); err != nil {
				return Receipt{}, err
			}
		}
		return Receipt{}, r.counters.Inc(ctx, "refclick:"+today)

	case Unknown:
		// Forward-compatible no-op: acknowledge without side effects.
		r.logger.Debug("unclassified event acknowledged", zap.String("event", e.Name))
		return Receipt{}, nil

	default:
		return Receipt{}, nil
	}
}

func (r *Recorder) recordVisit(ctx context.Context, e Visit, meta Meta, now time.Time) (Receipt, error) {
	today := privacy.Day(now)
	weekStart := privacy.WeekStart(now)
	hour := now.UTC().Hour()

	addr := meta.Addr
	if addr == "" {
		addr = "unknown"
	}
	country := meta.Country
	if country == "" {
		country = "??"
	}

	dailyID := privacy.Fingerprint(addr, today)
	weeklyID := privacy.Fingerprint(addr, weekStart)

	newVisitor, err := r.counters.AddToSet(ctx, "uv:"+today, dailyID, counter.VisitorSetTTL)
	if err != nil {
		return Receipt{}, fmt.Errorf("daily unique visitors: %w", err)
	}
	// Weekly uniques live in their own fingerprint domain and bucket, updated
	// independently of the daily set.
	if _, err := r.counters.AddToSet(ctx, "uv:week:"+weekStart, weeklyID, counter.VisitorSetTTL); err != nil {
		return Receipt{}, fmt.Errorf("weekly unique visitors: %w", err)
	}

	keys := []string{
		"pv:" + today,
		"pv:total",
		fmt.Sprintf("hour:%s:%d", today, hour),
		"country:" + today + ":" + country,
		"country:total:" + country,
		"device:" + today + ":" + DeviceClass(meta.UserAgent),
	}
	if e.Ref != "" {
		keys = append(keys, "ref:"+today+":"+e.Ref, "ref:total:"+e.Ref)
	}
	keys = append(keys, "page:"+today+":"+e.Page)

	for _, k := range keys {
		if err := r.counters.Inc(ctx, k); err != nil {
			return Receipt{}, fmt.Errorf("visit counter %s: %w", k, err)
		}
	}
	return Receipt{NewVisitor: newVisitor}, nil
}

func (r *Recorder) incPair(ctx context.Context, daily, total string) error {
	if err := r.counters.Inc(ctx, daily); err != nil {
		return err
	}
	return r.counters.Inc(ctx, total)
}

var mobileTokens = []string{"mobile", "android", "iphone"}

// DeviceClass buckets a user-agent into "mobile" or "desktop" by substring
// match. Anything unrecognized is desktop.
func DeviceClass(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, tok := range mobileTokens {
		if strings.Contains(ua, tok) {
			return "mobile"
		}
	}
	return "desktop"
}
