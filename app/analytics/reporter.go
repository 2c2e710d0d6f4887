package analytics

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spunkbet/analytics/app/analytics/types"
	"github.com/spunkbet/analytics/pkg/utils"
	"go.uber.org/zap"
)

// SetupReporter schedules a periodic log line with the public snapshot so
// operators get traffic totals without polling /stats/admin. Controlled by
// REPORT_CRON (six-field cron spec, seconds first); empty disables it.
func SetupReporter(ctx context.Context, app *types.App) error {
	spec := utils.Env("REPORT_CRON", "")
	if spec == "" {
		return nil
	}

	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		// keep each run bounded
		rctx, cancel := context.WithTimeout(ctx, 25*time.Second)
		defer cancel()

		snap := app.Stats.Public(rctx)
		app.Logger.Info("snapshot",
			zap.Int("uniqueVisitorsToday", snap.Today.UniqueVisitors),
			zap.Int64("pageViewsToday", snap.Today.PageViews),
			zap.Int64("gamesPlayedToday", snap.Today.GamesPlayed),
			zap.Int64("wagerVolumeToday", snap.Today.WagerVolume),
			zap.Int64("faucetClaimsToday", snap.Today.FaucetClaims),
			zap.Int64("totalPageViews", snap.AllTime.TotalPageViews))
	})
	if err != nil {
		return err
	}

	app.Cron = c
	app.Logger.Info("Snapshot reporter scheduled", zap.String("cronSpec", spec))
	return nil
}
