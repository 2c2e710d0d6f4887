package analytics

import (
	"context"

	"github.com/spunkbet/analytics/app/analytics/types"
	"github.com/spunkbet/analytics/pkg/counter"
	"github.com/spunkbet/analytics/pkg/ingest"
	"github.com/spunkbet/analytics/pkg/kv"
	"github.com/spunkbet/analytics/pkg/logging"
	"github.com/spunkbet/analytics/pkg/stats"
	"github.com/spunkbet/analytics/pkg/tournament"
	"go.uber.org/zap"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	store, storeErr := kv.NewRedis(ctx, logger)
	if storeErr != nil {
		logger.Fatal("Unable to connect to the KV store", zap.Error(storeErr))
	}

	counters := counter.New(store, logger)
	cfg := tournament.ConfigFromEnv()
	logger.Info("Tournament configured",
		zap.String("id", cfg.ID),
		zap.Int64("endTime", cfg.EndTime))

	app := &types.App{
		Store:      store,
		Counters:   counters,
		Recorder:   ingest.New(counters, logger),
		Stats:      stats.NewReader(counters, store, logger),
		Tournament: tournament.NewEngine(cfg, store, counters, logger),
		Logger:     logger,
	}

	if err := SetupReporter(ctx, app); err != nil {
		logger.Fatal("Unable to set up snapshot reporter", zap.Error(err))
	}

	return app
}
