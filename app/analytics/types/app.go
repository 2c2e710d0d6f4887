package types

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spunkbet/analytics/pkg/counter"
	"github.com/spunkbet/analytics/pkg/ingest"
	"github.com/spunkbet/analytics/pkg/kv"
	"github.com/spunkbet/analytics/pkg/stats"
	"github.com/spunkbet/analytics/pkg/tournament"
	"go.uber.org/zap"
)

type App struct {
	// Store is the backing key/value store; all state lives there, handlers
	// keep none.
	Store kv.Store
	// Counters is the aggregation layer over Store.
	Counters *counter.Counters
	// Recorder fans incoming events out to counter mutations.
	Recorder *ingest.Recorder
	// Stats assembles the public and admin read-only projections.
	Stats *stats.Reader
	// Tournament scores wallets and ranks the leaderboard.
	Tournament *tournament.Engine
	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
	// Cron drives the optional snapshot reporter; nil when disabled.
	Cron *cron.Cron
}

// Start starts the application and blocks until the context is canceled.
func (a *App) Start(ctx context.Context) {
	if a.Cron != nil {
		a.Cron.Start()
	}
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}

	_ = a.Server.Shutdown(shutdownCtx)

	if closer, ok := a.Store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Error("Failed to close store connection", zap.Error(err))
		}
	}
	a.Logger.Info("Server stopped")
}
