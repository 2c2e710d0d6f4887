package analytics

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/spunkbet/analytics/app/analytics/controller"
	"github.com/spunkbet/analytics/app/analytics/types"
	"github.com/spunkbet/analytics/pkg/utils"
)

// NewServer wires the router and attaches the HTTP server to the app.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := utils.Env("ADDR", ":8787")

	app.Server = &http.Server{Addr: addr, Handler: controller.WithCORS(controller.WithRecover(app.Logger, router))}
	app.Logger.Info("Starting server", zap.String("addr", addr))

	return nil
}
