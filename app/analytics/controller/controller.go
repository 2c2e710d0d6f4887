package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/spunkbet/analytics/app/analytics/types"
	"github.com/spunkbet/analytics/pkg/utils"
	"go.uber.org/zap"
)

type Controller struct {
	App *types.App
	// AdminToken gates /stats/admin when non-empty; an empty token leaves the
	// endpoint open.
	AdminToken string
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App:        app,
		AdminToken: utils.Env("ADMIN_TOKEN", ""),
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	r.HandleFunc("/track", c.HandleTrack).Methods(http.MethodPost)
	r.HandleFunc("/stats", c.HandleStats).Methods(http.MethodGet)
	r.HandleFunc("/stats/admin", c.HandleAdminStats).Methods(http.MethodGet)

	r.HandleFunc("/tournament/action", c.HandleTournamentAction).Methods(http.MethodPost)
	r.HandleFunc("/tournament/referral", c.HandleTournamentReferral).Methods(http.MethodPost)
	r.HandleFunc("/tournament/leaderboard", c.HandleTournamentLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/tournament/info", c.HandleTournamentInfo).Methods(http.MethodGet)
	r.HandleFunc("/tournament/me", c.HandleTournamentMe).Methods(http.MethodGet)

	// Anything unmatched, including a known path with the wrong method, is the
	// same 404 document.
	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	return r, nil
}

// WithCORS is a middleware that adds CORS headers to the response. The surface
// is deliberately public: any origin, no credentials.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WithRecover converts a panicking handler into a generic 500 so internal
// detail never leaks to the caller.
func WithRecover(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "Internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
