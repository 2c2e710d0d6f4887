package controller

import (
	"net/http"
	"strings"
)

// HandleStats returns the public aggregate snapshot.
// Endpoint: GET /stats
func (c *Controller) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.App.Stats.Public(r.Context()))
}

// HandleAdminStats returns the detailed operator snapshot. When ADMIN_TOKEN is
// configured the request must carry it as a bearer token.
// Endpoint: GET /stats/admin
func (c *Controller) HandleAdminStats(w http.ResponseWriter, r *http.Request) {
	if c.AdminToken != "" {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != c.AdminToken {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
	}
	writeJSON(w, http.StatusOK, c.App.Stats.Admin(r.Context()))
}
