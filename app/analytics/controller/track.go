package controller

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/spunkbet/analytics/pkg/ingest"
	"go.uber.org/zap"
)

// HandleTrack ingests one telemetry event.
// Endpoint: POST /track
func (c *Controller) HandleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// An unreadable body is treated as an empty payload; the missing event
	// name is then the caller's only rejection.
	var payload ingest.Payload
	_ = json.NewDecoder(r.Body).Decode(&payload)

	ev, err := ingest.Decode(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing event")
		return
	}

	receipt, err := c.App.Recorder.Record(ctx, ev, metaFromRequest(r))
	if err != nil {
		c.App.Logger.Error("event ingestion failed", zap.String("event", payload.Event), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	resp := map[string]interface{}{"ok": true}
	if _, isVisit := ev.(ingest.Visit); isVisit {
		resp["new_visitor"] = receipt.NewVisitor
	}
	writeJSON(w, http.StatusOK, resp)
}

// metaFromRequest pulls the network metadata events are attributed to. The
// edge proxy headers win; the raw address never goes further than the
// fingerprint hash.
func metaFromRequest(r *http.Request) ingest.Meta {
	addr := r.Header.Get("CF-Connecting-IP")
	if addr == "" {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			addr = strings.TrimSpace(strings.Split(fwd, ",")[0])
		}
	}
	if addr == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			addr = host
		} else {
			addr = r.RemoteAddr
		}
	}

	return ingest.Meta{
		Addr:      addr,
		Country:   r.Header.Get("CF-IPCountry"),
		UserAgent: r.UserAgent(),
	}
}
