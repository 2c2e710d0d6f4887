package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spunkbet/analytics/pkg/tournament"
	"go.uber.org/zap"
)

// HandleTournamentAction scores one action against a wallet.
// Endpoint: POST /tournament/action
func (c *Controller) HandleTournamentAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Wallet string `json:"wallet"`
		Action string `json:"action"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Wallet == "" || body.Action == "" {
		writeError(w, http.StatusBadRequest, "Missing wallet or action")
		return
	}

	res, err := c.App.Tournament.RecordAction(r.Context(), body.Wallet, body.Action)
	switch {
	case errors.Is(err, tournament.ErrEnded):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Tournament ended", "ended": true})
		return
	case errors.Is(err, tournament.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	case err != nil:
		c.App.Logger.Error("tournament action failed", zap.String("action", body.Action), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            true,
		"score":         res.Score,
		"action":        body.Action,
		"points_earned": res.Points,
	})
}

// HandleTournamentReferral rewards a referrer once per referred wallet.
// Endpoint: POST /tournament/referral
func (c *Controller) HandleTournamentReferral(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Referrer string `json:"referrer"`
		Referred string `json:"referred"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Referrer == "" || body.Referred == "" {
		writeError(w, http.StatusBadRequest, "Missing referrer or referred wallet")
		return
	}

	res, err := c.App.Tournament.RecordReferral(r.Context(), body.Referrer, body.Referred)
	switch {
	case errors.Is(err, tournament.ErrSelfReferral):
		writeError(w, http.StatusBadRequest, "Cannot refer yourself")
		return
	case errors.Is(err, tournament.ErrEnded):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Tournament ended", "ended": true})
		return
	case err != nil:
		c.App.Logger.Error("tournament referral failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if res.AlreadyCounted {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "already_counted": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"referrer_score": res.Score,
		"points_earned":  res.Points,
	})
}

// HandleTournamentLeaderboard returns the ranked board.
// Endpoint: GET /tournament/leaderboard?wallet=<optional>
func (c *Controller) HandleTournamentLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := c.App.Tournament.Leaderboard(r.Context(), r.URL.Query().Get("wallet"))
	if err != nil {
		c.App.Logger.Error("leaderboard failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleTournamentInfo returns the tournament metadata. Served before and
// after the end time alike.
// Endpoint: GET /tournament/info
func (c *Controller) HandleTournamentInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.App.Tournament.Info(r.Context()))
}

// HandleTournamentMe returns the requesting wallet's record and rank.
// Endpoint: GET /tournament/me?wallet=<required>
func (c *Controller) HandleTournamentMe(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeError(w, http.StatusBadRequest, "Missing wallet param")
		return
	}

	status, err := c.App.Tournament.PlayerStatus(r.Context(), wallet)
	if err != nil {
		c.App.Logger.Error("player status failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
