package tournament

import (
	"github.com/spunkbet/analytics/pkg/utils"
)

// Prize is display metadata for the tournament reward. Scoring never looks
// inside it; it is echoed verbatim by Info.
type Prize struct {
	Type          string `json:"type"`
	InscriptionID string `json:"inscriptionId"`
	Collection    string `json:"collection"`
	ImageURL      string `json:"imageUrl"`
}

// Config is the static description of one tournament instance.
type Config struct {
	ID      string
	Name    string
	EndTime int64 // unix seconds; scoring closes at this instant
	Points  map[string]int64
	Prize   Prize
}

// Action types with configured point values.
const (
	ActionReferral    = "referral"
	ActionShare       = "share"
	ActionGameWin     = "game_win"
	ActionFaucetClaim = "faucet_claim"
)

// ConfigFromEnv builds the tournament configuration from environment
// variables, falling back to the current production tournament.
// Environment variables:
//   - TOURNAMENT_ID, TOURNAMENT_NAME, TOURNAMENT_END_TIME
//   - TOURNAMENT_POINTS_REFERRAL, _SHARE, _GAME_WIN, _FAUCET_CLAIM
//   - TOURNAMENT_PRIZE_TYPE, _INSCRIPTION, _COLLECTION, _IMAGE_URL
func ConfigFromEnv() Config {
	inscription := utils.Env("TOURNAMENT_PRIZE_INSCRIPTION",
		"c6e9ad7454cf9bb8b1d75ec9df13229dee1e18f16a5fd57b6549de87e8cce4abi5")
	return Config{
		ID:      utils.Env("TOURNAMENT_ID", "spunkwars-1"),
		Name:    utils.Env("TOURNAMENT_NAME", "SPUNK WARS"),
		EndTime: utils.EnvInt64("TOURNAMENT_END_TIME", 1771551180),
		Points: map[string]int64{
			ActionReferral:    utils.EnvInt64("TOURNAMENT_POINTS_REFERRAL", 50),
			ActionShare:       utils.EnvInt64("TOURNAMENT_POINTS_SHARE", 10),
			ActionGameWin:     utils.EnvInt64("TOURNAMENT_POINTS_GAME_WIN", 3),
			ActionFaucetClaim: utils.EnvInt64("TOURNAMENT_POINTS_FAUCET_CLAIM", 1),
		},
		Prize: Prize{
			Type:          utils.Env("TOURNAMENT_PRIZE_TYPE", "ordinal"),
			InscriptionID: inscription,
			Collection:    utils.Env("TOURNAMENT_PRIZE_COLLECTION", "Puppet Corp"),
			ImageURL:      utils.Env("TOURNAMENT_PRIZE_IMAGE_URL", "https://ordinals.com/content/"+inscription),
		},
	}
}
