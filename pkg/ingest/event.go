package ingest

import "errors"

// ErrMissingEvent is returned when a payload carries no event name. It is the
// only way ingestion rejects a caller.
var ErrMissingEvent = errors.New("missing event")

// Event is the closed union of telemetry the front-end emits. Unrecognized
// event names decode to Unknown, which records nothing but still acknowledges,
// so newer front-ends stay compatible with older workers.
type Event interface {
	isEvent()
}

type Visit struct {
	Page string
	Ref  string
}

type GamePlay struct {
	Game   string
	Bet    int64
	Result string
}

type FaucetClaim struct{}

type WalletConnect struct{}

type Share struct {
	Platform string
}

type ReferralClick struct {
	Code string
}

type Unknown struct {
	Name string
}

func (Visit) isEvent()         {}
func (GamePlay) isEvent()      {}
func (FaucetClaim) isEvent()   {}
func (WalletConnect) isEvent() {}
func (Share) isEvent()         {}
func (ReferralClick) isEvent() {}
func (Unknown) isEvent()       {}

// Payload is the wire shape of a /track request body. Fields beyond Event are
// per-type and optional.
type Payload struct {
	Event    string  `json:"event"`
	Page     string  `json:"page,omitempty"`
	Ref      string  `json:"ref,omitempty"`
	Game     string  `json:"game,omitempty"`
	Bet      float64 `json:"bet,omitempty"`
	Result   string  `json:"result,omitempty"`
	Platform string  `json:"platform,omitempty"`
	Code     string  `json:"code,omitempty"`
}

// Decode turns a raw payload into its typed event, applying the per-type
// defaults the front-end relies on.
func Decode(p Payload) (Event, error) {
	switch p.Event {
	case "":
		return nil, ErrMissingEvent
	case "visit":
		page := p.Page
		if page == "" {
			page = "home"
		}
		return Visit{Page: page, Ref: p.Ref}, nil
	case "game_play":
		game := p.Game
		if game == "" {
			game = "unknown"
		}
		return GamePlay{Game: game, Bet: int64(p.Bet), Result: p.Result}, nil
	case "faucet_claim":
		return FaucetClaim{}, nil
	case "wallet_connect":
		return WalletConnect{}, nil
	case "share":
		platform := p.Platform
		if platform == "" {
			platform = "x"
		}
		return Share{Platform: platform}, nil
	case "referral_click":
		return ReferralClick{Code: p.Code}, nil
	default:
		return Unknown{Name: p.Event}, nil
	}
}
