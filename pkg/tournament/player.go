package tournament

// Player is the per-wallet score record, stored as JSON under
// t:<tournamentId>:<wallet>. The field set is a stored contract shared with
// the front-end; Wallet and Joined are omitted when zero so the never-scored
// placeholder serializes without them.
type Player struct {
	Wallet    string `json:"wallet,omitempty"`
	Score     int64  `json:"score"`
	Referrals int64  `json:"referrals"`
	Shares    int64  `json:"shares"`
	Wins      int64  `json:"wins"`
	Faucets   int64  `json:"faucets"`
	Joined    int64  `json:"joined,omitempty"` // unix milliseconds at creation
}

// maskWallet shortens a wallet address for display: first 8 and last 4
// characters around an ellipsis. Addresses too short to mask meaningfully are
// returned unchanged; masking is display-only, identity always travels in the
// full form.
func maskWallet(wallet string) string {
	if len(wallet) <= 12 {
		return wallet
	}
	return wallet[:8] + "..." + wallet[len(wallet)-4:]
}
