// Package tournament maintains per-wallet score records and the global player
// roster on top of the KV store, and ranks them into a leaderboard.
//
// Record updates are read-modify-write without a transaction: two concurrent
// actions for the same wallet can land on the same stale read and one update
// is lost. The design accepts that (availability over strict consistency);
// nothing here tries to compensate.
package tournament

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/spunkbet/analytics/pkg/counter"
	"github.com/spunkbet/analytics/pkg/kv"
	"go.uber.org/zap"
)

// RecordTTL bounds how long tournament keys live. A roster entry can outlive
// its player record; an expired record reads back as score 0 / absent.
const RecordTTL = 30 * 24 * time.Hour

var (
	ErrEnded         = errors.New("tournament ended")
	ErrInvalidAction = errors.New("invalid action")
	ErrSelfReferral  = errors.New("cannot refer yourself")
)

type Engine struct {
	cfg      Config
	store    kv.Store
	counters *counter.Counters
	logger   *zap.Logger
	pool     pond.Pool
	now      func() time.Time
}

func NewEngine(cfg Config, store kv.Store, counters *counter.Counters, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		counters: counters,
		logger:   logger,
		pool:     pond.NewPool(8),
		now:      time.Now,
	}
}

// WithNow overrides the clock. Test hook.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Ended reports whether scoring has closed. The boundary is inclusive: the
// configured end instant itself is already closed.
func (e *Engine) Ended() bool {
	return e.now().Unix() >= e.cfg.EndTime
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) recordKey(wallet string) string {
	return "t:" + e.cfg.ID + ":" + wallet
}

func (e *Engine) rosterKey() string {
	return "t:" + e.cfg.ID + ":players"
}

func (e *Engine) refsKey(referrer string) string {
	return "t:" + e.cfg.ID + ":refs:" + referrer
}

// loadPlayer returns the wallet's record, or a fresh one when absent or
// expired. A record that exists but cannot be decoded is a real failure; the
// stored format is a contract, not best-effort data.
func (e *Engine) loadPlayer(ctx context.Context, wallet string) (Player, error) {
	raw, ok, err := e.store.Get(ctx, e.recordKey(wallet))
	if err != nil {
		return Player{}, fmt.Errorf("load player %s: %w", wallet, err)
	}
	if !ok {
		return Player{Wallet: wallet, Joined: e.now().UnixMilli()}, nil
	}
	var p Player
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Player{}, fmt.Errorf("decode player %s: %w", wallet, err)
	}
	return p, nil
}

func (e *Engine) savePlayer(ctx context.Context, p Player) error {
	encoded, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return e.store.Put(ctx, e.recordKey(p.Wallet), string(encoded), RecordTTL)
}

// ensureRoster adds wallet to the global player set. A failure here leaves a
// record without roster membership; the wallet's next action heals it.
func (e *Engine) ensureRoster(ctx context.Context, wallet string) error {
	_, err := e.counters.AddToSet(ctx, e.rosterKey(), wallet, RecordTTL)
	return err
}

type ActionResult struct {
	Score  int64
	Points int64
}

// RecordAction scores one action against wallet: loads or creates the record,
// adds the configured point value, bumps the matching per-action counter
// field, persists and ensures roster membership.
func (e *Engine) RecordAction(ctx context.Context, wallet, action string) (ActionResult, error) {
	if e.Ended() {
		return ActionResult{}, ErrEnded
	}
	points, ok := e.cfg.Points[action]
	if !ok || points <= 0 {
		return ActionResult{}, ErrInvalidAction
	}

	player, err := e.loadPlayer(ctx, wallet)
	if err != nil {
		return ActionResult{}, err
	}

	player.Score += points
	switch action {
	case ActionReferral:
		player.Referrals++
	case ActionShare:
		player.Shares++
	case ActionGameWin:
		player.Wins++
	case ActionFaucetClaim:
		player.Faucets++
	}

	if err := e.savePlayer(ctx, player); err != nil {
		return ActionResult{}, err
	}
	if err := e.ensureRoster(ctx, wallet); err != nil {
		return ActionResult{}, err
	}

	return ActionResult{Score: player.Score, Points: points}, nil
}

type ReferralResult struct {
	AlreadyCounted bool
	Score          int64
	Points         int64
}

// RecordReferral rewards referrer for bringing referred, at most once per
// (referrer, referred) pair for the life of the tournament. A repeat call
// answers AlreadyCounted with no mutation, which makes client retries safe.
func (e *Engine) RecordReferral(ctx context.Context, referrer, referred string) (ReferralResult, error) {
	if referrer == referred {
		return ReferralResult{}, ErrSelfReferral
	}
	if e.Ended() {
		return ReferralResult{}, ErrEnded
	}

	added, err := e.counters.AddToSet(ctx, e.refsKey(referrer), referred, RecordTTL)
	if err != nil {
		return ReferralResult{}, err
	}
	if !added {
		return ReferralResult{AlreadyCounted: true}, nil
	}

	points := e.cfg.Points[ActionReferral]
	player, err := e.loadPlayer(ctx, referrer)
	if err != nil {
		return ReferralResult{}, err
	}
	player.Score += points
	player.Referrals++

	if err := e.savePlayer(ctx, player); err != nil {
		return ReferralResult{}, err
	}
	if err := e.ensureRoster(ctx, referrer); err != nil {
		return ReferralResult{}, err
	}

	return ReferralResult{Score: player.Score, Points: points}, nil
}

type Entry struct {
	Rank       int    `json:"rank"`
	Wallet     string `json:"wallet"`
	WalletFull string `json:"walletFull"`
	Score      int64  `json:"score"`
	Referrals  int64  `json:"referrals"`
	Shares     int64  `json:"shares"`
	Wins       int64  `json:"wins"`
}

type RankInfo struct {
	Rank      int   `json:"rank"`
	Score     int64 `json:"score"`
	Referrals int64 `json:"referrals"`
	Shares    int64 `json:"shares"`
	Wins      int64 `json:"wins"`
}

type Board struct {
	Tournament   string    `json:"tournament"`
	TotalPlayers int       `json:"total_players"`
	Leaderboard  []Entry   `json:"leaderboard"`
	MyRank       *RankInfo `json:"my_rank"`
	Ended        bool      `json:"ended"`
	Winner       *Entry    `json:"winner"`
}

// rankedPlayers loads every record the roster references, skipping wallets
// whose record has expired, and sorts descending by score. The sort is stable
// and the input follows roster insertion order, so ties keep the order wallets
// first appeared; no secondary key is promised.
func (e *Engine) rankedPlayers(ctx context.Context) ([]Player, error) {
	roster := e.counters.ReadSet(ctx, e.rosterKey())
	wallets := roster.Members()

	// Independent key lookups; fan out but reassemble in roster order.
	loaded := make([]*Player, len(wallets))
	errs := make([]error, len(wallets))
	group := e.pool.NewGroupContext(ctx)
	for i, wallet := range wallets {
		i, wallet := i, wallet
		group.Submit(func() {
			raw, ok, err := e.store.Get(ctx, e.recordKey(wallet))
			if err != nil {
				errs[i] = err
				return
			}
			if !ok {
				return
			}
			var p Player
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				errs[i] = fmt.Errorf("decode player %s: %w", wallet, err)
				return
			}
			loaded[i] = &p
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		e.logger.Warn("leaderboard scan encountered error", zap.Error(err))
	}

	players := make([]Player, 0, len(wallets))
	for i := range loaded {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if loaded[i] != nil {
			players = append(players, *loaded[i])
		}
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return players, nil
}

// Leaderboard returns the ranked top 10 plus, when wallet participates, its
// own rank and score. Once the tournament has ended the board also names the
// winner.
func (e *Engine) Leaderboard(ctx context.Context, wallet string) (Board, error) {
	players, err := e.rankedPlayers(ctx)
	if err != nil {
		return Board{}, err
	}

	top := len(players)
	if top > 10 {
		top = 10
	}
	entries := make([]Entry, 0, top)
	for i := 0; i < top; i++ {
		p := players[i]
		entries = append(entries, Entry{
			Rank:       i + 1,
			Wallet:     maskWallet(p.Wallet),
			WalletFull: p.Wallet,
			Score:      p.Score,
			Referrals:  p.Referrals,
			Shares:     p.Shares,
			Wins:       p.Wins,
		})
	}

	var myRank *RankInfo
	if wallet != "" {
		for i, p := range players {
			if p.Wallet == wallet {
				myRank = &RankInfo{Rank: i + 1, Score: p.Score, Referrals: p.Referrals, Shares: p.Shares, Wins: p.Wins}
				break
			}
		}
	}

	board := Board{
		Tournament:   e.cfg.ID,
		TotalPlayers: len(players),
		Leaderboard:  entries,
		MyRank:       myRank,
		Ended:        e.Ended(),
	}
	if board.Ended && len(entries) > 0 {
		board.Winner = &entries[0]
	}
	return board, nil
}

type Status struct {
	Player
	Rank         *int `json:"rank"`
	TotalPlayers int  `json:"total_players,omitempty"`
}

// PlayerStatus returns wallet's record and 1-based rank, or a zeroed
// placeholder with null rank when the wallet has never scored.
func (e *Engine) PlayerStatus(ctx context.Context, wallet string) (Status, error) {
	raw, ok, err := e.store.Get(ctx, e.recordKey(wallet))
	if err != nil {
		return Status{}, fmt.Errorf("load player %s: %w", wallet, err)
	}
	if !ok {
		return Status{}, nil
	}
	var p Player
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Status{}, fmt.Errorf("decode player %s: %w", wallet, err)
	}

	players, err := e.rankedPlayers(ctx)
	if err != nil {
		return Status{}, err
	}
	status := Status{Player: p, TotalPlayers: len(players)}
	for i := range players {
		if players[i].Wallet == wallet {
			rank := i + 1
			status.Rank = &rank
			break
		}
	}
	return status, nil
}

type Info struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	EndTime      int64            `json:"endTime"`
	Ended        bool             `json:"ended"`
	Prize        Prize            `json:"prize"`
	Points       map[string]int64 `json:"points"`
	TotalPlayers int              `json:"total_players"`
}

// Info returns the tournament metadata and current roster size. Served before
// and after the end time alike.
func (e *Engine) Info(ctx context.Context) Info {
	roster := e.counters.ReadSet(ctx, e.rosterKey())
	return Info{
		ID:           e.cfg.ID,
		Name:         e.cfg.Name,
		EndTime:      e.cfg.EndTime,
		Ended:        e.Ended(),
		Prize:        e.cfg.Prize,
		Points:       e.cfg.Points,
		TotalPlayers: roster.Len(),
	}
}
