package game

import (
	"errors"
	"math/rand"

	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/rs/zerolog"
)

var (
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrHandInProgress   = errors.New("hand already in progress")
	ErrNoActiveGame     = errors.New("no active game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidAction    = errors.New("action not valid in this state")
	ErrRaiseTooSmall    = errors.New("raise below minimum")
	ErrBettingCapped    = errors.New("betting is capped")
	ErrBadAmount        = errors.New("amount out of bounds")
	ErrNotInDrawPhase   = errors.New("not in a draw phase")
	ErrBadDrawIndexes   = errors.New("invalid discard indexes")
	ErrHandAborted      = errors.New("hand aborted")
)

// Table is the game-facing state of a room: the ordered seat array, the
// positional indices, and the authoritative GameState. All mutation goes
// through the engine; the session layer serializes callers.
type Table struct {
	Rules Rules
	Seats []*Seat // fixed length, nil = empty seat

	Button        int
	Active        int // -1 when no seat is to act
	StreetStarter int // who opened (or re-opened) the current round
	LastAggressor int

	SmallBlind int
	BigBlind   int
	StudAnte   int

	State *GameState

	logger zerolog.Logger
	rng    *rand.Rand
	// stacked is an optional deterministic deck for tests; consumed by
	// the next StartHand.
	stacked *card.Deck
}

// TableOption configures table construction
type TableOption func(*Table)

// WithRNG supplies a deterministic random source for shuffles
func WithRNG(rng *rand.Rand) TableOption {
	return func(t *Table) { t.rng = rng }
}

// WithStackedDeck makes the next hand deal from a fixed deck. Test hook.
func WithStackedDeck(d *card.Deck) TableOption {
	return func(t *Table) { t.stacked = d }
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) TableOption {
	return func(t *Table) { t.logger = logger }
}

// NewTable creates a table for a variant with the given seat count and stakes
func NewTable(rules Rules, seatCount, smallBlind, bigBlind int, opts ...TableOption) *Table {
	t := &Table{
		Rules:         rules,
		Seats:         make([]*Seat, seatCount),
		Button:        -1,
		Active:        -1,
		StreetStarter: -1,
		LastAggressor: -1,
		SmallBlind:    smallBlind,
		BigBlind:      bigBlind,
		StudAnte:      bigBlind / 5,
		State:         &GameState{Phase: PhaseWaiting},
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetVariant swaps the table's rules between hands
func (t *Table) SetVariant(rules Rules) error {
	if t.State.InProgress() {
		return ErrHandInProgress
	}
	t.Rules = rules
	return nil
}

// SeatCount returns the number of seats at the table
func (t *Table) SeatCount() int {
	return len(t.Seats)
}

// SeatIndex returns the index of the seat held by a player id, or -1
func (t *Table) SeatIndex(playerID string) int {
	for i, s := range t.Seats {
		if s != nil && s.ID == playerID {
			return i
		}
	}
	return -1
}

// OccupiedSeats returns the number of non-empty seats
func (t *Table) OccupiedSeats() int {
	n := 0
	for _, s := range t.Seats {
		if s != nil {
			n++
		}
	}
	return n
}

// Startable reports whether a seat can be dealt into the next hand
func Startable(s *Seat) bool {
	if s == nil || s.Stack <= 0 || s.PendingSitOut || s.PendingLeave {
		return false
	}
	if s.Status == StatusSitOut {
		return s.PendingJoin && !s.WaitingForBB
	}
	return true
}

// StartableCount returns the number of seats eligible for the next hand
func (t *Table) StartableCount() int {
	n := 0
	for _, s := range t.Seats {
		if Startable(s) {
			n++
		}
	}
	return n
}

// nextSeat walks clockwise from (and excluding) from, returning the first
// seat index whose occupant satisfies pred, or -1.
func (t *Table) nextSeat(from int, pred func(*Seat) bool) int {
	n := len(t.Seats)
	for i := 1; i <= n; i++ {
		idx := ((from + i) % n + n) % n
		if s := t.Seats[idx]; s != nil && pred(s) {
			return idx
		}
	}
	return -1
}

// nextActor returns the next seat that can still take a betting action
func (t *Table) nextActor(from int) int {
	return t.nextSeat(from, func(s *Seat) bool { return s.CanAct() })
}

// liveCount returns the number of non-folded, dealt-in seats
func (t *Table) liveCount() int {
	n := 0
	for _, s := range t.Seats {
		if s != nil && s.InHand() {
			n++
		}
	}
	return n
}

// actableCount returns the number of seats that can still bet
func (t *Table) actableCount() int {
	n := 0
	for _, s := range t.Seats {
		if s != nil && s.CanAct() {
			n++
		}
	}
	return n
}

// PotTotal returns chips committed by all seats this hand
func (t *Table) PotTotal() int {
	total := 0
	for _, s := range t.Seats {
		if s != nil {
			total += s.TotalBet
		}
	}
	return total
}

// AbortHand refunds all commitments and returns the table to WAITING.
// Used when an integrity failure (e.g. deck underflow) poisons a hand.
func (t *Table) AbortHand() {
	for _, s := range t.Seats {
		if s == nil {
			continue
		}
		s.Stack += s.TotalBet
		s.Bet = 0
		s.TotalBet = 0
		s.Hand = nil
		s.UpCards = nil
		if s.Status == StatusFolded || s.Status == StatusAllIn {
			s.Status = StatusActive
		}
	}
	t.Active = -1
	t.State.Phase = PhaseWaiting
	t.State.Board = nil
	t.State.IsDrawPhase = false
	t.State.IsRunout = false
	t.logger.Error().Int("hand", t.State.HandNumber).Msg("hand aborted, pot refunded")
}
