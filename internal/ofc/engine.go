package ofc

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// Phase is the OFC hand state machine position
type Phase int8

const (
	PhaseWaiting Phase = iota
	PhaseInitialPlacing
	PhasePineapplePlacing
	PhaseScoring
)

// String returns the wire name of a phase
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING"
	case PhaseInitialPlacing:
		return "INITIAL_PLACING"
	case PhasePineapplePlacing:
		return "PINEAPPLE_PLACING"
	case PhaseScoring:
		return "SCORING"
	default:
		return "UNKNOWN"
	}
}

// maxPlayers caps OFC seats: a 54-card deck cannot feed more than three
// seventeen-card hands.
const maxPlayers = 3

const (
	initialDeal    = 5
	pineappleDeal  = 3
	fantasyDeal    = 14
	finalRound     = 5
	pineappleKeeps = 2
)

// Placement assigns one dealt card to a row
type Placement struct {
	Card card.Card
	Row  Row
}

// Player is one OFC seat's per-hand state
type Player struct {
	ID           string
	Board        Board
	CurrentCards []card.Card
	Discards     []card.Card
	HasPlaced    bool

	// Fantasyland for this hand: a one-shot fourteen-card placement.
	IsFantasyland bool
	// Earned entry (or continuation) into fantasyland for the next hand.
	FantasyNext bool
}

// Game is one OFC hand among up to three players. The session layer
// serializes callers; Game itself is not safe for concurrent use.
type Game struct {
	Phase    Phase
	Round    int // 1..5
	Turn     int // player index on turn during rounds 2..5, -1 otherwise
	Players  []*Player
	Deck     *card.Deck
	BigBlind int

	logger zerolog.Logger
	rng    *rand.Rand
}

// Option configures game construction
type Option func(*Game)

// WithRNG supplies a deterministic random source for shuffles
func WithRNG(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// WithStackedDeck deals from a fixed deck. Test hook.
func WithStackedDeck(d *card.Deck) Option {
	return func(g *Game) { g.Deck = d }
}

// NewGame creates an OFC hand for the given players. fantasyland marks
// players who earned a fourteen-card placement from the previous hand.
func NewGame(playerIDs []string, fantasyland map[string]bool, bigBlind int, opts ...Option) (*Game, error) {
	if len(playerIDs) > maxPlayers {
		return nil, ErrTooManySeats
	}
	g := &Game{
		Phase:    PhaseWaiting,
		Turn:     -1,
		BigBlind: bigBlind,
		logger:   zerolog.Nop(),
	}
	for _, id := range playerIDs {
		g.Players = append(g.Players, &Player{ID: id, IsFantasyland: fantasyland[id]})
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.Deck == nil {
		if g.rng != nil {
			g.Deck = card.NewDeck(card.WithJokers(), card.WithRNG(g.rng))
		} else {
			g.Deck = card.NewDeck(card.WithJokers())
		}
	}
	return g, nil
}

// Start deals the first round: five cards to each regular player, the
// full fourteen to fantasyland players.
func (g *Game) Start() error {
	if g.Phase != PhaseWaiting {
		return ErrHandInProgress
	}
	for _, p := range g.Players {
		n := initialDeal
		if p.IsFantasyland {
			n = fantasyDeal
		}
		cards, err := g.Deck.DrawN(n)
		if err != nil {
			return err
		}
		p.CurrentCards = cards
	}
	g.Phase = PhaseInitialPlacing
	g.Round = 1
	g.logger.Debug().Int("players", len(g.Players)).Msg("ofc hand started")
	return nil
}

// PlayerByID returns the player with the given id
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Place applies a player's placements for the current round. Round one
// places all dealt cards (fantasyland places thirteen and discards one);
// rounds two to five place two of three and discard one, in turn order.
func (g *Game) Place(playerID string, placements []Placement, discard *card.Card) error {
	p := g.PlayerByID(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}

	switch g.Phase {
	case PhaseInitialPlacing:
		if p.HasPlaced {
			return ErrAlreadyPlaced
		}
		wantPlace := initialDeal
		wantDiscard := false
		if p.IsFantasyland {
			wantPlace = fantasyDeal - 1
			wantDiscard = true
		}
		if err := g.applyPlacements(p, placements, discard, wantPlace, wantDiscard); err != nil {
			return err
		}
		p.HasPlaced = true
		g.maybeAdvanceInitial()
		return nil

	case PhasePineapplePlacing:
		idx := g.playerIndex(playerID)
		if idx != g.Turn {
			return ErrNotYourTurn
		}
		if err := g.applyPlacements(p, placements, discard, pineappleKeeps, true); err != nil {
			return err
		}
		p.HasPlaced = true
		g.advanceTurn()
		return nil

	default:
		return ErrNotPlacing
	}
}

// applyPlacements validates the placement set against the player's dealt
// cards and row capacities, then commits it. Validation happens against a
// board copy so a rejected submit leaves no partial state.
func (g *Game) applyPlacements(p *Player, placements []Placement, discard *card.Card, wantPlace int, wantDiscard bool) error {
	if len(placements) != wantPlace {
		return ErrBadPlacement
	}
	if wantDiscard != (discard != nil) {
		return ErrBadPlacement
	}

	// Every placed (and discarded) card must be a distinct dealt card.
	pool := map[card.Card]int{}
	for _, c := range p.CurrentCards {
		pool[c]++
	}
	take := func(c card.Card) bool {
		if pool[c] == 0 {
			return false
		}
		pool[c]--
		return true
	}
	for _, pl := range placements {
		if !take(pl.Card) {
			return ErrCardNotDealt
		}
	}
	if discard != nil && !take(*discard) {
		return ErrCardNotDealt
	}

	scratch := Board{
		Top:    append([]card.Card(nil), p.Board.Top...),
		Middle: append([]card.Card(nil), p.Board.Middle...),
		Bottom: append([]card.Card(nil), p.Board.Bottom...),
	}
	for _, pl := range placements {
		if err := scratch.place(pl.Row, pl.Card); err != nil {
			return err
		}
	}

	p.Board = scratch
	if discard != nil {
		p.Discards = append(p.Discards, *discard)
	}
	p.CurrentCards = nil
	return nil
}

func (g *Game) playerIndex(id string) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// pending reports whether any player still owes a placement this round
func (g *Game) pending() bool {
	for _, p := range g.Players {
		if !p.HasPlaced {
			return true
		}
	}
	return false
}

// maybeAdvanceInitial moves to the pineapple rounds once every player has
// made the opening placement.
func (g *Game) maybeAdvanceInitial() {
	if g.pending() {
		return
	}
	g.startPineappleRound()
}

// startPineappleRound begins the next deal-three round, or scoring after
// the fifth. Fantasyland players already have a complete board and are
// skipped.
func (g *Game) startPineappleRound() {
	g.Round++
	if g.Round > finalRound {
		g.Phase = PhaseScoring
		g.Turn = -1
		return
	}
	g.Phase = PhasePineapplePlacing
	for _, p := range g.Players {
		p.HasPlaced = p.IsFantasyland
	}
	g.Turn = -1
	g.advanceTurn()
}

// advanceTurn deals three cards to the next player owing a placement, or
// closes the round when none remains.
func (g *Game) advanceTurn() {
	for i := 1; i <= len(g.Players); i++ {
		idx := (g.Turn + i) % len(g.Players)
		p := g.Players[idx]
		if p.HasPlaced {
			continue
		}
		cards, err := g.Deck.DrawN(pineappleDeal)
		if err != nil {
			// A 54-card deck covers three full hands; underflow means
			// corrupted state.
			g.logger.Error().Err(err).Msg("ofc deck underflow")
			g.Phase = PhaseScoring
			g.Turn = -1
			return
		}
		p.CurrentCards = cards
		g.Turn = idx
		return
	}
	g.startPineappleRound()
}
