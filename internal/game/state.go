package game

import "github.com/cardroomlabs/cardroom/internal/card"

// Phase is the coarse status of a table's game state: waiting, one of the
// variant's betting streets, or showdown.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseThirdStreet
	PhaseFourthStreet
	PhaseFifthStreet
	PhaseSixthStreet
	PhaseSeventhStreet
	PhasePredraw
	PhaseFirstDraw
	PhaseSecondDraw
	PhaseThirdDraw
	PhaseShowdown
)

// String returns the wire name of a phase
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING"
	case PhasePreflop:
		return "PREFLOP"
	case PhaseFlop:
		return "FLOP"
	case PhaseTurn:
		return "TURN"
	case PhaseRiver:
		return "RIVER"
	case PhaseThirdStreet:
		return "THIRD_STREET"
	case PhaseFourthStreet:
		return "FOURTH_STREET"
	case PhaseFifthStreet:
		return "FIFTH_STREET"
	case PhaseSixthStreet:
		return "SIXTH_STREET"
	case PhaseSeventhStreet:
		return "SEVENTH_STREET"
	case PhasePredraw:
		return "PREDRAW"
	case PhaseFirstDraw:
		return "FIRST_DRAW"
	case PhaseSecondDraw:
		return "SECOND_DRAW"
	case PhaseThirdDraw:
		return "THIRD_DRAW"
	case PhaseShowdown:
		return "SHOWDOWN"
	default:
		return "UNKNOWN"
	}
}

// SidePot is a pot tier derived from per-seat total commitments
type SidePot struct {
	Amount   int
	Eligible []string // player ids of non-folded seats at or above this tier
}

// GameState is the authoritative per-hand state of a table
type GameState struct {
	Phase       Phase
	StreetIndex int
	Board       []card.Card
	Deck        *card.Deck

	CurrentBet      int
	MinRaise        int
	RaisesThisRound int
	HandNumber      int

	// actedThisRound tracks which seats have acted since the last full
	// raise; a raise clears it for everyone but the raiser.
	actedThisRound []bool

	IsDrawPhase bool
	DrawDone    []bool

	IsRunout     bool
	RunoutPhase  Phase
	HeadsUpStart bool // two-handed at deal time: fixed-limit cap is off
}

// markActed records that a seat has acted since the last reopening bet
func (gs *GameState) markActed(seat int) {
	if seat >= 0 && seat < len(gs.actedThisRound) {
		gs.actedThisRound[seat] = true
	}
}

// resetActed clears acted flags for a new round or after a full raise,
// keeping the raiser marked.
func (gs *GameState) resetActed(n, raiser int) {
	gs.actedThisRound = make([]bool, n)
	if raiser >= 0 && raiser < n {
		gs.actedThisRound[raiser] = true
	}
}

// hasActed reports whether a seat has acted since the last reopening bet
func (gs *GameState) hasActed(seat int) bool {
	return seat >= 0 && seat < len(gs.actedThisRound) && gs.actedThisRound[seat]
}

// InProgress reports whether a hand is being played
func (gs *GameState) InProgress() bool {
	return gs.Phase != PhaseWaiting && gs.Phase != PhaseShowdown
}
