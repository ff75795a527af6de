package game

import "github.com/cardroomlabs/cardroom/internal/card"

// Status is a seat's standing within the current hand
type Status int8

const (
	StatusActive Status = iota
	StatusFolded
	StatusAllIn
	StatusSitOut
)

// String returns the wire name of a status
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusFolded:
		return "FOLDED"
	case StatusAllIn:
		return "ALL_IN"
	case StatusSitOut:
		return "SIT_OUT"
	default:
		return "UNKNOWN"
	}
}

// Seat is a player occupying a table seat. Seats reference each other only
// by index; pots reference seats by player id.
type Seat struct {
	ID       string // stable connection token
	Name     string
	Stack    int
	Bet      int // committed in the current betting round
	TotalBet int // committed across the whole hand; drives side pots
	Status   Status

	Hand    []card.Card // nil between hands
	UpCards []card.Card // stud face-up cards, in deal order

	LastAction string

	// Pending transitions applied at hand boundaries.
	PendingJoin   bool // seated mid-hand, ACTIVE next hand
	WaitingForBB  bool // must wait for (or post) the BB in button games
	PendingSitOut bool
	PendingLeave  bool
	Disconnected  bool
	ResumeToken   string

	TimeBank            int
	ConsecutiveTimeouts int
	StoodUp             bool // stand-up side game: already won a hand
}

// InHand reports whether the seat holds live cards this hand
func (s *Seat) InHand() bool {
	return s.Status == StatusActive || s.Status == StatusAllIn
}

// CanAct reports whether the seat can still take a betting action
func (s *Seat) CanAct() bool {
	return s.Status == StatusActive && s.Stack > 0
}

// commit moves chips from the stack into the current bet, flipping to
// ALL_IN when the stack empties. Returns the amount actually moved.
func (s *Seat) commit(amount int) int {
	if amount > s.Stack {
		amount = s.Stack
	}
	s.Stack -= amount
	s.Bet += amount
	s.TotalBet += amount
	if s.Stack == 0 && s.Status == StatusActive {
		s.Status = StatusAllIn
	}
	return amount
}

// resetForHand clears per-hand state ahead of a new deal
func (s *Seat) resetForHand() {
	s.Bet = 0
	s.TotalBet = 0
	s.Hand = nil
	s.UpCards = nil
	s.LastAction = ""
}
