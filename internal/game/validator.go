package game

// ActionType is a betting action submitted by a seat
type ActionType int8

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

// String returns the wire name of an action
func (a ActionType) String() string {
	switch a {
	case ActionFold:
		return "FOLD"
	case ActionCheck:
		return "CHECK"
	case ActionCall:
		return "CALL"
	case ActionBet:
		return "BET"
	case ActionRaise:
		return "RAISE"
	case ActionAllIn:
		return "ALL_IN"
	default:
		return "UNKNOWN"
	}
}

// ParseAction maps a wire action name to its ActionType
func ParseAction(s string) (ActionType, bool) {
	switch s {
	case "FOLD":
		return ActionFold, true
	case "CHECK":
		return ActionCheck, true
	case "CALL":
		return ActionCall, true
	case "BET":
		return ActionBet, true
	case "RAISE":
		return ActionRaise, true
	case "ALL_IN":
		return ActionAllIn, true
	default:
		return ActionFold, false
	}
}

// fixedLimitCap is the total bets allowed per round in multiway
// fixed-limit pots: an opening bet plus three raises.
const fixedLimitCap = 4

// Options describes the legal actions and numeric bounds for a seat.
// MinBet and MaxBet bound the additional chips submitted with BET/RAISE.
type Options struct {
	Valid           []ActionType
	CallAmount      int
	MinBet          int
	MaxBet          int
	FixedBetSize    int // fixed-limit only
	IsCapped        bool
	RaisesRemaining int
	Structure       Structure
}

// Allows reports whether an action type is among the valid ones
func (o Options) Allows(a ActionType) bool {
	for _, v := range o.Valid {
		if v == a {
			return true
		}
	}
	return false
}

// fixedBetSize returns the current street's fixed bet: the big blind on
// early streets, doubled on later ones.
func (t *Table) fixedBetSize() int {
	if t.Rules.lateStreet(t.State.StreetIndex) {
		return t.BigBlind * 2
	}
	return t.BigBlind
}

// capApplies reports whether the fixed-limit raise cap is in force.
// Heads-up pots are uncapped.
func (t *Table) capApplies() bool {
	return t.Rules.Structure == FixedLimit && !t.State.HeadsUpStart
}

// ValidActions computes the legal actions and bounds for a seat. The
// result is advisory for clients and binding for the engine.
func (t *Table) ValidActions(seatIdx int) Options {
	opts := Options{Structure: t.Rules.Structure}
	if seatIdx < 0 || seatIdx >= len(t.Seats) || t.Seats[seatIdx] == nil {
		return opts
	}
	s := t.Seats[seatIdx]
	if !s.CanAct() || t.State.IsDrawPhase {
		return opts
	}

	gs := t.State
	toCall := gs.CurrentBet - s.Bet
	if toCall < 0 {
		toCall = 0
	}
	opts.CallAmount = min(toCall, s.Stack)

	if t.Rules.Structure == FixedLimit {
		opts.FixedBetSize = t.fixedBetSize()
		if t.capApplies() {
			opts.RaisesRemaining = fixedLimitCap - gs.RaisesThisRound
			if opts.RaisesRemaining < 0 {
				opts.RaisesRemaining = 0
			}
			opts.IsCapped = opts.RaisesRemaining == 0
		} else {
			opts.RaisesRemaining = -1 // uncapped
		}
	}

	opts.Valid = append(opts.Valid, ActionFold)

	if toCall == 0 {
		opts.Valid = append(opts.Valid, ActionCheck)
		if gs.CurrentBet == 0 && !opts.IsCapped {
			opts.Valid = append(opts.Valid, ActionBet)
		}
	} else {
		opts.Valid = append(opts.Valid, ActionCall)
	}

	// A seat that already acted this round may not raise again unless a
	// full raise reopened the action; a short all-in only moves the price.
	canRaise := gs.CurrentBet > 0 && !opts.IsCapped && !gs.hasActed(seatIdx) && s.Stack > toCall
	if canRaise {
		opts.Valid = append(opts.Valid, ActionRaise)
	}
	// An all-in for more than the call is a raise and needs the action
	// open; an all-in at or under the call is always available.
	allInOK := s.Stack <= toCall || (gs.CurrentBet == 0 && !opts.IsCapped) || canRaise
	if s.Stack > 0 && allInOK {
		opts.Valid = append(opts.Valid, ActionAllIn)
	}

	opts.MinBet, opts.MaxBet = t.betBounds(s, toCall)
	return opts
}

// betBounds computes the additional-chip bounds for BET/RAISE under the
// table's betting structure.
func (t *Table) betBounds(s *Seat, toCall int) (minAdd, maxAdd int) {
	gs := t.State

	// Minimum raise-to is currentBet + minRaise; an opening bet's
	// minimum is one minRaise (the big blind or the fixed bet).
	minTo := gs.CurrentBet + gs.MinRaise
	minAdd = minTo - s.Bet
	if minAdd > s.Stack {
		minAdd = s.Stack // short all-in is the only option left
	}

	switch t.Rules.Structure {
	case NoLimit:
		maxAdd = s.Stack
	case PotLimit:
		// Max raise-to is pot + 2x the call, pot including this round's
		// commitments.
		maxTo := t.PotTotal() + 2*toCall
		maxAdd = maxTo - s.Bet
		if maxAdd > s.Stack {
			maxAdd = s.Stack
		}
		if maxAdd < minAdd {
			maxAdd = minAdd
		}
	case FixedLimit:
		// Below one fixed bet means a bring-in is live: the raise is a
		// completion to the full bet, not a raise on top of it.
		fixedTo := gs.CurrentBet + t.fixedBetSize()
		if gs.CurrentBet < t.fixedBetSize() {
			fixedTo = t.fixedBetSize()
		}
		minAdd = fixedTo - s.Bet
		if minAdd > s.Stack {
			minAdd = s.Stack
		}
		maxAdd = minAdd
	}
	return minAdd, maxAdd
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
