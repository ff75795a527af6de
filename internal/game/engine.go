package game

import (
	"fmt"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// StartInfo reports how a hand began
type StartInfo struct {
	HandNumber int
	Phase      Phase
	Dealt      []int // seat indexes dealt in
	SmallBlind int   // seat index, -1 for stud
	BigBlind   int   // seat index, -1 for stud
	BringIn    int   // seat index, -1 for button games
	FirstToAct int   // -1 when forced posts left nobody to act
	Runout     bool
}

// Outcome reports the effect of a processed betting action
type Outcome struct {
	Seat           int
	Applied        ActionType
	Paid           int // chips moved by this action
	RoundComplete  bool
	StreetAdvanced bool
	DrawStarted    bool
	RunoutStarted  bool
	HandOver       bool
	Uncontested    bool
}

// DrawOutcome reports the effect of a submitted draw exchange
type DrawOutcome struct {
	Seat        int
	Drawn       []card.Card
	AllDone     bool
	DrawStarted bool // the next draw phase began with no betting between
	HandOver    bool
}

// RunoutInfo is one step of an all-in board runout
type RunoutInfo struct {
	Phase Phase
	Board []card.Card
	Done  bool
}

// StartHand begins a new hand: moves the button, resets seats, posts
// forced bets, deals the variant's starting cards and sets the first
// actor. Rejected unless at least two seats are startable.
func (t *Table) StartHand() (*StartInfo, error) {
	if t.State.InProgress() {
		return nil, ErrHandInProgress
	}
	if t.StartableCount() < 2 {
		return nil, ErrNotEnoughPlayers
	}

	t.moveButton()

	// Promote and reset seats. Anyone not startable sits this one out.
	dealt := make([]int, 0, len(t.Seats))
	for i, s := range t.Seats {
		if s == nil {
			continue
		}
		if Startable(s) {
			s.Status = StatusActive
			s.PendingJoin = false
			s.WaitingForBB = false
			s.resetForHand()
			dealt = append(dealt, i)
		} else {
			s.Status = StatusSitOut
			s.resetForHand()
		}
	}

	gs := t.State
	gs.HandNumber++
	gs.Deck = t.newDeck()
	gs.Board = nil
	gs.StreetIndex = 0
	gs.Phase = t.Rules.Streets[0]
	gs.CurrentBet = 0
	gs.MinRaise = t.BigBlind
	gs.RaisesThisRound = 0
	gs.IsDrawPhase = false
	gs.DrawDone = make([]bool, len(t.Seats))
	gs.IsRunout = false
	gs.HeadsUpStart = len(dealt) == 2
	gs.resetActed(len(t.Seats), -1)
	t.LastAggressor = -1

	info := &StartInfo{
		HandNumber: gs.HandNumber,
		Phase:      gs.Phase,
		Dealt:      dealt,
		SmallBlind: -1,
		BigBlind:   -1,
		BringIn:    -1,
	}

	if err := t.dealStartingCards(info); err != nil {
		t.AbortHand()
		return nil, fmt.Errorf("%w: %v", ErrHandAborted, err)
	}

	t.StreetStarter = info.FirstToAct
	t.Active = info.FirstToAct
	if info.FirstToAct < 0 {
		// Forced posts put everyone all-in; no betting round happens.
		if gs.StreetIndex < len(t.Rules.Streets)-1 && !t.Rules.IsDraw {
			gs.IsRunout = true
			gs.RunoutPhase = gs.Phase
			info.Runout = true
		}
		gs.Phase = PhaseShowdown
	}
	t.logger.Debug().
		Int("hand", gs.HandNumber).
		Str("variant", string(t.Rules.Variant)).
		Int("players", len(dealt)).
		Int("button", t.Button).
		Int("first_to_act", info.FirstToAct).
		Msg("hand started")
	return info, nil
}

// dealStartingCards posts forced bets and deals per the variant plan
func (t *Table) dealStartingCards(info *StartInfo) error {
	gs := t.State
	switch {
	case t.Rules.IsStud:
		t.collectAntes()
		if err := t.dealStudInitial(); err != nil {
			return err
		}
		bring := t.bringInSeat()
		info.BringIn = bring
		if bring >= 0 {
			// The bring-in is a forced post of half the small bet;
			// action continues to the bring-in's left with a live bet
			// to complete.
			amount := t.fixedBetSize() / 2
			if amount < 1 {
				amount = 1
			}
			t.Seats[bring].commit(amount)
			t.Seats[bring].LastAction = "post_bring_in"
			gs.CurrentBet = amount
			gs.MinRaise = t.fixedBetSize() - amount
			info.FirstToAct = t.nextActor(bring)
		}
	default:
		sb, bb := t.collectBlinds()
		info.SmallBlind, info.BigBlind = sb, bb
		if t.Rules.Structure == FixedLimit {
			// The big blind is the opening bet for cap purposes.
			gs.RaisesThisRound = 1
		}
		if err := t.dealHoleCards(t.Rules.HoleCards); err != nil {
			return err
		}
		info.FirstToAct = t.nextActor(bb)
	}
	return nil
}

// ProcessAction validates and applies a betting action for a seat.
// Rejections never mutate table state.
func (t *Table) ProcessAction(seatIdx int, action ActionType, amount int) (*Outcome, error) {
	gs := t.State
	if !gs.InProgress() {
		return nil, ErrNoActiveGame
	}
	if gs.IsDrawPhase {
		return nil, ErrInvalidAction
	}
	if seatIdx != t.Active || seatIdx < 0 || seatIdx >= len(t.Seats) || t.Seats[seatIdx] == nil {
		return nil, ErrNotYourTurn
	}
	s := t.Seats[seatIdx]
	opts := t.ValidActions(seatIdx)
	if !opts.Allows(action) {
		if (action == ActionRaise || action == ActionBet) && opts.IsCapped {
			return nil, ErrBettingCapped
		}
		return nil, ErrInvalidAction
	}

	out := &Outcome{Seat: seatIdx, Applied: action}
	toCall := gs.CurrentBet - s.Bet

	switch action {
	case ActionFold:
		s.Status = StatusFolded
		s.LastAction = "FOLD"
		if t.LastAggressor == seatIdx {
			t.LastAggressor = -1
		}

	case ActionCheck:
		s.LastAction = "CHECK"

	case ActionCall:
		out.Paid = s.commit(toCall)
		s.LastAction = "CALL"

	case ActionBet, ActionRaise:
		if t.Rules.Structure == FixedLimit {
			// Fixed-limit sizes are not negotiable; the declared amount
			// is replaced by the street's fixed size.
			amount = opts.MinBet
		}
		if amount < opts.MinBet && amount != s.Stack {
			return nil, fmt.Errorf("%w: minimum %d", ErrRaiseTooSmall, opts.MinBet)
		}
		if amount > opts.MaxBet {
			return nil, fmt.Errorf("%w: maximum %d", ErrBadAmount, opts.MaxBet)
		}
		out.Paid = t.applyWager(seatIdx, amount)
		s.LastAction = action.String()

	case ActionAllIn:
		wager := s.Stack
		if wager > opts.MaxBet {
			// Pot-limit and fixed-limit cap the commitment at the street
			// maximum; only a stack at or under the cap shoves in full.
			wager = opts.MaxBet
			out.Applied = ActionRaise
			if gs.CurrentBet == 0 {
				out.Applied = ActionBet
			}
		}
		out.Paid = t.applyWager(seatIdx, wager)
		s.LastAction = out.Applied.String()
	}

	gs.markActed(seatIdx)
	t.resolveRound(out)
	return out, nil
}

// applyWager commits additional chips as a bet, raise, call-for-less or
// short all-in, updating betting state per the reopening rules. A full
// raise reopens action; an all-in short of the minimum raise updates the
// price to call but does not reopen betting for seats that already acted.
func (t *Table) applyWager(seatIdx, amount int) int {
	gs := t.State
	s := t.Seats[seatIdx]
	prevBet := gs.CurrentBet
	paid := s.commit(amount)
	newTo := s.Bet

	if newTo <= prevBet {
		return paid // call for less, all-in under the current bet
	}
	raiseSize := newTo - prevBet
	if raiseSize < gs.MinRaise && s.Status == StatusAllIn {
		// Short all-in: price moves, action does not reopen.
		gs.CurrentBet = newTo
		return paid
	}
	gs.CurrentBet = newTo
	gs.MinRaise = raiseSize
	gs.RaisesThisRound++
	t.LastAggressor = seatIdx
	t.StreetStarter = seatIdx
	gs.resetActed(len(t.Seats), seatIdx)
	return paid
}

// resolveRound checks for round completion and advances the hand
func (t *Table) resolveRound(out *Outcome) {
	if t.liveCount() <= 1 {
		out.HandOver = true
		out.Uncontested = true
		t.Active = -1
		t.State.Phase = PhaseShowdown
		return
	}

	if !t.roundComplete() {
		t.Active = t.nextActor(out.Seat)
		return
	}
	out.RoundComplete = true

	if t.actableCount() <= 1 {
		// No further betting possible.
		t.Active = -1
		if t.State.StreetIndex < len(t.Rules.Streets)-1 {
			if t.Rules.IsDraw {
				// Live all-in seats still take their remaining draws.
				t.enterDrawPhase()
				out.DrawStarted = true
				return
			}
			t.State.IsRunout = true
			t.State.RunoutPhase = t.State.Phase
			out.RunoutStarted = true
		}
		t.State.Phase = PhaseShowdown
		out.HandOver = true
		return
	}

	if t.State.StreetIndex >= len(t.Rules.Streets)-1 {
		t.Active = -1
		t.State.Phase = PhaseShowdown
		out.HandOver = true
		return
	}

	if t.Rules.IsDraw {
		t.enterDrawPhase()
		out.DrawStarted = true
		return
	}

	if err := t.advanceStreet(); err != nil {
		t.logger.Error().Err(err).Msg("street deal failed")
		t.AbortHand()
		out.HandOver = true
		return
	}
	out.StreetAdvanced = true
}

// roundComplete reports whether every live seat has folded, gone all-in,
// or matched the current bet after acting since the last full raise.
func (t *Table) roundComplete() bool {
	for i, s := range t.Seats {
		if s == nil || !s.CanAct() {
			continue
		}
		if s.Bet != t.State.CurrentBet || !t.State.hasActed(i) {
			return false
		}
	}
	return true
}

// advanceStreet resets round state, deals the next street and seats the
// first actor.
func (t *Table) advanceStreet() error {
	gs := t.State
	t.resetRound()
	gs.StreetIndex++
	gs.Phase = t.Rules.Streets[gs.StreetIndex]

	if t.Rules.IsStud {
		lastStreet := gs.StreetIndex == len(t.Rules.Streets)-1
		if err := t.dealStudStreet(lastStreet); err != nil {
			return err
		}
		t.Active = t.bestShowingSeat()
	} else {
		n := 1
		if gs.StreetIndex == 1 {
			n = 3 // flop
		}
		if err := t.dealBoard(n); err != nil {
			return err
		}
		t.Active = t.nextActor(t.Button)
	}
	t.StreetStarter = t.Active
	return nil
}

// resetRound clears per-round betting state between streets
func (t *Table) resetRound() {
	gs := t.State
	for _, s := range t.Seats {
		if s != nil {
			s.Bet = 0
		}
	}
	gs.CurrentBet = 0
	gs.RaisesThisRound = 0
	if t.Rules.Structure == FixedLimit {
		gs.MinRaise = t.fixedBetSize()
	} else {
		gs.MinRaise = t.BigBlind
	}
	gs.resetActed(len(t.Seats), -1)
	t.LastAggressor = -1
}

// enterDrawPhase suspends betting until every live seat has exchanged
func (t *Table) enterDrawPhase() {
	gs := t.State
	t.resetRound()
	gs.IsDrawPhase = true
	gs.DrawDone = make([]bool, len(t.Seats))
	t.Active = -1
}

// SubmitDraw exchanges a seat's chosen cards during a draw phase. An empty
// index list stands pat. When the last live seat has drawn, the next
// betting round begins.
func (t *Table) SubmitDraw(seatIdx int, indexes []int) (*DrawOutcome, error) {
	gs := t.State
	if !gs.InProgress() || !gs.IsDrawPhase {
		return nil, ErrNotInDrawPhase
	}
	if seatIdx < 0 || seatIdx >= len(t.Seats) || t.Seats[seatIdx] == nil {
		return nil, ErrNotYourTurn
	}
	s := t.Seats[seatIdx]
	if !s.InHand() || gs.DrawDone[seatIdx] {
		return nil, ErrInvalidAction
	}

	fresh, err := t.exchangeDraw(s, indexes)
	if err != nil {
		if err == card.ErrDeckEmpty {
			t.AbortHand()
			return nil, ErrHandAborted
		}
		return nil, err
	}
	gs.DrawDone[seatIdx] = true
	s.LastAction = fmt.Sprintf("DRAW_%d", len(indexes))

	out := &DrawOutcome{Seat: seatIdx, Drawn: fresh}
	for i, st := range t.Seats {
		if st != nil && st.InHand() && !gs.DrawDone[i] {
			return out, nil
		}
	}
	out.AllDone = true
	t.finishDrawPhase(out)
	return out, nil
}

// finishDrawPhase starts the betting round that follows a completed draw
func (t *Table) finishDrawPhase(out *DrawOutcome) {
	gs := t.State
	gs.IsDrawPhase = false
	gs.StreetIndex++
	gs.Phase = t.Rules.Streets[gs.StreetIndex]
	gs.resetActed(len(t.Seats), -1)

	if t.actableCount() <= 1 {
		// Everyone (or all but one) is all-in; no betting left, but any
		// draw phases still to come are dealt before showdown.
		if gs.StreetIndex < len(t.Rules.Streets)-1 {
			t.enterDrawPhase()
			out.DrawStarted = true
			return
		}
		t.Active = -1
		gs.Phase = PhaseShowdown
		out.HandOver = true
		return
	}
	t.Active = t.nextActor(t.Button)
	t.StreetStarter = t.Active
}

// ForceFold folds a seat immediately regardless of turn order. Used for
// disconnects and turn-timer expiry when checking is not legal.
func (t *Table) ForceFold(seatIdx int) (*Outcome, error) {
	gs := t.State
	if !gs.InProgress() {
		return nil, ErrNoActiveGame
	}
	if seatIdx < 0 || seatIdx >= len(t.Seats) || t.Seats[seatIdx] == nil {
		return nil, ErrNotYourTurn
	}
	s := t.Seats[seatIdx]
	if !s.InHand() {
		return nil, ErrInvalidAction
	}
	s.Status = StatusFolded
	s.LastAction = "FOLD"
	gs.markActed(seatIdx)
	if t.LastAggressor == seatIdx {
		t.LastAggressor = -1
	}

	out := &Outcome{Seat: seatIdx, Applied: ActionFold}
	if gs.IsDrawPhase {
		// A fold during a draw phase may leave everyone else done.
		done := true
		for i, st := range t.Seats {
			if st != nil && st.InHand() && !gs.DrawDone[i] {
				done = false
				break
			}
		}
		if t.liveCount() <= 1 {
			out.HandOver = true
			out.Uncontested = true
			gs.IsDrawPhase = false
			gs.Phase = PhaseShowdown
			t.Active = -1
		} else if done {
			dout := &DrawOutcome{}
			t.finishDrawPhase(dout)
			out.HandOver = dout.HandOver
			out.DrawStarted = dout.DrawStarted
		}
		return out, nil
	}

	if seatIdx == t.Active || t.Active == -1 {
		t.resolveRound(out)
	} else if t.liveCount() <= 1 {
		out.HandOver = true
		out.Uncontested = true
		gs.Phase = PhaseShowdown
		t.Active = -1
	} else if t.roundComplete() {
		t.resolveRound(out)
	}
	return out, nil
}

// RunoutStep deals the next street of an all-in runout. The caller paces
// the reveals; each call returns the street just dealt.
func (t *Table) RunoutStep() (*RunoutInfo, error) {
	gs := t.State
	if !gs.IsRunout {
		return nil, ErrNoActiveGame
	}
	if gs.StreetIndex >= len(t.Rules.Streets)-1 {
		return &RunoutInfo{Phase: gs.RunoutPhase, Board: gs.Board, Done: true}, nil
	}

	gs.StreetIndex++
	gs.RunoutPhase = t.Rules.Streets[gs.StreetIndex]

	var err error
	if t.Rules.IsStud {
		err = t.dealStudStreet(gs.StreetIndex == len(t.Rules.Streets)-1)
	} else {
		n := 1
		if gs.StreetIndex == 1 {
			n = 3
		}
		err = t.dealBoard(n)
	}
	if err != nil {
		t.AbortHand()
		return nil, ErrHandAborted
	}

	done := gs.StreetIndex >= len(t.Rules.Streets)-1
	if done {
		gs.IsRunout = false
	}
	return &RunoutInfo{Phase: gs.RunoutPhase, Board: gs.Board, Done: done}, nil
}
