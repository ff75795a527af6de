package game

import (
	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/cardroomlabs/cardroom/internal/eval"
)

// PotAward is the resolution of one pot: who won the high side, who won
// the low side (empty when the variant has no low or nobody qualified).
type PotAward struct {
	PotIndex   int // 0 = main pot
	Amount     int
	HighSeats  []int
	LowSeats   []int
	HighDesc   string
	LowDesc    string
	HighAmount int
	LowAmount  int
}

// Winner is a per-seat summary of winnings for the hand report
type Winner struct {
	Seat     int
	PlayerID string
	Amount   int
	Desc     string
}

// HandResult is the settled outcome of a hand
type HandResult struct {
	Pots        Pots
	Awards      []PotAward // side pots first, highest tier down to the main pot
	Winners     []Winner
	Revealed    map[int][]card.Card // seat index to shown cards; nil when uncontested
	Uncontested bool
	PotTotal    int
}

// Settle evaluates hands, awards every pot and moves chips into the
// winners' stacks. Side pots resolve before the main pot. Call only when
// the hand has reached showdown.
func (t *Table) Settle() (*HandResult, error) {
	gs := t.State
	if gs.Phase != PhaseShowdown {
		return nil, ErrNoActiveGame
	}
	if gs.IsRunout {
		return nil, ErrInvalidAction
	}

	res := &HandResult{
		Pots:     ComputePots(t.Seats),
		PotTotal: t.PotTotal(),
	}

	if t.liveCount() == 1 {
		t.settleUncontested(res)
		t.finishHand()
		return res, nil
	}

	// Evaluate every live seat once; awards index into these by seat.
	primary := map[int]eval.Result{}
	lows := map[int]eval.Result{}
	res.Revealed = map[int][]card.Card{}
	for i, s := range t.Seats {
		if s == nil || !s.InHand() {
			continue
		}
		p, low, hasLow := t.evaluateSeat(s)
		primary[i] = p
		if hasLow {
			lows[i] = low
		}
		res.Revealed[i] = s.Hand
	}

	order := t.seatOrderFromButton()
	won := map[int]int{}
	descs := map[int]string{}

	// Side pots first, highest tier down, then the main pot.
	for i := len(res.Pots.Side) - 1; i >= 0; i-- {
		sp := res.Pots.Side[i]
		award := t.awardPot(i+1, sp.Amount, sp.Eligible, primary, lows, order, won, descs)
		res.Awards = append(res.Awards, award)
	}
	main := t.awardPot(0, res.Pots.Main, res.Pots.MainEligible, primary, lows, order, won, descs)
	res.Awards = append(res.Awards, main)

	for _, idx := range order {
		if amt, ok := won[idx]; ok && amt > 0 {
			s := t.Seats[idx]
			s.Stack += amt
			res.Winners = append(res.Winners, Winner{
				Seat: idx, PlayerID: s.ID, Amount: amt, Desc: descs[idx],
			})
		}
	}

	t.logHandResult(res)
	t.finishHand()
	return res, nil
}

// settleUncontested pays the whole pot to the last live seat, cards unshown
func (t *Table) settleUncontested(res *HandResult) {
	for i, s := range t.Seats {
		if s == nil || !s.InHand() {
			continue
		}
		amount := res.PotTotal
		s.Stack += amount
		res.Uncontested = true
		res.Winners = []Winner{{Seat: i, PlayerID: s.ID, Amount: amount}}
		res.Awards = []PotAward{{
			PotIndex: 0, Amount: amount,
			HighSeats: []int{i}, HighAmount: amount,
		}}
		t.logger.Debug().
			Int("hand", t.State.HandNumber).
			Str("player", s.ID).
			Int("amount", amount).
			Msg("pot awarded uncontested")
		return
	}
}

// awardPot splits one pot between its high and low winners and
// accumulates per-seat totals. Odd chips go to the high side, and within
// a side to the earliest seat clockwise from the button.
func (t *Table) awardPot(potIndex, amount int, eligibleIDs []string, primary, lows map[int]eval.Result, order []int, won map[int]int, descs map[int]string) PotAward {
	award := PotAward{PotIndex: potIndex, Amount: amount}

	eligible := make(map[int]bool)
	for _, id := range eligibleIDs {
		if idx := t.SeatIndex(id); idx >= 0 {
			eligible[idx] = true
		}
	}

	highSeats, highDesc := bestSeats(primary, eligible, order)
	lowSeats, lowDesc := bestSeats(lows, eligible, order)

	highAmt := amount
	lowAmt := 0
	if t.Rules.Lo8Split && len(lowSeats) > 0 {
		lowAmt = amount / 2
		highAmt = amount - lowAmt
	} else {
		lowSeats = nil
	}

	award.HighSeats, award.HighDesc, award.HighAmount = highSeats, highDesc, highAmt
	award.LowSeats, award.LowDesc, award.LowAmount = lowSeats, lowDesc, lowAmt

	splitChips(highAmt, highSeats, order, won)
	splitChips(lowAmt, lowSeats, order, won)
	for _, idx := range highSeats {
		descs[idx] = highDesc
	}
	for _, idx := range lowSeats {
		if descs[idx] == "" {
			descs[idx] = lowDesc
		}
	}
	return award
}

// bestSeats returns the eligible seats holding the strongest result, in
// button order, along with its description.
func bestSeats(results map[int]eval.Result, eligible map[int]bool, order []int) ([]int, string) {
	var best eval.Result
	found := false
	for _, idx := range order {
		r, ok := results[idx]
		if !ok || !eligible[idx] {
			continue
		}
		if !found || r.Beats(best) {
			best = r
			found = true
		}
	}
	if !found {
		return nil, ""
	}
	var seats []int
	for _, idx := range order {
		if r, ok := results[idx]; ok && eligible[idx] && r.Ties(best) {
			seats = append(seats, idx)
		}
	}
	return seats, best.Desc
}

// splitChips divides amount evenly among winners, handing odd chips out
// one each in button order.
func splitChips(amount int, winners []int, order []int, won map[int]int) {
	if amount <= 0 || len(winners) == 0 {
		return
	}
	share := amount / len(winners)
	odd := amount % len(winners)

	inWinners := map[int]bool{}
	for _, idx := range winners {
		inWinners[idx] = true
	}
	for _, idx := range order {
		if !inWinners[idx] {
			continue
		}
		take := share
		if odd > 0 {
			take++
			odd--
		}
		won[idx] += take
	}
}

// evaluateSeat computes a seat's pot-winning result and, for split-pot
// variants, its qualifying low.
func (t *Table) evaluateSeat(s *Seat) (primary eval.Result, low eval.Result, hasLow bool) {
	gs := t.State
	switch {
	case t.Rules.LowOnly:
		switch t.Rules.Low {
		case LowDeuceToSeven:
			primary = eval.BestDeuceToSevenLow(s.Hand)
		case LowBadugi:
			primary = eval.BestBadugi(s.Hand)
		default:
			primary = eval.BestAceToFiveLow(s.Hand)
		}
	case t.Rules.OmahaStyle:
		primary = eval.BestOmaha(s.Hand, gs.Board)
		if t.Rules.Lo8Split {
			low, hasLow = eval.BestOmahaLow8(s.Hand, gs.Board)
		}
	case t.Rules.UsesBoard:
		all := make([]card.Card, 0, len(s.Hand)+len(gs.Board))
		all = append(all, s.Hand...)
		all = append(all, gs.Board...)
		primary = eval.BestHigh(all)
	default:
		primary = eval.BestHigh(s.Hand)
		if t.Rules.Lo8Split {
			low, hasLow = eval.BestAceToFiveLow8(s.Hand)
		}
	}
	return primary, low, hasLow
}

// seatOrderFromButton lists occupied seat indexes clockwise starting left
// of the button. Odd chips and tie reports follow this order.
func (t *Table) seatOrderFromButton() []int {
	n := len(t.Seats)
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		idx := ((t.Button + i) % n + n) % n
		if t.Seats[idx] != nil {
			order = append(order, idx)
		}
	}
	return order
}

// finishHand returns the table to WAITING. Seat cards stay visible until
// the next deal; pending seat transitions are applied separately.
func (t *Table) finishHand() {
	t.State.Phase = PhaseWaiting
	t.Active = -1
	t.StreetStarter = -1
	t.LastAggressor = -1
	for _, s := range t.Seats {
		if s != nil {
			s.Bet = 0
			s.TotalBet = 0
		}
	}
}

// ApplyPendingTransitions executes seat changes deferred to the hand
// boundary: sit-outs take effect and leaving seats empty out. Returns the
// player ids removed from the table.
func (t *Table) ApplyPendingTransitions() []string {
	var removed []string
	for i, s := range t.Seats {
		if s == nil {
			continue
		}
		if s.PendingLeave {
			removed = append(removed, s.ID)
			t.Seats[i] = nil
			continue
		}
		if s.PendingSitOut {
			s.Status = StatusSitOut
			s.PendingSitOut = false
		}
		if s.Stack <= 0 && s.Status != StatusSitOut {
			// Busted: forced to sit out until a rebuy.
			s.Status = StatusSitOut
		}
	}
	return removed
}

func (t *Table) logHandResult(res *HandResult) {
	for _, w := range res.Winners {
		t.logger.Debug().
			Int("hand", t.State.HandNumber).
			Str("player", w.PlayerID).
			Int("amount", w.Amount).
			Str("hand_desc", w.Desc).
			Msg("pot awarded")
	}
}
