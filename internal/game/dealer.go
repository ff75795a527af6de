package game

import (
	"fmt"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// newDeck builds the hand's deck: a stacked test deck if one was planted,
// otherwise a crypto-seeded shuffle (with the table RNG when injected).
func (t *Table) newDeck() *card.Deck {
	if t.stacked != nil {
		d := t.stacked
		t.stacked = nil
		return d
	}
	if t.rng != nil {
		return card.NewDeck(card.WithRNG(t.rng))
	}
	return card.NewDeck()
}

// moveButton advances the dealer button to the next startable seat,
// skipping empty and sitting-out seats. Runs before per-hand seat resets,
// so eligibility is judged with Startable rather than live status.
func (t *Table) moveButton() {
	next := t.nextSeat(t.Button, func(s *Seat) bool { return Startable(s) })
	if next >= 0 {
		t.Button = next
	}
}

// blindPositions returns the small and big blind seat indexes for the
// current button. Heads-up: the button posts the small blind.
func (t *Table) blindPositions() (sb, bb int) {
	inHand := func(s *Seat) bool { return s.InHand() }
	if t.liveCount() == 2 {
		sb = t.Button
		bb = t.nextSeat(t.Button, inHand)
		return sb, bb
	}
	sb = t.nextSeat(t.Button, inHand)
	bb = t.nextSeat(sb, inHand)
	return sb, bb
}

// collectBlinds posts the small and big blinds. A short stack posts what
// remains and goes all-in.
func (t *Table) collectBlinds() (sb, bb int) {
	sb, bb = t.blindPositions()
	if sb >= 0 {
		t.Seats[sb].commit(t.SmallBlind)
		t.Seats[sb].LastAction = "post_small_blind"
	}
	if bb >= 0 {
		t.Seats[bb].commit(t.BigBlind)
		t.Seats[bb].LastAction = "post_big_blind"
	}
	t.State.CurrentBet = t.BigBlind
	t.State.MinRaise = t.BigBlind
	return sb, bb
}

// collectAntes posts the stud ante from every dealt-in seat
func (t *Table) collectAntes() {
	for _, s := range t.Seats {
		if s != nil && s.InHand() {
			s.commit(t.StudAnte)
			s.LastAction = "post_ante"
		}
	}
}

// dealHoleCards deals count cards round-robin to every dealt-in seat,
// starting left of the button.
func (t *Table) dealHoleCards(count int) error {
	for i := 0; i < count; i++ {
		for j := 1; j <= len(t.Seats); j++ {
			idx := (t.Button + j) % len(t.Seats)
			s := t.Seats[idx]
			if s == nil || !s.InHand() {
				continue
			}
			c, err := t.State.Deck.Draw()
			if err != nil {
				return err
			}
			s.Hand = append(s.Hand, c)
		}
	}
	return nil
}

// dealStudInitial deals two down cards and one up card to each dealt-in seat
func (t *Table) dealStudInitial() error {
	if err := t.dealHoleCards(2); err != nil {
		return err
	}
	for j := 0; j < len(t.Seats); j++ {
		s := t.Seats[j]
		if s == nil || !s.InHand() {
			continue
		}
		c, err := t.State.Deck.Draw()
		if err != nil {
			return err
		}
		s.Hand = append(s.Hand, c)
		s.UpCards = append(s.UpCards, c)
	}
	return nil
}

// dealStudStreet deals one card to every live seat: face up, except
// seventh street which is dealt down.
func (t *Table) dealStudStreet(down bool) error {
	for j := 0; j < len(t.Seats); j++ {
		s := t.Seats[j]
		if s == nil || !s.InHand() {
			continue
		}
		c, err := t.State.Deck.Draw()
		if err != nil {
			return err
		}
		s.Hand = append(s.Hand, c)
		if !down {
			s.UpCards = append(s.UpCards, c)
		}
	}
	return nil
}

// dealBoard burns one card then deals n community cards
func (t *Table) dealBoard(n int) error {
	if err := t.State.Deck.Burn(); err != nil {
		return err
	}
	cards, err := t.State.Deck.DrawN(n)
	if err != nil {
		return err
	}
	t.State.Board = append(t.State.Board, cards...)
	return nil
}

// bringInSeat finds the stud bring-in: the lowest up-card (ties broken by
// suit order, clubs lowest), inverted to highest for razz.
func (t *Table) bringInSeat() int {
	best := -1
	var bestCard card.Card
	razz := t.Rules.Variant == Razz
	for i, s := range t.Seats {
		if s == nil || !s.InHand() || len(s.UpCards) == 0 {
			continue
		}
		c := s.UpCards[0]
		if best == -1 {
			best, bestCard = i, c
			continue
		}
		if razz {
			if cardAbove(c, bestCard) {
				best, bestCard = i, c
			}
		} else if cardAbove(bestCard, c) {
			best, bestCard = i, c
		}
	}
	return best
}

// cardAbove orders cards by rank then suit (clubs < diamonds < hearts < spades)
func cardAbove(a, b card.Card) bool {
	if a.Rank != b.Rank {
		return a.Rank > b.Rank
	}
	return a.Suit > b.Suit
}

// bestShowingSeat returns the seat whose up-cards rank highest, which
// opens the action on fourth street and later. Razz inverts to the
// weakest showing hand.
func (t *Table) bestShowingSeat() int {
	best := -1
	var bestVal []int
	razz := t.Rules.Variant == Razz
	for i, s := range t.Seats {
		if s == nil || !s.CanAct() || len(s.UpCards) == 0 {
			continue
		}
		val := upCardStrength(s.UpCards)
		if best == -1 {
			best, bestVal = i, val
			continue
		}
		cmp := compareInts(val, bestVal)
		if (razz && cmp < 0) || (!razz && cmp > 0) {
			best, bestVal = i, val
		}
	}
	return best
}

// upCardStrength scores a stud up-card set: pair/trips multiplicity first,
// then card values high to low.
func upCardStrength(up []card.Card) []int {
	counts := map[int]int{}
	for _, c := range up {
		counts[c.Value()]++
	}
	maxCount, maxVal := 0, 0
	for v, n := range counts {
		if n > maxCount || (n == maxCount && v > maxVal) {
			maxCount, maxVal = n, v
		}
	}
	out := []int{maxCount, maxVal}
	vals := make([]int, 0, len(up))
	for _, c := range up {
		vals = append(vals, c.Value())
	}
	// Insertion sort, descending; up-card sets are at most four cards.
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j] > vals[j-1]; j-- {
			vals[j], vals[j-1] = vals[j-1], vals[j]
		}
	}
	return append(out, vals...)
}

func compareInts(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// ExchangeDraw replaces the chosen hand indexes with fresh cards,
// recycling the burn pile if the deck runs dry. Indexes must be unique
// and in range; the hand length is preserved.
func (t *Table) exchangeDraw(seat *Seat, indexes []int) ([]card.Card, error) {
	if len(indexes) > t.Rules.MaxDraw {
		return nil, fmt.Errorf("%w: at most %d cards", ErrBadDrawIndexes, t.Rules.MaxDraw)
	}
	seen := map[int]bool{}
	for _, idx := range indexes {
		if idx < 0 || idx >= len(seat.Hand) || seen[idx] {
			return nil, ErrBadDrawIndexes
		}
		seen[idx] = true
	}
	fresh := make([]card.Card, 0, len(indexes))
	for _, idx := range indexes {
		old := seat.Hand[idx]
		c, err := t.State.Deck.DrawRecycling()
		if err != nil {
			return nil, err
		}
		// Bank the replaced card after its replacement is dealt, so a
		// recycle reshuffle never hands it straight back as itself.
		t.State.Deck.Discard(old)
		seat.Hand[idx] = c
		fresh = append(fresh, c)
	}
	return fresh, nil
}
