package eval

import (
	"fmt"
	"sort"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// BestBadugi selects the best badugi from a four-card hand: the largest
// subset with pairwise-distinct ranks and suits, ties broken by the lowest
// high card downward. Aces play low.
func BestBadugi(cards []card.Card) Result {
	best := Result{}
	// All non-empty subsets of up to four cards: bitmask walk.
	for mask := 1; mask < 1<<len(cards); mask++ {
		var pick []card.Card
		for i := range cards {
			if mask&(1<<i) != 0 {
				pick = append(pick, cards[i])
			}
		}
		if !isBadugi(pick) {
			continue
		}
		v := badugiValue(pick)
		if best.Value == nil || v.Compare(best.Value) > 0 {
			best = Result{
				Value: v,
				Cards: pick,
				Desc:  fmt.Sprintf("%d-Card Badugi", len(pick)),
			}
		}
	}
	return best
}

func isBadugi(cards []card.Card) bool {
	ranks := map[int]bool{}
	suits := map[card.Suit]bool{}
	for _, c := range cards {
		v := lowCardValue(c, true)
		if ranks[v] || suits[c.Suit] {
			return false
		}
		ranks[v] = true
		suits[c.Suit] = true
	}
	return true
}

// badugiValue encodes card count first (more is better), then negated
// ranks high to low (lower is better). Padded to a fixed width so values
// from different badugi sizes stay comparable.
func badugiValue(cards []card.Card) Value {
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = lowCardValue(c, true)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	v := make(Value, 0, 5)
	v = append(v, len(cards))
	for _, x := range values {
		v = append(v, -x)
	}
	for len(v) < 5 {
		v = append(v, 0)
	}
	return v
}
