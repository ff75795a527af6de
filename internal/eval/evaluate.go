package eval

import (
	"sort"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// Result is an evaluated best hand: the comparable strength, the cards
// that realize it, and a label for winner reports.
type Result struct {
	Value Value
	Cards []card.Card
	Desc  string
}

// Beats returns true if r strictly beats o
func (r Result) Beats(o Result) bool {
	return r.Value.Compare(o.Value) > 0
}

// Ties returns true if r and o are a true tie
func (r Result) Ties(o Result) bool {
	return r.Value.Compare(o.Value) == 0
}

// Evaluate5 ranks exactly five concrete cards as a high hand
func Evaluate5(cards []card.Card) Rank {
	if len(cards) != 5 {
		panic("eval: Evaluate5 requires exactly 5 cards")
	}

	values := make([]int, 5)
	for i, c := range cards {
		values[i] = c.Value()
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, straight := straightHighCard(values)

	if straight && flush {
		return Rank{Category: StraightFlush, Tiebreak: []int{straightHigh}}
	}

	// Group by rank, most frequent first, then by value.
	counts := map[int]int{}
	for _, v := range values {
		counts[v]++
	}
	type group struct{ value, count int }
	groups := make([]group, 0, len(counts))
	for v, n := range counts {
		groups = append(groups, group{v, n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value > groups[j].value
	})

	switch {
	case groups[0].count == 4:
		return Rank{Category: Quads, Tiebreak: []int{groups[0].value, groups[1].value}}
	case groups[0].count == 3 && groups[1].count == 2:
		return Rank{Category: FullHouse, Tiebreak: []int{groups[0].value, groups[1].value}}
	case flush:
		// Flush ties break on card values high to low, never on suit.
		return Rank{Category: Flush, Tiebreak: values}
	case straight:
		return Rank{Category: Straight, Tiebreak: []int{straightHigh}}
	case groups[0].count == 3:
		return Rank{Category: Trips, Tiebreak: []int{groups[0].value, groups[1].value, groups[2].value}}
	case groups[0].count == 2 && groups[1].count == 2:
		return Rank{Category: TwoPair, Tiebreak: []int{groups[0].value, groups[1].value, groups[2].value}}
	case groups[0].count == 2:
		return Rank{Category: Pair, Tiebreak: []int{groups[0].value, groups[1].value, groups[2].value, groups[3].value}}
	default:
		return Rank{Category: HighCard, Tiebreak: values}
	}
}

// straightHighCard reports whether the sorted-descending values form a
// straight and returns its high card. The 5-high wheel treats the ace as low.
func straightHighCard(desc []int) (int, bool) {
	uniq := true
	for i := 1; i < len(desc); i++ {
		if desc[i] == desc[i-1] {
			uniq = false
			break
		}
	}
	if !uniq {
		return 0, false
	}
	if desc[0]-desc[len(desc)-1] == len(desc)-1 {
		return desc[0], true
	}
	// Wheel: A-5-4-3-2.
	if desc[0] == 14 && desc[1] == 5 && desc[1]-desc[len(desc)-1] == len(desc)-2 {
		return 5, true
	}
	return 0, false
}

// CompareHands returns the sign of a - b for two 5-card high hands
func CompareHands(a, b []card.Card) int {
	return Evaluate5(a).Compare(Evaluate5(b))
}

// BestHigh selects the best 5-card high hand from n >= 5 cards
func BestHigh(cards []card.Card) Result {
	best := Result{}
	combinations(len(cards), 5, func(idx []int) {
		pick := pickCards(cards, idx)
		r := Evaluate5(pick)
		if best.Value == nil || r.Value().Compare(best.Value) > 0 {
			best = Result{Value: r.Value(), Cards: pick, Desc: r.String()}
		}
	})
	return best
}

// BestOmaha selects the best high hand using exactly two hole cards and
// three board cards, iterating all 2-of-4 x 3-of-5 combinations.
func BestOmaha(hole, board []card.Card) Result {
	best := Result{}
	combinations(len(hole), 2, func(hi []int) {
		combinations(len(board), 3, func(bi []int) {
			pick := append(pickCards(hole, hi), pickCards(board, bi)...)
			r := Evaluate5(pick)
			if best.Value == nil || r.Value().Compare(best.Value) > 0 {
				best = Result{Value: r.Value(), Cards: pick, Desc: r.String()}
			}
		})
	})
	return best
}

// combinations invokes fn with each k-subset of [0,n) in index order
func combinations(n, k int, fn func(idx []int)) {
	if k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		// Advance to next combination.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func pickCards(cards []card.Card, idx []int) []card.Card {
	out := make([]card.Card, len(idx))
	for i, j := range idx {
		out[i] = cards[j]
	}
	return out
}
