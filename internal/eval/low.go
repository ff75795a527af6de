package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// lowCardValue maps a rank for lowball comparison. Ace-to-five treats the
// ace as 1; deuce-to-seven keeps it high.
func lowCardValue(c card.Card, aceLow bool) int {
	if aceLow && c.Rank == card.Ace {
		return 1
	}
	return c.Value()
}

// aceToFiveBadness builds a "smaller is better" vector for exactly five
// cards under ace-to-five rules: straights and flushes are ignored, only
// multiplicity and card values count.
func aceToFiveBadness(cards []card.Card) []int {
	values := make([]int, 5)
	for i, c := range cards {
		values[i] = lowCardValue(c, true)
	}
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

	var mult int
	switch {
	case groups[0].count == 4:
		mult = 5
	case groups[0].count == 3 && groups[1].count == 2:
		mult = 4
	case groups[0].count == 3:
		mult = 3
	case groups[0].count == 2 && groups[1].count == 2:
		mult = 2
	case groups[0].count == 2:
		mult = 1
	default:
		mult = 0
	}

	bad := []int{mult}
	for _, g := range groups {
		bad = append(bad, g.value)
	}
	return bad
}

func negate(v []int) Value {
	out := make(Value, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

func lowDesc(cards []card.Card, aceLow bool) string {
	values := make([]int, len(cards))
	seen := map[int]bool{}
	paired := false
	for i, c := range cards {
		values[i] = lowCardValue(c, aceLow)
		if seen[values[i]] {
			paired = true
		}
		seen[values[i]] = true
	}
	if paired {
		return "Paired Low"
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = lowValueName(v)
	}
	return strings.Join(parts, "-") + " Low"
}

func lowValueName(v int) string {
	switch v {
	case 1, 14:
		return "A"
	case 10:
		return "T"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return fmt.Sprintf("%d", v)
	}
}

// BestAceToFiveLow selects the best ace-to-five low hand (razz and the low
// half of eight-or-better pots) from n >= 5 cards.
func BestAceToFiveLow(cards []card.Card) Result {
	best := Result{}
	combinations(len(cards), 5, func(idx []int) {
		pick := pickCards(cards, idx)
		v := negate(aceToFiveBadness(pick))
		if best.Value == nil || v.Compare(best.Value) > 0 {
			best = Result{Value: v, Cards: pick, Desc: lowDesc(pick, true)}
		}
	})
	return best
}

// BestAceToFiveLow8 is BestAceToFiveLow restricted to qualifying
// eight-or-better hands: five distinct ranks, all eight or lower.
// The second return is false when no qualifying low exists.
func BestAceToFiveLow8(cards []card.Card) (Result, bool) {
	best := Result{}
	found := false
	combinations(len(cards), 5, func(idx []int) {
		pick := pickCards(cards, idx)
		if !qualifiesLow8(pick) {
			return
		}
		v := negate(aceToFiveBadness(pick))
		if !found || v.Compare(best.Value) > 0 {
			best = Result{Value: v, Cards: pick, Desc: lowDesc(pick, true)}
			found = true
		}
	})
	return best, found
}

func qualifiesLow8(cards []card.Card) bool {
	seen := map[int]bool{}
	for _, c := range cards {
		v := lowCardValue(c, true)
		if v > 8 || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// BestOmahaLow8 selects the best qualifying ace-to-five low using exactly
// two hole cards and three board cards. The second return is false when no
// combination qualifies eight-or-better.
func BestOmahaLow8(hole, board []card.Card) (Result, bool) {
	best := Result{}
	found := false
	combinations(len(hole), 2, func(hi []int) {
		combinations(len(board), 3, func(bi []int) {
			pick := append(pickCards(hole, hi), pickCards(board, bi)...)
			if !qualifiesLow8(pick) {
				return
			}
			v := negate(aceToFiveBadness(pick))
			if !found || v.Compare(best.Value) > 0 {
				best = Result{Value: v, Cards: pick, Desc: lowDesc(pick, true)}
				found = true
			}
		})
	})
	return best, found
}

// deuceToSevenRank ranks five cards with the ace high only. A-5-4-3-2 is
// no straight here, just ace high, or an ace-high flush when suited.
func deuceToSevenRank(cards []card.Card) Rank {
	r := Evaluate5(cards)
	if (r.Category != Straight && r.Category != StraightFlush) || r.Tiebreak[0] != 5 {
		return r
	}
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = c.Value()
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))
	if r.Category == StraightFlush {
		return Rank{Category: Flush, Tiebreak: values}
	}
	return Rank{Category: HighCard, Tiebreak: values}
}

// BestDeuceToSevenLow selects the best deuce-to-seven low hand from
// n >= 5 cards. Aces are high only; straights and flushes count against.
func BestDeuceToSevenLow(cards []card.Card) Result {
	best := Result{}
	combinations(len(cards), 5, func(idx []int) {
		pick := pickCards(cards, idx)
		r := deuceToSevenRank(pick)
		v := negate(r.Value())
		if best.Value == nil || v.Compare(best.Value) > 0 {
			desc := lowDesc(pick, false)
			if r.Category != HighCard {
				desc = r.String()
			}
			best = Result{Value: v, Cards: pick, Desc: desc}
		}
	})
	return best
}
