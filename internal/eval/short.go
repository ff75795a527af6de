package eval

import (
	"sort"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// Evaluate3 ranks a three-card OFC top row: trips, pair or high card.
// Values share the Category scale so a three-card rank compares directly
// against five-card middle and bottom rows.
func Evaluate3(cards []card.Card) Rank {
	if len(cards) != 3 {
		panic("eval: Evaluate3 requires exactly 3 cards")
	}
	values := make([]int, 3)
	for i, c := range cards {
		values[i] = c.Value()
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	switch {
	case values[0] == values[1] && values[1] == values[2]:
		return Rank{Category: Trips, Tiebreak: []int{values[0]}}
	case values[0] == values[1]:
		return Rank{Category: Pair, Tiebreak: []int{values[0], values[2]}}
	case values[1] == values[2]:
		return Rank{Category: Pair, Tiebreak: []int{values[1], values[0]}}
	default:
		return Rank{Category: HighCard, Tiebreak: values}
	}
}

// Result3 wraps Evaluate3 in the common Result shape
func Result3(cards []card.Card) Result {
	r := Evaluate3(cards)
	return Result{Value: r.Value(), Cards: cards, Desc: r.String()}
}

// Result5 wraps Evaluate5 in the common Result shape
func Result5(cards []card.Card) Result {
	r := Evaluate5(cards)
	return Result{Value: r.Value(), Cards: cards, Desc: r.String()}
}
