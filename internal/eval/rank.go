// Package eval ranks poker hands for every variant the room server deals.
//
// All evaluators reduce to a Value: a lexicographically compared int vector
// where greater is always better, regardless of variant. High-hand values
// lead with the category; lowball evaluators negate their components so the
// best low hand still compares greatest. This lets the showdown layer chop
// pots without knowing which evaluator produced the numbers.
package eval

import "fmt"

// Category is the high-hand category. Order matters: it is the leading
// component of a high hand's Value.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	Trips
	Straight
	Flush
	FullHouse
	Quads
	StraightFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case Trips:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case Quads:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Value is a totally ordered hand strength vector
type Value []int

// Compare returns -1, 0 or +1 comparing v against o lexicographically.
// Suits never break ties.
func (v Value) Compare(o Value) int {
	n := len(v)
	if len(o) < n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		if v[i] != o[i] {
			if v[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	// A longer vector with equal prefix only happens across hand sizes
	// (badugi); more cards wins there and is encoded in the leading
	// component, so equal prefixes of differing length are true ties.
	return 0
}

// Rank is an evaluated high hand
type Rank struct {
	Category Category
	Tiebreak []int
}

// Value returns the comparable strength vector
func (r Rank) Value() Value {
	v := make(Value, 0, 1+len(r.Tiebreak))
	v = append(v, int(r.Category))
	v = append(v, r.Tiebreak...)
	return v
}

// Compare returns the sign of r - o
func (r Rank) Compare(o Rank) int {
	return r.Value().Compare(o.Value())
}

// String describes the hand, e.g. "Full House"
func (r Rank) String() string {
	return r.Category.String()
}

// Describe renders a strength vector produced by one of the evaluators
// into a short human label for winner reports.
func Describe(v Value) string {
	if len(v) == 0 {
		return "Unknown"
	}
	if v[0] >= int(HighCard) && v[0] <= int(StraightFlush) {
		return Category(v[0]).String()
	}
	return fmt.Sprintf("Low (%d)", -v[0])
}
