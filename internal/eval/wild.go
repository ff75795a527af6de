package eval

import "github.com/cardroomlabs/cardroom/internal/card"

// substitutionUniverse returns the 52-card universe minus the cards already
// in play, i.e. every concrete card a joker could stand for.
func substitutionUniverse(used []card.Card) []card.Card {
	taken := map[card.Card]bool{}
	for _, c := range used {
		if !c.IsJoker() {
			taken[c] = true
		}
	}
	out := make([]card.Card, 0, 52-len(taken))
	for suit := card.Clubs; suit <= card.Spades; suit++ {
		for rank := card.Two; rank <= card.Ace; rank++ {
			c := card.New(rank, suit)
			if !taken[c] {
				out = append(out, c)
			}
		}
	}
	return out
}

// ResolveWild evaluates a hand that may contain jokers by enumerating
// substitutions from the remaining universe and keeping the maximum
// ranking. evaluate receives fully concrete cards. used is every concrete
// card visible anywhere in the hand (all rows, all players), so a joker
// never resolves to a card already dealt.
func ResolveWild(cards []card.Card, used []card.Card, evaluate func([]card.Card) Result) Result {
	var jokers []int
	for i, c := range cards {
		if c.IsJoker() {
			jokers = append(jokers, i)
		}
	}
	if len(jokers) == 0 {
		return evaluate(cards)
	}

	universe := substitutionUniverse(used)
	work := append([]card.Card(nil), cards...)
	best := Result{}

	switch len(jokers) {
	case 1:
		for _, sub := range universe {
			work[jokers[0]] = sub
			r := evaluate(work)
			if best.Value == nil || r.Value.Compare(best.Value) > 0 {
				best = r
			}
		}
	default:
		// Two jokers: ordered unique pairs from the universe.
		for i, a := range universe {
			for j, b := range universe {
				if i == j {
					continue
				}
				work[jokers[0]] = a
				work[jokers[1]] = b
				r := evaluate(work)
				if best.Value == nil || r.Value.Compare(best.Value) > 0 {
					best = r
				}
			}
		}
	}
	return best
}
