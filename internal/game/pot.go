package game

import "sort"

// Pots is the derived pot structure of a hand: the lowest tier is the
// main pot, the remainder are side pots in ascending tier order.
type Pots struct {
	Main         int
	MainEligible []string
	Side         []SidePot
}

// Total returns chips across the main and all side pots
func (p Pots) Total() int {
	total := p.Main
	for _, sp := range p.Side {
		total += sp.Amount
	}
	return total
}

type potTier struct {
	amount   int
	eligible []string
}

// ComputePots derives main and side pots from per-seat total commitments.
// Every chip ever committed lands in exactly one pot; a tier's eligibility
// set is the non-folded seats committed at or above it. Folded seats
// contribute chips but are never eligible.
func ComputePots(seats []*Seat) Pots {
	// Distinct non-zero commitment levels, ascending.
	levels := map[int]bool{}
	for _, s := range seats {
		if s != nil && s.TotalBet > 0 {
			levels[s.TotalBet] = true
		}
	}
	tiers := make([]int, 0, len(levels))
	for lvl := range levels {
		tiers = append(tiers, lvl)
	}
	sort.Ints(tiers)

	pots := make([]potTier, 0, len(tiers))
	prev := 0
	for _, tier := range tiers {
		pt := potTier{}
		for _, s := range seats {
			if s == nil || s.TotalBet <= prev {
				continue
			}
			contribution := s.TotalBet - prev
			if contribution > tier-prev {
				contribution = tier - prev
			}
			pt.amount += contribution
			if s.Status != StatusFolded && s.TotalBet >= tier {
				pt.eligible = append(pt.eligible, s.ID)
			}
		}
		if pt.amount > 0 {
			pots = append(pots, pt)
		}
		prev = tier
	}

	// Merge adjacent tiers with identical eligibility so a short call
	// level doesn't split the main pot cosmetically.
	merged := make([]potTier, 0, len(pots))
	for _, pt := range pots {
		if n := len(merged); n > 0 && sameEligible(merged[n-1].eligible, pt.eligible) {
			merged[n-1].amount += pt.amount
			continue
		}
		merged = append(merged, pt)
	}

	out := Pots{}
	for i, pt := range merged {
		if i == 0 {
			out.Main = pt.amount
			out.MainEligible = pt.eligible
			continue
		}
		out.Side = append(out.Side, SidePot{Amount: pt.amount, Eligible: pt.eligible})
	}
	return out
}

func sameEligible(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
