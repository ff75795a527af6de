package ofc

import (
	"errors"

	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/cardroomlabs/cardroom/internal/eval"
)

var ErrNotScoring = errors.New("hand has not reached scoring")

const scoopBonus = 3

// SeatScore is one player's settled OFC result
type SeatScore struct {
	PlayerID  string
	Fouled    bool
	Royalties int
	Points    int // net row/scoop/royalty points across all matchups
	Chips     int // Points converted at the table's big blind

	Top    eval.Result
	Middle eval.Result
	Bottom eval.Result

	FantasyNext bool
}

// Matchup is the pairwise settlement between two seats; PointsA is what
// seat A nets from seat B (B nets the negation).
type Matchup struct {
	A, B    int
	PointsA int
}

// ScoreResult is the settled outcome of an OFC hand
type ScoreResult struct {
	Seats    []SeatScore
	Matchups []Matchup
}

// Score settles the hand: fouls, royalties, pairwise row comparison and
// the chip conversion. Jokers resolve to their best substitution against
// the cards visible across all boards.
func (g *Game) Score() (*ScoreResult, error) {
	if g.Phase != PhaseScoring {
		return nil, ErrNotScoring
	}

	// Jokers may not resolve to any card dealt this hand.
	var used []card.Card
	for _, p := range g.Players {
		used = append(used, p.Board.Cards()...)
		used = append(used, p.Discards...)
	}

	res := &ScoreResult{Seats: make([]SeatScore, len(g.Players))}
	for i, p := range g.Players {
		s := &res.Seats[i]
		s.PlayerID = p.ID
		s.Top = eval.ResolveWild(p.Board.Top, used, eval.Result3)
		s.Middle = eval.ResolveWild(p.Board.Middle, used, eval.Result5)
		s.Bottom = eval.ResolveWild(p.Board.Bottom, used, eval.Result5)
		s.Fouled = !p.Board.Complete() ||
			s.Bottom.Value.Compare(s.Middle.Value) < 0 ||
			s.Middle.Value.Compare(s.Top.Value) < 0
		if !s.Fouled {
			s.Royalties = topRoyalty(s.Top) + middleRoyalty(s.Middle) + bottomRoyalty(s.Bottom)
			s.FantasyNext = fantasyEarned(p, s)
		}
		p.FantasyNext = s.FantasyNext
	}

	for i := 0; i < len(g.Players); i++ {
		for j := i + 1; j < len(g.Players); j++ {
			pts := matchupPoints(&res.Seats[i], &res.Seats[j])
			res.Matchups = append(res.Matchups, Matchup{A: i, B: j, PointsA: pts})
			res.Seats[i].Points += pts
			res.Seats[j].Points -= pts
		}
	}
	for i := range res.Seats {
		res.Seats[i].Chips = res.Seats[i].Points * g.BigBlind
		g.logger.Debug().
			Str("player", res.Seats[i].PlayerID).
			Bool("fouled", res.Seats[i].Fouled).
			Int("royalties", res.Seats[i].Royalties).
			Int("points", res.Seats[i].Points).
			Msg("ofc seat scored")
	}
	g.Phase = PhaseWaiting
	return res, nil
}

// matchupPoints computes a's net points against b: per-row wins, the
// scoop bonus, and the royalty difference.
func matchupPoints(a, b *SeatScore) int {
	switch {
	case a.Fouled && b.Fouled:
		return 0
	case a.Fouled:
		return -(3 + scoopBonus + b.Royalties)
	case b.Fouled:
		return 3 + scoopBonus + a.Royalties
	}

	pts := 0
	wins := 0
	for _, rows := range [][2]eval.Result{{a.Top, b.Top}, {a.Middle, b.Middle}, {a.Bottom, b.Bottom}} {
		switch rows[0].Value.Compare(rows[1].Value) {
		case 1:
			pts++
			wins++
		case -1:
			pts--
		}
	}
	if wins == 3 {
		pts += scoopBonus
	} else if pts == -3 {
		pts -= scoopBonus
	}
	return pts + a.Royalties - b.Royalties
}

// topRoyalty pays the three-card row: sixes and up for pairs, any trips
func topRoyalty(r eval.Result) int {
	v := r.Value
	switch eval.Category(v[0]) {
	case eval.Pair:
		if v[1] >= 6 {
			return v[1] - 5 // 66=1 up to AA=9
		}
	case eval.Trips:
		return v[1] + 8 // 222=10 up to AAA=22
	}
	return 0
}

func middleRoyalty(r eval.Result) int {
	switch eval.Category(r.Value[0]) {
	case eval.Trips:
		return 2
	case eval.Straight:
		return 4
	case eval.Flush:
		return 8
	case eval.FullHouse:
		return 12
	case eval.Quads:
		return 20
	case eval.StraightFlush:
		if r.Value[1] == int(card.Ace) {
			return 50
		}
		return 30
	}
	return 0
}

func bottomRoyalty(r eval.Result) int {
	switch eval.Category(r.Value[0]) {
	case eval.Straight:
		return 2
	case eval.Flush:
		return 4
	case eval.FullHouse:
		return 6
	case eval.Quads:
		return 10
	case eval.StraightFlush:
		if r.Value[1] == int(card.Ace) {
			return 25
		}
		return 15
	}
	return 0
}

// fantasyEarned decides next-hand fantasyland. Entry needs queens or
// better up top; staying requires top trips, a middle full house or
// bottom quads.
func fantasyEarned(p *Player, s *SeatScore) bool {
	topCat := eval.Category(s.Top.Value[0])
	if p.IsFantasyland {
		return topCat == eval.Trips ||
			eval.Category(s.Middle.Value[0]) >= eval.FullHouse ||
			eval.Category(s.Bottom.Value[0]) >= eval.Quads
	}
	if topCat == eval.Trips {
		return true
	}
	return topCat == eval.Pair && s.Top.Value[1] >= int(card.Queen)
}
