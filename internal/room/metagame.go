package room

import (
	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/cardroomlabs/cardroom/internal/game"
)

// BonusPayout is one seven-deuce settlement: every other seat dealt into
// the hand pays the winner one big blind.
type BonusPayout struct {
	WinnerID string
	Amount   int
}

// holdsSevenDeuce reports whether a two-card holding is seven-deuce
func holdsSevenDeuce(hand []card.Card) bool {
	if len(hand) != 2 {
		return false
	}
	r0, r1 := hand[0].Rank, hand[1].Rank
	return (r0 == card.Seven && r1 == card.Two) || (r0 == card.Two && r1 == card.Seven)
}

// CheckSevenDeuce settles the 7-2 side game after a hand. A lone winner
// holding seven-deuce collects one big blind from every other seat that
// was dealt in; uncontested wins only count when the pot was raised.
func (r *Room) CheckSevenDeuce(result *game.HandResult, potWasRaised bool) *BonusPayout {
	if !r.SevenDeuce || result == nil || len(result.Winners) != 1 {
		return nil
	}
	if result.Uncontested && !potWasRaised {
		return nil
	}
	w := result.Winners[0]
	seat := r.Table.Seats[w.Seat]
	if seat == nil || !holdsSevenDeuce(seat.Hand) {
		return nil
	}

	total := 0
	for i, s := range r.Table.Seats {
		if s == nil || i == w.Seat || s.TotalBet == 0 {
			continue // only seats dealt into the hand owe the bonus
		}
		pay := r.Table.BigBlind
		if pay > s.Stack {
			pay = s.Stack
		}
		s.Stack -= pay
		total += pay
	}
	if total == 0 {
		return nil
	}
	seat.Stack += total
	r.logger.Info().Str("room", r.ID).Str("winner", w.PlayerID).
		Int("amount", total).Msg("seven-deuce bonus paid")
	return &BonusPayout{WinnerID: w.PlayerID, Amount: total}
}

// MarkStandUp records hand winners for the stand-up side game. The game
// ends when one seat remains unmarked; that seat is the loser and the
// round resets. Returns the loser's id and true when the game resolves.
func (r *Room) MarkStandUp(result *game.HandResult) (string, bool) {
	if !r.StandUp || result == nil {
		return "", false
	}
	for _, w := range result.Winners {
		if s := r.Table.Seats[w.Seat]; s != nil {
			s.StoodUp = true
		}
	}

	var sitting []*game.Seat
	for _, s := range r.Table.Seats {
		if s != nil && !s.StoodUp {
			sitting = append(sitting, s)
		}
	}
	if len(sitting) != 1 {
		return "", false
	}
	loser := sitting[0].ID
	for _, s := range r.Table.Seats {
		if s != nil {
			s.StoodUp = false
		}
	}
	r.logger.Info().Str("room", r.ID).Str("loser", loser).Msg("stand-up game resolved")
	return loser, true
}
