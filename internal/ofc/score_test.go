package ofc

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroomlabs/cardroom/internal/card"
)

func row(ss ...string) []card.Card {
	return card.MustParseAll(ss...)
}

func scoringGame(bb int, boards ...Board) *Game {
	g := &Game{Phase: PhaseScoring, BigBlind: bb, logger: zerolog.Nop()}
	for i, b := range boards {
		g.Players = append(g.Players, &Player{ID: string(rune('a' + i)), Board: b})
	}
	return g
}

func TestScoreFouledBoardForfeitsAllRows(t *testing.T) {
	fouled := Board{
		Top:    row("Qh", "Qd", "Kh"),
		Middle: row("7c", "7d", "7h", "8c", "8d"),
		Bottom: row("2c", "2d", "3c", "3d", "4h"),
	}
	clean := Board{
		Top:    row("2h", "3h", "4s"),
		Middle: row("9c", "9d", "2s", "5h", "6s"),
		Bottom: row("Th", "Td", "4c", "5c", "7s"),
	}
	g := scoringGame(10, fouled, clean)
	res, err := g.Score()
	require.NoError(t, err)

	assert.True(t, res.Seats[0].Fouled, "two pair under a full house fouls")
	assert.False(t, res.Seats[1].Fouled)
	assert.Zero(t, res.Seats[0].Royalties, "fouled boards earn no royalties")

	// Clean seat takes all three rows plus the scoop bonus.
	assert.Equal(t, -6, res.Seats[0].Points)
	assert.Equal(t, 6, res.Seats[1].Points)
	assert.Equal(t, -60, res.Seats[0].Chips)
	assert.Equal(t, 60, res.Seats[1].Chips)
	assert.False(t, res.Seats[0].FantasyNext, "a fouled board cannot enter fantasyland")
}

func TestScoreBothFouledNoExchange(t *testing.T) {
	fouled := Board{
		Top:    row("Ah", "Ad", "Kh"),
		Middle: row("2c", "3c", "4d", "5d", "8h"),
		Bottom: row("2d", "3d", "4h", "5h", "7s"),
	}
	other := Board{
		Top:    row("Kd", "Ks", "Qs"),
		Middle: row("2h", "3h", "4s", "5s", "8d"),
		Bottom: row("2s", "3s", "4c", "5c", "7c"),
	}
	g := scoringGame(10, fouled, other)
	res, err := g.Score()
	require.NoError(t, err)

	require.True(t, res.Seats[0].Fouled)
	require.True(t, res.Seats[1].Fouled)
	assert.Zero(t, res.Seats[0].Points)
	assert.Zero(t, res.Seats[1].Points)
}

func TestScoreRoyaltiesAndScoop(t *testing.T) {
	strong := Board{
		Top:    row("Ah", "Ad", "2c"),             // pair of aces: +9
		Middle: row("5c", "6d", "7h", "8s", "9c"), // straight: +4
		Bottom: row("2h", "4h", "8h", "Jh", "Kh"), // flush: +4
	}
	weak := Board{
		Top:    row("2c", "3d", "5s"),
		Middle: row("2d", "3s", "6c", "7d", "9d"),
		Bottom: row("Ts", "Jc", "Qd", "2s", "5d"),
	}
	g := scoringGame(10, strong, weak)
	res, err := g.Score()
	require.NoError(t, err)

	assert.Equal(t, 17, res.Seats[0].Royalties)
	assert.Zero(t, res.Seats[1].Royalties)

	// Three rows + scoop + royalty difference.
	assert.Equal(t, 23, res.Seats[0].Points)
	assert.Equal(t, -23, res.Seats[1].Points)
	assert.Equal(t, 230, res.Seats[0].Chips)
	assert.True(t, res.Seats[0].FantasyNext, "aces up top enter fantasyland")
}

func TestScoreRoyalRoyalties(t *testing.T) {
	royal := Board{
		Top:    row("2c", "3c", "4d"),
		Middle: row("9c", "9d", "2s", "5h", "6h"),
		Bottom: row("Th", "Jh", "Qh", "Kh", "Ah"), // royal: +25
	}
	other := Board{
		Top:    row("2d", "3d", "5s"),
		Middle: row("2h", "3s", "6c", "7d", "9s"),
		Bottom: row("Ts", "Jc", "Qd", "2s", "5d"),
	}
	g := scoringGame(10, royal, other)
	res, err := g.Score()
	require.NoError(t, err)
	assert.Equal(t, 25, res.Seats[0].Royalties)
}

func TestScoreTopTripsRoyalty(t *testing.T) {
	trips := Board{
		Top:    row("2c", "2d", "2h"),             // +10
		Middle: row("3c", "3d", "3h", "9s", "Jc"), // middle trips: +2
		Bottom: row("4c", "4d", "4h", "9c", "Qd"),
	}
	other := Board{
		Top:    row("3s", "4d", "5s"),
		Middle: row("2s", "3h", "6c", "7d", "9d"),
		Bottom: row("Ts", "Jh", "Qd", "8s", "5h"),
	}
	g := scoringGame(10, trips, other)
	res, err := g.Score()
	require.NoError(t, err)
	assert.Equal(t, 12, res.Seats[0].Royalties)
	assert.True(t, res.Seats[0].FantasyNext, "top trips enter fantasyland")
}

func TestScoreJokerResolvesToBest(t *testing.T) {
	wild := Board{
		Top:    row("2c", "3c", "4d"),
		Middle: row("9c", "9d", "2s", "5h", "6s"),
		Bottom: row("Ah", "Kh", "Qh", "Jh", "JK1"), // joker completes the royal
	}
	other := Board{
		Top:    row("2d", "3d", "5s"),
		Middle: row("2h", "3s", "6c", "7d", "9s"),
		Bottom: row("Ts", "Jc", "Qd", "4s", "5d"),
	}
	g := scoringGame(10, wild, other)
	res, err := g.Score()
	require.NoError(t, err)

	assert.False(t, res.Seats[0].Fouled)
	assert.Equal(t, 25, res.Seats[0].Royalties, "joker must resolve to the ten of hearts")
}

func TestScoreFantasylandContinuation(t *testing.T) {
	stay := Board{
		Top:    row("5c", "5d", "5h"), // trips keep the seat in fantasyland
		Middle: row("6c", "6d", "6h", "9s", "Jc"),
		Bottom: row("7c", "7h", "7s", "Kc", "2d"),
	}
	drop := Board{
		Top:    row("Qc", "Qd", "3s"), // a mere pair is not enough to stay
		Middle: row("Kh", "Ks", "8c", "9d", "Jd"),
		Bottom: row("Ac", "Ad", "4d", "5s", "8d"),
	}
	g := scoringGame(10, stay, drop)
	g.Players[0].IsFantasyland = true
	g.Players[1].IsFantasyland = true

	res, err := g.Score()
	require.NoError(t, err)
	assert.True(t, res.Seats[0].FantasyNext)
	assert.False(t, res.Seats[1].FantasyNext)
}

func TestScoreRejectedBeforeScoring(t *testing.T) {
	g, err := NewGame([]string{"a", "b"}, nil, 10)
	require.NoError(t, err)
	_, err = g.Score()
	assert.ErrorIs(t, err, ErrNotScoring)
}
