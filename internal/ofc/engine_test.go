package ofc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroomlabs/cardroom/internal/card"
)

// greedyPlacements fills the board bottom-up within row capacities
func greedyPlacements(b *Board, cards []card.Card) []Placement {
	bottom, middle, top := len(b.Bottom), len(b.Middle), len(b.Top)
	var out []Placement
	for _, c := range cards {
		switch {
		case bottom < 5:
			out = append(out, Placement{Card: c, Row: RowBottom})
			bottom++
		case middle < 5:
			out = append(out, Placement{Card: c, Row: RowMiddle})
			middle++
		default:
			out = append(out, Placement{Card: c, Row: RowTop})
			top++
		}
	}
	return out
}

func placePineapple(t *testing.T, g *Game, p *Player) {
	t.Helper()
	require.Len(t, p.CurrentCards, 3)
	keep := p.CurrentCards[:2]
	discard := p.CurrentCards[2]
	err := g.Place(p.ID, greedyPlacements(&p.Board, keep), &discard)
	require.NoError(t, err)
}

func TestFullHandFlow(t *testing.T) {
	g, err := NewGame([]string{"a", "b"}, nil, 10, WithRNG(rand.New(rand.NewSource(7))))
	require.NoError(t, err)
	require.NoError(t, g.Start())

	assert.Equal(t, PhaseInitialPlacing, g.Phase)
	assert.Equal(t, 1, g.Round)
	require.Len(t, g.Players[0].CurrentCards, 5)
	require.Len(t, g.Players[1].CurrentCards, 5)

	// Round one is simultaneous: either player may submit first.
	a, b := g.Players[0], g.Players[1]
	require.NoError(t, g.Place("b", greedyPlacements(&b.Board, b.CurrentCards), nil))
	assert.Equal(t, PhaseInitialPlacing, g.Phase)
	require.NoError(t, g.Place("a", greedyPlacements(&a.Board, a.CurrentCards), nil))

	assert.Equal(t, PhasePineapplePlacing, g.Phase)
	assert.Equal(t, 2, g.Round)
	assert.Equal(t, 0, g.Turn)
	require.Len(t, a.CurrentCards, 3)

	// Out of turn placements are rejected.
	err = g.Place("b", nil, nil)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	for round := 2; round <= 5; round++ {
		placePineapple(t, g, a)
		assert.Equal(t, 1, g.Turn)
		placePineapple(t, g, b)
	}

	assert.Equal(t, PhaseScoring, g.Phase)
	assert.True(t, a.Board.Complete())
	assert.True(t, b.Board.Complete())
	assert.Len(t, a.Discards, 4)

	res, err := g.Score()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Seats[0].Points+res.Seats[1].Points, "points are zero sum")
	assert.Equal(t, PhaseWaiting, g.Phase)
}

func TestInitialPlacementValidation(t *testing.T) {
	g, err := NewGame([]string{"a", "b"}, nil, 10, WithRNG(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	require.NoError(t, g.Start())
	a := g.Players[0]

	// Too few placements.
	err = g.Place("a", greedyPlacements(&a.Board, a.CurrentCards[:4]), nil)
	assert.ErrorIs(t, err, ErrBadPlacement)

	// A card the player was never dealt.
	fake := make([]Placement, 5)
	for i, c := range a.CurrentCards[:4] {
		fake[i] = Placement{Card: c, Row: RowBottom}
	}
	notDealt := card.MustParse("As")
	if notDealt == a.CurrentCards[4] {
		notDealt = card.MustParse("Ks")
	}
	fake[4] = Placement{Card: notDealt, Row: RowTop}
	err = g.Place("a", fake, nil)
	assert.ErrorIs(t, err, ErrCardNotDealt)

	// Four cards into the three-slot top row.
	over := make([]Placement, 5)
	for i, c := range a.CurrentCards {
		over[i] = Placement{Card: c, Row: RowTop}
	}
	err = g.Place("a", over, nil)
	assert.ErrorIs(t, err, ErrRowFull)

	// A rejected submit must not leave cards on the board.
	assert.Zero(t, a.Board.Size())
	assert.False(t, a.HasPlaced)

	// The same card placed twice.
	dup := greedyPlacements(&a.Board, a.CurrentCards)
	dup[4] = dup[3]
	err = g.Place("a", dup, nil)
	assert.ErrorIs(t, err, ErrCardNotDealt)

	require.NoError(t, g.Place("a", greedyPlacements(&a.Board, a.CurrentCards), nil))
	err = g.Place("a", nil, nil)
	assert.ErrorIs(t, err, ErrAlreadyPlaced)
}

func TestSeatLimit(t *testing.T) {
	_, err := NewGame([]string{"a", "b", "c", "d"}, nil, 10)
	assert.ErrorIs(t, err, ErrTooManySeats)
}

func TestDeckHasJokers(t *testing.T) {
	g, err := NewGame([]string{"a", "b", "c"}, nil, 10, WithRNG(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	assert.Equal(t, 54, g.Deck.Remaining())
}

func TestFantasylandOneShotPlacement(t *testing.T) {
	g, err := NewGame([]string{"a", "b"}, map[string]bool{"a": true}, 10,
		WithRNG(rand.New(rand.NewSource(11))))
	require.NoError(t, err)
	require.NoError(t, g.Start())

	a, b := g.Players[0], g.Players[1]
	require.Len(t, a.CurrentCards, 14)
	require.Len(t, b.CurrentCards, 5)

	discard := a.CurrentCards[13]
	require.NoError(t, g.Place("a", greedyPlacements(&a.Board, a.CurrentCards[:13]), &discard))
	assert.True(t, a.Board.Complete())

	require.NoError(t, g.Place("b", greedyPlacements(&b.Board, b.CurrentCards), nil))

	// Fantasyland seat is skipped: every pineapple turn belongs to b.
	for round := 2; round <= 5; round++ {
		assert.Equal(t, PhasePineapplePlacing, g.Phase)
		assert.Equal(t, 1, g.Turn)
		placePineapple(t, g, b)
	}
	assert.Equal(t, PhaseScoring, g.Phase)
}
