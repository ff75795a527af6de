package eval

import (
	"testing"

	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAceToFiveWheelIsBest(t *testing.T) {
	wheel := BestAceToFiveLow(card.MustParseAll("As", "2d", "3c", "4h", "5s", "Kd", "Qc"))
	assert.Equal(t, "5-4-3-2-A Low", wheel.Desc)

	sixLow := BestAceToFiveLow(card.MustParseAll("As", "2d", "3c", "4h", "6s", "Kd", "Qc"))
	assert.Equal(t, 1, Value(wheel.Value).Compare(sixLow.Value))
}

func TestAceToFiveIgnoresStraightsAndFlushes(t *testing.T) {
	// A wheel that is also a flush still reads as the best low.
	flushWheel := BestAceToFiveLow(card.MustParseAll("As", "2s", "3s", "4s", "5s"))
	plainWheel := BestAceToFiveLow(card.MustParseAll("Ah", "2d", "3c", "4h", "5d"))
	assert.Equal(t, 0, Value(flushWheel.Value).Compare(plainWheel.Value))
}

func TestAceToFiveAvoidsPairing(t *testing.T) {
	// Seven cards with a pair available: the best five dodge it.
	r := BestAceToFiveLow(card.MustParseAll("As", "Ad", "2c", "3h", "4s", "8d", "9c"))
	assert.Equal(t, "8-4-3-2-A Low", r.Desc)
}

func TestLow8Qualifier(t *testing.T) {
	_, ok := BestAceToFiveLow8(card.MustParseAll("As", "2d", "3c", "4h", "9s", "Kd", "Qc"))
	assert.False(t, ok, "9-high should not qualify")

	r, ok := BestAceToFiveLow8(card.MustParseAll("As", "2d", "3c", "4h", "8s", "Kd", "Qc"))
	require.True(t, ok)
	assert.Equal(t, "8-4-3-2-A Low", r.Desc)
}

func TestDeuceToSevenBest(t *testing.T) {
	// 7-5-4-3-2 offsuit is the nuts.
	nuts := BestDeuceToSevenLow(card.MustParseAll("7s", "5d", "4c", "3h", "2s"))
	assert.Equal(t, "7-5-4-3-2 Low", nuts.Desc)

	// Aces are high only: A-5-4-3-2 unsuited is no straight, just an ace
	// high. It loses to a pair-free eight low but beats any paired hand.
	aceHigh := BestDeuceToSevenLow(card.MustParseAll("As", "5d", "4c", "3h", "2s"))
	eightLow := BestDeuceToSevenLow(card.MustParseAll("8s", "6d", "4c", "3h", "2s"))
	pairFives := BestDeuceToSevenLow(card.MustParseAll("5s", "5d", "4c", "3h", "2s"))
	assert.Equal(t, "A-5-4-3-2 Low", aceHigh.Desc)
	assert.Equal(t, 1, Value(eightLow.Value).Compare(aceHigh.Value))
	assert.Equal(t, 1, Value(aceHigh.Value).Compare(pairFives.Value))

	// Suited, the same five cards make an ace-high flush, which counts
	// against the hand and loses to the pair.
	flushed := BestDeuceToSevenLow(card.MustParseAll("Ah", "5h", "4h", "3h", "2h"))
	assert.Equal(t, "Flush", flushed.Desc)
	assert.Equal(t, 1, Value(pairFives.Value).Compare(flushed.Value))

	// A genuine straight still counts against the hand.
	straight := BestDeuceToSevenLow(card.MustParseAll("6s", "5d", "4c", "3h", "2s"))
	assert.Equal(t, 1, Value(pairFives.Value).Compare(straight.Value))
}

func TestBadugiPrefersMoreCards(t *testing.T) {
	four := BestBadugi(card.MustParseAll("As", "2d", "3c", "4h"))
	assert.Equal(t, "4-Card Badugi", four.Desc)

	// Two hearts: best is a three-card badugi.
	three := BestBadugi(card.MustParseAll("As", "2d", "3h", "4h"))
	assert.Equal(t, "3-Card Badugi", three.Desc)
	assert.Equal(t, 1, Value(four.Value).Compare(three.Value))
}

func TestBadugiLowerIsBetter(t *testing.T) {
	a := BestBadugi(card.MustParseAll("As", "2d", "3c", "4h"))
	b := BestBadugi(card.MustParseAll("5s", "6d", "7c", "8h"))
	assert.Equal(t, 1, Value(a.Value).Compare(b.Value))
}

func TestBadugiDistinctRanksAndSuits(t *testing.T) {
	// Paired ranks can never share a badugi.
	r := BestBadugi(card.MustParseAll("As", "Ad", "Ac", "Ah"))
	assert.Equal(t, "1-Card Badugi", r.Desc)
}

func TestResolveWildFindsBestSubstitution(t *testing.T) {
	// Four to a royal plus a joker: resolver must complete the royal.
	cards := card.MustParseAll("As", "Ks", "Qs", "Js")
	cards = append(cards, card.NewJoker(1))
	r := ResolveWild(cards, cards, Result5)
	assert.Equal(t, int(StraightFlush), r.Value[0])
}

func TestResolveWildTwoJokers(t *testing.T) {
	cards := card.MustParseAll("As", "Ad", "Ac")
	cards = append(cards, card.NewJoker(1), card.NewJoker(2))
	r := ResolveWild(cards, cards, Result5)
	// Two wildcards on trip aces make five-of-a-kind impossible; quads
	// with a joker ace plus best kicker is the ceiling.
	assert.Equal(t, int(Quads), r.Value[0])
}

func TestResolveWildExcludesUsedCards(t *testing.T) {
	cards := card.MustParseAll("As", "Ks", "Qs", "Js")
	cards = append(cards, card.NewJoker(1))
	// Ten of spades already dealt elsewhere: royal is unreachable.
	used := append(append([]card.Card(nil), cards...), card.MustParse("Ts"))
	r := ResolveWild(cards, used, Result5)
	assert.Equal(t, int(Flush), r.Value[0])
}
