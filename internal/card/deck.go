package card

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	mrand "math/rand"
)

// ErrDeckEmpty is returned when a deal would underflow the deck.
// The engine treats this as an integrity failure and aborts the hand.
var ErrDeckEmpty = errors.New("deck is empty")

// Deck represents a shuffled deck of playing cards plus its burn pile.
// Burned cards can be recycled back into the deck for draw games that
// run out of fresh cards mid-exchange.
type Deck struct {
	cards  []Card
	burned []Card
	rng    *mrand.Rand
}

// Option configures deck construction
type Option func(*Deck)

// WithJokers adds the two wildcards used by OFC decks
func WithJokers() Option {
	return func(d *Deck) {
		d.cards = append(d.cards, NewJoker(1), NewJoker(2))
	}
}

// WithRNG supplies a deterministic random source, used by tests
func WithRNG(rng *mrand.Rand) Option {
	return func(d *Deck) {
		d.rng = rng
	}
}

// CryptoSeededRNG returns a math/rand source seeded from the operating
// system CSPRNG so shuffle order is not predictable from wall time.
func CryptoSeededRNG() *mrand.Rand {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// nothing sensible to fall back to.
		panic(err)
	}
	return mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(buf[:]))))
}

// NewDeck creates a standard 52-card deck, shuffled
func NewDeck(opts ...Option) *Deck {
	d := &Deck{cards: make([]Card, 0, 54)}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, New(rank, suit))
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = CryptoSeededRNG()
	}
	d.Shuffle()
	return d
}

// NewStacked creates an unshuffled deck dealing the given cards in order.
// Deterministic test helper.
func NewStacked(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...), rng: mrand.New(mrand.NewSource(0))}
}

// Shuffle randomizes the order of the remaining cards (Fisher-Yates)
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// DrawN deals n cards from the deck
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckEmpty
	}
	cards := make([]Card, n)
	for i := range cards {
		c, err := d.Draw()
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}

// Burn discards the top card face down
func (d *Deck) Burn() error {
	c, err := d.Draw()
	if err != nil {
		return err
	}
	d.burned = append(d.burned, c)
	return nil
}

// Discard adds a card removed from play to the burn pile so DrawRecycling
// can reuse it. Draw exchanges bank replaced cards here.
func (d *Deck) Discard(c Card) {
	d.burned = append(d.burned, c)
}

// DrawRecycling deals one card, reshuffling the burn pile back in if the
// deck is exhausted. Draw games with many exchanges rely on this.
func (d *Deck) DrawRecycling() (Card, error) {
	if len(d.cards) == 0 && len(d.burned) > 0 {
		d.cards = d.burned
		d.burned = nil
		d.Shuffle()
	}
	return d.Draw()
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// BurnedCount returns the number of burned cards
func (d *Deck) BurnedCount() int {
	return len(d.burned)
}
