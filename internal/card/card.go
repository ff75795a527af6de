package card

import "fmt"

// Suit represents a card suit. The ordering matters: it is the suit
// precedence used to break bring-in ties in stud games (clubs lowest).
type Suit int8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	default:
		return "?"
	}
}

// Rank represents a card rank. Aces are high (14); lowball evaluators
// treat them as 1 where the variant requires it.
type Rank int8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return string(rune('0' + int(r)))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card. A zero Rank with a non-zero Joker index
// denotes one of the two wildcards used in OFC decks.
type Card struct {
	Rank  Rank
	Suit  Suit
	Joker int8 // 0 = not a joker, 1 or 2 otherwise
}

// New creates a new card
func New(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// NewJoker creates one of the two wildcards
func NewJoker(n int8) Card {
	return Card{Joker: n}
}

// IsJoker returns true if the card is a wildcard
func (c Card) IsJoker() bool {
	return c.Joker != 0
}

// String returns the short form of a card (e.g. "As", "Td", "JK1")
func (c Card) String() string {
	if c.IsJoker() {
		return fmt.Sprintf("JK%d", c.Joker)
	}
	return c.Rank.String() + c.Suit.String()
}

// Value returns the numeric rank value used for comparison (2..14)
func (c Card) Value() int {
	return int(c.Rank)
}

// Parse parses a short-form card string such as "As" or "JK2"
func Parse(s string) (Card, error) {
	if s == "JK1" {
		return NewJoker(1), nil
	}
	if s == "JK2" {
		return NewJoker(2), nil
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	var rank Rank
	switch s[0] {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		rank = Rank(s[0] - '0')
	case 'T':
		rank = Ten
	case 'J':
		rank = Jack
	case 'Q':
		rank = Queen
	case 'K':
		rank = King
	case 'A':
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid rank in %q", s)
	}

	var suit Suit
	switch s[1] {
	case 'c':
		suit = Clubs
	case 'd':
		suit = Diamonds
	case 'h':
		suit = Hearts
	case 's':
		suit = Spades
	default:
		return Card{}, fmt.Errorf("invalid suit in %q", s)
	}

	return New(rank, suit), nil
}

// MustParse parses a card string and panics on failure. Test helper.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseAll parses a list of card strings
func ParseAll(ss ...string) ([]Card, error) {
	cards := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := Parse(s)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseAll parses a list of card strings and panics on failure. Test helper.
func MustParseAll(ss ...string) []Card {
	cards, err := ParseAll(ss...)
	if err != nil {
		panic(err)
	}
	return cards
}

// Strings renders cards to their short forms
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
