package ofc

import (
	"errors"
	"fmt"

	"github.com/cardroomlabs/cardroom/internal/card"
)

var (
	ErrRowFull        = errors.New("row is full")
	ErrUnknownRow     = errors.New("unknown row")
	ErrCardNotDealt   = errors.New("card was not dealt to you")
	ErrBadPlacement   = errors.New("invalid placement set")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrAlreadyPlaced  = errors.New("already placed this round")
	ErrNotPlacing     = errors.New("no placement expected")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrTooManySeats   = errors.New("too many players for an OFC hand")
	ErrHandInProgress = errors.New("hand already in progress")
)

// Row identifies one of the three board rows
type Row int8

const (
	RowTop Row = iota
	RowMiddle
	RowBottom
)

// String returns the wire name of a row
func (r Row) String() string {
	switch r {
	case RowTop:
		return "top"
	case RowMiddle:
		return "middle"
	case RowBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// ParseRow maps a wire row name to its Row
func ParseRow(s string) (Row, bool) {
	switch s {
	case "top":
		return RowTop, true
	case "middle":
		return RowMiddle, true
	case "bottom":
		return RowBottom, true
	default:
		return RowTop, false
	}
}

// rowCapacity is the hard size limit per row
func rowCapacity(r Row) int {
	if r == RowTop {
		return 3
	}
	return 5
}

// Board is a player's three-row layout. Cards never move between rows
// once placed.
type Board struct {
	Top    []card.Card
	Middle []card.Card
	Bottom []card.Card
}

// Row returns the cards in a row
func (b *Board) Row(r Row) []card.Card {
	switch r {
	case RowTop:
		return b.Top
	case RowMiddle:
		return b.Middle
	default:
		return b.Bottom
	}
}

func (b *Board) place(r Row, c card.Card) error {
	switch r {
	case RowTop:
		if len(b.Top) >= rowCapacity(RowTop) {
			return fmt.Errorf("%w: top", ErrRowFull)
		}
		b.Top = append(b.Top, c)
	case RowMiddle:
		if len(b.Middle) >= rowCapacity(RowMiddle) {
			return fmt.Errorf("%w: middle", ErrRowFull)
		}
		b.Middle = append(b.Middle, c)
	case RowBottom:
		if len(b.Bottom) >= rowCapacity(RowBottom) {
			return fmt.Errorf("%w: bottom", ErrRowFull)
		}
		b.Bottom = append(b.Bottom, c)
	default:
		return ErrUnknownRow
	}
	return nil
}

// Cards returns every card on the board
func (b *Board) Cards() []card.Card {
	out := make([]card.Card, 0, 13)
	out = append(out, b.Top...)
	out = append(out, b.Middle...)
	return append(out, b.Bottom...)
}

// Size returns the number of cards placed
func (b *Board) Size() int {
	return len(b.Top) + len(b.Middle) + len(b.Bottom)
}

// Complete reports whether all thirteen slots are filled
func (b *Board) Complete() bool {
	return len(b.Top) == 3 && len(b.Middle) == 5 && len(b.Bottom) == 5
}
