package room

import (
	"errors"
	"fmt"

	"github.com/cardroomlabs/cardroom/internal/game"
)

var ErrBadConfig = errors.New("invalid room configuration")

const (
	defaultMaxPlayers = 9
	maxOFCPlayers     = 3
	defaultTimeLimit  = 30 // seconds per decision

	buyInMinBlinds = 20
	buyInMaxBlinds = 200

	// defaultTimeBank is the per-seat stock of extra-time chips
	defaultTimeBank = 5
)

// Config is a room's table configuration. Zero fields are filled with
// defaults by Normalize.
type Config struct {
	Name         string // preset display name, empty for player rooms
	MaxPlayers   int
	SmallBlind   int
	BigBlind     int
	BuyInMin     int
	BuyInMax     int
	AllowedGames []game.Variant
	TimeLimit    int // seconds per decision
	StudAnte     int
	Password     string
	Variant      game.Variant
}

// Normalize fills defaults derived from the blinds and variant
func (c *Config) Normalize() {
	if c.Variant == "" {
		c.Variant = game.NLH
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = defaultMaxPlayers
	}
	if c.Variant == game.OFC && c.MaxPlayers > maxOFCPlayers {
		c.MaxPlayers = maxOFCPlayers
	}
	if c.BuyInMin == 0 {
		c.BuyInMin = c.BigBlind * buyInMinBlinds
	}
	if c.BuyInMax == 0 {
		c.BuyInMax = c.BigBlind * buyInMaxBlinds
	}
	if c.TimeLimit == 0 {
		c.TimeLimit = defaultTimeLimit
	}
	if c.StudAnte == 0 {
		c.StudAnte = c.BigBlind / 5
	}
	if len(c.AllowedGames) == 0 {
		c.AllowedGames = []game.Variant{c.Variant}
	}
}

// Validate checks a normalized config
func (c *Config) Validate() error {
	if c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind {
		return fmt.Errorf("%w: blinds %d/%d", ErrBadConfig, c.SmallBlind, c.BigBlind)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > defaultMaxPlayers {
		return fmt.Errorf("%w: max players %d", ErrBadConfig, c.MaxPlayers)
	}
	if c.Variant == game.OFC && c.MaxPlayers > maxOFCPlayers {
		return fmt.Errorf("%w: OFC seats at most %d", ErrBadConfig, maxOFCPlayers)
	}
	if c.BuyInMin <= 0 || c.BuyInMax < c.BuyInMin {
		return fmt.Errorf("%w: buy-in range %d..%d", ErrBadConfig, c.BuyInMin, c.BuyInMax)
	}
	if !game.IsValidVariant(c.Variant) {
		return fmt.Errorf("%w: unknown variant %q", ErrBadConfig, c.Variant)
	}
	for _, v := range c.AllowedGames {
		if !game.IsValidVariant(v) {
			return fmt.Errorf("%w: unknown variant %q", ErrBadConfig, v)
		}
	}
	if c.TimeLimit < 5 || c.TimeLimit > 300 {
		return fmt.Errorf("%w: time limit %ds", ErrBadConfig, c.TimeLimit)
	}
	return nil
}

// Allows reports whether the config permits switching to a variant
func (c *Config) Allows(v game.Variant) bool {
	for _, g := range c.AllowedGames {
		if g == v {
			return true
		}
	}
	return false
}
