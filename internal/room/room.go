package room

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/cardroomlabs/cardroom/internal/game"
	"github.com/cardroomlabs/cardroom/internal/ofc"
)

var (
	ErrNotHost        = errors.New("only the host may do that")
	ErrBadVariant     = errors.New("variant not allowed in this room")
	ErrChangeMidHand  = errors.New("cannot change settings mid-hand")
	ErrRotationActive = errors.New("variant is fixed while a rotation runs")
)

// Rotation cycles the table through a variant list, advancing every
// HandsPerGame hands at a hand boundary.
type Rotation struct {
	Games        []game.Variant
	HandsPerGame int

	index       int
	handsPlayed int
}

// Active reports whether a rotation is configured
func (r *Rotation) Active() bool {
	return len(r.Games) > 0 && r.HandsPerGame > 0
}

// Current returns the variant the rotation currently points at
func (r *Rotation) Current() game.Variant {
	return r.Games[r.index]
}

// advance counts one finished hand; returns the next variant and true
// when the rotation moves on.
func (r *Rotation) advance() (game.Variant, bool) {
	r.handsPlayed++
	if r.handsPlayed < r.HandsPerGame {
		return "", false
	}
	r.handsPlayed = 0
	r.index = (r.index + 1) % len(r.Games)
	return r.Games[r.index], true
}

// Room is one table with its configuration and host state. The session
// layer serializes all access; Room itself holds no lock.
type Room struct {
	ID     string
	Config Config
	HostID string
	Preset bool // seeded at startup, never deleted

	// Config edits submitted mid-hand, applied at the next hand start.
	PendingConfig *Config

	Table *game.Table

	// OFC hands run in their own engine; seating and stacks stay on the
	// Table. FantasyNext carries fantasyland entitlement across hands.
	OFC         *ofc.Game
	FantasyNext map[string]bool

	Rotation   Rotation
	SevenDeuce bool
	StandUp    bool

	logger zerolog.Logger
}

// IsOFC reports whether the room currently plays open-face Chinese
func (r *Room) IsOFC() bool {
	return r.Table.Rules.Variant == game.OFC
}

// InHand reports whether a hand is running
func (r *Room) InHand() bool {
	if r.OFC != nil && r.OFC.Phase != ofc.PhaseWaiting {
		return true
	}
	return r.Table.State.InProgress()
}

// HasPassword reports whether the room is password gated
func (r *Room) HasPassword() bool {
	return r.Config.Password != ""
}

// SetVariant switches the table variant between hands. Host only, and
// not while a rotation is running.
func (r *Room) SetVariant(playerID string, v game.Variant) error {
	if playerID != r.HostID {
		return ErrNotHost
	}
	if r.InHand() {
		return ErrChangeMidHand
	}
	if r.Rotation.Active() {
		return ErrRotationActive
	}
	if !r.Config.Allows(v) {
		return ErrBadVariant
	}
	rules, ok := game.LookupRules(v)
	if !ok {
		return ErrBadVariant
	}
	if err := r.Table.SetVariant(rules); err != nil {
		return err
	}
	r.Config.Variant = v
	return nil
}

// SetRotation installs (or with an empty list clears) a variant rotation
func (r *Room) SetRotation(playerID string, games []game.Variant, handsPerGame int) error {
	if playerID != r.HostID {
		return ErrNotHost
	}
	for _, v := range games {
		if !r.Config.Allows(v) {
			return ErrBadVariant
		}
	}
	if len(games) == 0 {
		r.Rotation = Rotation{}
		return nil
	}
	if handsPerGame <= 0 {
		handsPerGame = 1
	}
	r.Rotation = Rotation{Games: games, HandsPerGame: handsPerGame}
	if rules, ok := game.LookupRules(games[0]); ok && !r.Table.State.InProgress() {
		if err := r.Table.SetVariant(rules); err == nil {
			r.Config.Variant = games[0]
		}
	}
	return nil
}

// UpdateConfig stages a config change. Between hands it applies at once;
// mid-hand it is parked and applied at the next hand start.
func (r *Room) UpdateConfig(playerID string, cfg Config) (applied bool, err error) {
	if playerID != r.HostID {
		return false, ErrNotHost
	}
	cfg.Name = r.Config.Name
	cfg.Variant = r.Config.Variant
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	if r.InHand() {
		r.PendingConfig = &cfg
		return false, nil
	}
	r.applyConfig(cfg)
	return true, nil
}

// ApplyPendingConfig installs a parked config edit. Called at the hand
// boundary; returns true when something was applied.
func (r *Room) ApplyPendingConfig() bool {
	if r.PendingConfig == nil {
		return false
	}
	r.applyConfig(*r.PendingConfig)
	r.PendingConfig = nil
	return true
}

func (r *Room) applyConfig(cfg Config) {
	r.Config = cfg
	r.Table.SmallBlind = cfg.SmallBlind
	r.Table.BigBlind = cfg.BigBlind
	r.Table.StudAnte = cfg.StudAnte
	r.logger.Info().Str("room", r.ID).Msg("room config applied")
}

// AdvanceRotation counts a finished hand against the rotation and, when
// it rolls over, swaps the table variant. Returns the new variant and
// true on a switch. Called at the hand boundary.
func (r *Room) AdvanceRotation() (game.Variant, bool) {
	if !r.Rotation.Active() {
		return "", false
	}
	next, moved := r.Rotation.advance()
	if !moved {
		return "", false
	}
	rules, ok := game.LookupRules(next)
	if !ok {
		return "", false
	}
	if err := r.Table.SetVariant(rules); err != nil {
		return "", false
	}
	r.Config.Variant = next
	r.logger.Info().Str("room", r.ID).Str("variant", string(next)).Msg("rotation advanced")
	return next, true
}

// ToggleMetaGame flips a side game on or off. Host only.
func (r *Room) ToggleMetaGame(playerID, name string, enabled bool) error {
	if playerID != r.HostID {
		return ErrNotHost
	}
	switch name {
	case "seven-deuce":
		r.SevenDeuce = enabled
	case "stand-up":
		r.StandUp = enabled
		if enabled {
			for _, s := range r.Table.Seats {
				if s != nil {
					s.StoodUp = false
				}
			}
		}
	default:
		return ErrBadConfig
	}
	return nil
}

// transferHost hands the room to the next occupied seat when the host
// leaves. No-op when the host is still seated or the room is empty.
func (r *Room) transferHost() {
	if r.Table.SeatIndex(r.HostID) >= 0 {
		return
	}
	for _, s := range r.Table.Seats {
		if s != nil {
			r.HostID = s.ID
			r.logger.Info().Str("room", r.ID).Str("host", s.ID).Msg("host transferred")
			return
		}
	}
	r.HostID = ""
}
