package room

import (
	"crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cardroomlabs/cardroom/internal/game"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room id already taken")
	ErrBadRoomID       = errors.New("room id must be six characters")
	ErrBadPassword     = errors.New("wrong password")
	ErrSeatTaken       = errors.New("seat is taken")
	ErrBadSeat         = errors.New("no such seat")
	ErrAlreadySeated   = errors.New("already seated in this room")
	ErrRoomFull        = errors.New("no empty seats")
	ErrBuyInOutOfRange = errors.New("buy-in outside the allowed range")
	ErrNotSeated       = errors.New("not seated in this room")
	ErrRebuyMidHand    = errors.New("rebuy only between hands")
)

const roomIDLen = 6

// idAlphabet avoids ambiguous characters in shareable room codes
const idAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Manager owns the room registry. All methods are safe for concurrent
// use; per-room game mutation beyond seating still goes through the
// session layer's queue.
type Manager struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	logger zerolog.Logger
}

// NewManager creates an empty room registry
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		rooms:  make(map[string]*Room),
		logger: logger,
	}
}

func newRoomID() string {
	buf := make([]byte, roomIDLen)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}

func validRoomID(id string) bool {
	if len(id) != roomIDLen {
		return false
	}
	for _, c := range id {
		ok := (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// Create makes a new room hosted by hostID. An empty customID draws a
// random six-character code.
func (m *Manager) Create(hostID string, cfg Config, customID string) (*Room, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, ok := game.LookupRules(cfg.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadConfig, cfg.Variant)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := customID
	if id == "" {
		for {
			id = newRoomID()
			if _, taken := m.rooms[id]; !taken {
				break
			}
		}
	} else {
		if !validRoomID(id) {
			return nil, ErrBadRoomID
		}
		if _, taken := m.rooms[id]; taken {
			return nil, ErrRoomExists
		}
	}

	r := &Room{
		ID:     id,
		Config: cfg,
		HostID: hostID,
		Table: game.NewTable(rules, cfg.MaxPlayers, cfg.SmallBlind, cfg.BigBlind,
			game.WithLogger(m.logger.With().Str("room", id).Logger())),
		FantasyNext: make(map[string]bool),
		logger:      m.logger,
	}
	r.Table.StudAnte = cfg.StudAnte
	m.rooms[id] = r
	m.logger.Info().Str("room", id).Str("host", hostID).
		Str("variant", string(cfg.Variant)).Msg("room created")
	return r, nil
}

// SeedPresets creates the standing lobby rooms from configuration.
// Preset rooms have no host and survive emptying.
func (m *Manager) SeedPresets(cfgs []Config) error {
	for _, cfg := range cfgs {
		r, err := m.Create("", cfg, "")
		if err != nil {
			return fmt.Errorf("preset %q: %w", cfg.Name, err)
		}
		r.Preset = true
	}
	return nil
}

// Get returns a room by id
func (m *Manager) Get(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Authorize checks a join against the room's password
func (m *Manager) Authorize(id, password string) (*Room, error) {
	r, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if r.Config.Password != "" && r.Config.Password != password {
		return nil, ErrBadPassword
	}
	return r, nil
}

// List snapshots all rooms
func (m *Manager) List() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// SitDown seats a player. Mid-hand the seat joins as SIT_OUT and is
// dealt in from the next hand; button games additionally wait for the
// big blind to reach the seat.
func (m *Manager) SitDown(roomID, playerID, name string, seatIdx, buyIn int) error {
	r, err := m.Get(roomID)
	if err != nil {
		return err
	}
	t := r.Table
	if seatIdx < 0 || seatIdx >= t.SeatCount() {
		return ErrBadSeat
	}
	if t.SeatIndex(playerID) >= 0 {
		return ErrAlreadySeated
	}
	if t.Seats[seatIdx] != nil {
		return ErrSeatTaken
	}
	if buyIn < r.Config.BuyInMin || buyIn > r.Config.BuyInMax {
		return ErrBuyInOutOfRange
	}

	seat := &game.Seat{ID: playerID, Name: name, Stack: buyIn, TimeBank: defaultTimeBank}
	if r.InHand() {
		seat.Status = game.StatusSitOut
		seat.PendingJoin = true
		seat.WaitingForBB = t.Rules.HasButton
	}
	t.Seats[seatIdx] = seat
	if r.HostID == "" && !r.Preset {
		r.HostID = playerID
	}
	m.logger.Info().Str("room", roomID).Str("player", playerID).
		Int("seat", seatIdx).Int("buyIn", buyIn).Msg("player seated")
	return nil
}

// QuickJoin seats a player at a random empty seat
func (m *Manager) QuickJoin(roomID, playerID, name string, buyIn int) (int, error) {
	r, err := m.Get(roomID)
	if err != nil {
		return -1, err
	}
	var empty []int
	for i, s := range r.Table.Seats {
		if s == nil {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return -1, ErrRoomFull
	}
	seatIdx := empty[mrand.Intn(len(empty))]
	if err := m.SitDown(roomID, playerID, name, seatIdx, buyIn); err != nil {
		return -1, err
	}
	return seatIdx, nil
}

// StandUp removes a player's seat. Mid-hand with live cards the caller
// should fold first; here the seat is marked to leave at the boundary.
// Empty non-preset rooms are deleted.
func (m *Manager) StandUp(roomID, playerID string) error {
	r, err := m.Get(roomID)
	if err != nil {
		return err
	}
	t := r.Table
	idx := t.SeatIndex(playerID)
	if idx < 0 {
		return ErrNotSeated
	}
	s := t.Seats[idx]
	if r.InHand() && s.InHand() {
		s.PendingLeave = true
		return nil
	}
	t.Seats[idx] = nil
	r.transferHost()
	m.logger.Info().Str("room", roomID).Str("player", playerID).Msg("player stood up")

	if t.OccupiedSeats() == 0 && !r.Preset {
		m.Delete(roomID)
	}
	return nil
}

// Rebuy tops up a stack between hands, capped at the room's maximum
func (m *Manager) Rebuy(roomID, playerID string, amount int) (newStack int, err error) {
	r, err := m.Get(roomID)
	if err != nil {
		return 0, err
	}
	idx := r.Table.SeatIndex(playerID)
	if idx < 0 {
		return 0, ErrNotSeated
	}
	if r.InHand() {
		return 0, ErrRebuyMidHand
	}
	s := r.Table.Seats[idx]
	if amount <= 0 || s.Stack+amount > r.Config.BuyInMax {
		return 0, ErrBuyInOutOfRange
	}
	s.Stack += amount
	return s.Stack, nil
}

// Delete removes a room from the registry
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; ok {
		delete(m.rooms, id)
		m.logger.Info().Str("room", id).Msg("room deleted")
	}
}
