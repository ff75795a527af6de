package room

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/cardroomlabs/cardroom/internal/game"
)

func testManager() *Manager {
	return NewManager(zerolog.Nop())
}

func baseConfig() Config {
	return Config{SmallBlind: 5, BigBlind: 10}
}

func TestCreateAppliesDefaults(t *testing.T) {
	m := testManager()
	r, err := m.Create("host", baseConfig(), "")
	require.NoError(t, err)

	assert.Len(t, r.ID, 6)
	assert.Equal(t, 9, r.Config.MaxPlayers)
	assert.Equal(t, 200, r.Config.BuyInMin, "default min is twenty big blinds")
	assert.Equal(t, 2000, r.Config.BuyInMax, "default max is two hundred big blinds")
	assert.Equal(t, game.NLH, r.Config.Variant)
	assert.Equal(t, "host", r.HostID)
	assert.Equal(t, 2, r.Table.StudAnte)
}

func TestCreateCustomID(t *testing.T) {
	m := testManager()
	r, err := m.Create("host", baseConfig(), "GAME42")
	require.NoError(t, err)
	assert.Equal(t, "GAME42", r.ID)

	_, err = m.Create("other", baseConfig(), "GAME42")
	assert.ErrorIs(t, err, ErrRoomExists)

	_, err = m.Create("other", baseConfig(), "TOOLONGID")
	assert.ErrorIs(t, err, ErrBadRoomID)
}

func TestCreateRejectsBadConfig(t *testing.T) {
	m := testManager()
	_, err := m.Create("host", Config{SmallBlind: 10, BigBlind: 5}, "")
	assert.ErrorIs(t, err, ErrBadConfig)

	_, err = m.Create("host", Config{SmallBlind: 5, BigBlind: 10, Variant: "CANASTA"}, "")
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestOFCSeatCap(t *testing.T) {
	m := testManager()
	cfg := baseConfig()
	cfg.Variant = game.OFC
	r, err := m.Create("host", cfg, "")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Config.MaxPlayers)
}

func TestSitDownValidation(t *testing.T) {
	m := testManager()
	r, err := m.Create("host", baseConfig(), "")
	require.NoError(t, err)

	require.NoError(t, m.SitDown(r.ID, "p1", "Ann", 0, 500))
	assert.ErrorIs(t, m.SitDown(r.ID, "p2", "Bob", 0, 500), ErrSeatTaken)
	assert.ErrorIs(t, m.SitDown(r.ID, "p1", "Ann", 1, 500), ErrAlreadySeated)
	assert.ErrorIs(t, m.SitDown(r.ID, "p2", "Bob", 99, 500), ErrBadSeat)
	assert.ErrorIs(t, m.SitDown(r.ID, "p2", "Bob", 1, 100), ErrBuyInOutOfRange)
	assert.ErrorIs(t, m.SitDown(r.ID, "p2", "Bob", 1, 5000), ErrBuyInOutOfRange)
	assert.ErrorIs(t, m.SitDown("XXXXXX", "p2", "Bob", 1, 500), ErrRoomNotFound)
}

func TestSitDownMidHandWaitsForBB(t *testing.T) {
	m := testManager()
	r, err := m.Create("host", baseConfig(), "")
	require.NoError(t, err)
	require.NoError(t, m.SitDown(r.ID, "p1", "Ann", 0, 500))
	require.NoError(t, m.SitDown(r.ID, "p2", "Bob", 1, 500))
	_, err = r.Table.StartHand()
	require.NoError(t, err)

	require.NoError(t, m.SitDown(r.ID, "p3", "Cat", 2, 500))
	s := r.Table.Seats[2]
	assert.Equal(t, game.StatusSitOut, s.Status)
	assert.True(t, s.PendingJoin)
	assert.True(t, s.WaitingForBB, "button games wait for the big blind")
}

func TestQuickJoinFillsEmptySeat(t *testing.T) {
	m := testManager()
	cfg := baseConfig()
	cfg.MaxPlayers = 2
	r, err := m.Create("host", cfg, "")
	require.NoError(t, err)

	seat, err := m.QuickJoin(r.ID, "p1", "Ann", 500)
	require.NoError(t, err)
	seat2, err := m.QuickJoin(r.ID, "p2", "Bob", 500)
	require.NoError(t, err)
	assert.NotEqual(t, seat, seat2)

	_, err = m.QuickJoin(r.ID, "p3", "Cat", 500)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestStandUpDeletesEmptyRoomAndTransfersHost(t *testing.T) {
	m := testManager()
	r, err := m.Create("p1", baseConfig(), "")
	require.NoError(t, err)
	require.NoError(t, m.SitDown(r.ID, "p1", "Ann", 0, 500))
	require.NoError(t, m.SitDown(r.ID, "p2", "Bob", 1, 500))

	require.NoError(t, m.StandUp(r.ID, "p1"))
	assert.Equal(t, "p2", r.HostID, "host passes to the next seat")

	require.NoError(t, m.StandUp(r.ID, "p2"))
	_, err = m.Get(r.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStandUpMidHandMarksPendingLeave(t *testing.T) {
	m := testManager()
	r, err := m.Create("host", baseConfig(), "")
	require.NoError(t, err)
	require.NoError(t, m.SitDown(r.ID, "p1", "Ann", 0, 500))
	require.NoError(t, m.SitDown(r.ID, "p2", "Bob", 1, 500))
	_, err = r.Table.StartHand()
	require.NoError(t, err)

	require.NoError(t, m.StandUp(r.ID, "p1"))
	assert.True(t, r.Table.Seats[0].PendingLeave)
	assert.NotNil(t, r.Table.Seats[0], "seat stays occupied until the boundary")
}

func TestPresetRoomsSurviveEmptying(t *testing.T) {
	m := testManager()
	cfg := baseConfig()
	cfg.Name = "Low Stakes NLH"
	require.NoError(t, m.SeedPresets([]Config{cfg}))
	rooms := m.List()
	require.Len(t, rooms, 1)
	r := rooms[0]
	assert.True(t, r.Preset)

	require.NoError(t, m.SitDown(r.ID, "p1", "Ann", 0, 500))
	require.NoError(t, m.StandUp(r.ID, "p1"))
	_, err := m.Get(r.ID)
	assert.NoError(t, err, "preset rooms are never deleted")
	assert.Empty(t, r.HostID)
}

func TestRebuy(t *testing.T) {
	m := testManager()
	r, err := m.Create("host", baseConfig(), "")
	require.NoError(t, err)
	require.NoError(t, m.SitDown(r.ID, "p1", "Ann", 0, 500))

	stack, err := m.Rebuy(r.ID, "p1", 300)
	require.NoError(t, err)
	assert.Equal(t, 800, stack)

	_, err = m.Rebuy(r.ID, "p1", 5000)
	assert.ErrorIs(t, err, ErrBuyInOutOfRange, "rebuy may not exceed the max buy-in")

	require.NoError(t, m.SitDown(r.ID, "p2", "Bob", 1, 500))
	_, err = r.Table.StartHand()
	require.NoError(t, err)
	_, err = m.Rebuy(r.ID, "p1", 100)
	assert.ErrorIs(t, err, ErrRebuyMidHand)
}

func TestAuthorizePassword(t *testing.T) {
	m := testManager()
	cfg := baseConfig()
	cfg.Password = "hunter2"
	r, err := m.Create("host", cfg, "")
	require.NoError(t, err)
	assert.True(t, r.HasPassword())

	_, err = m.Authorize(r.ID, "wrong")
	assert.ErrorIs(t, err, ErrBadPassword)
	_, err = m.Authorize(r.ID, "hunter2")
	assert.NoError(t, err)
}

func TestHostOnlyControls(t *testing.T) {
	m := testManager()
	cfg := baseConfig()
	cfg.AllowedGames = []game.Variant{game.NLH, game.PLO}
	r, err := m.Create("host", cfg, "")
	require.NoError(t, err)

	assert.ErrorIs(t, r.SetVariant("guest", game.PLO), ErrNotHost)
	assert.ErrorIs(t, r.SetVariant("host", game.Razz), ErrBadVariant)
	require.NoError(t, r.SetVariant("host", game.PLO))
	assert.Equal(t, game.PLO, r.Table.Rules.Variant)
}

func TestRotationAdvances(t *testing.T) {
	m := testManager()
	cfg := baseConfig()
	cfg.AllowedGames = []game.Variant{game.NLH, game.PLO}
	r, err := m.Create("host", cfg, "")
	require.NoError(t, err)

	require.NoError(t, r.SetRotation("host", []game.Variant{game.NLH, game.PLO}, 2))
	assert.Equal(t, game.NLH, r.Config.Variant)

	_, moved := r.AdvanceRotation()
	assert.False(t, moved, "first hand of two does not advance")
	next, moved := r.AdvanceRotation()
	assert.True(t, moved)
	assert.Equal(t, game.PLO, next)
	assert.Equal(t, game.PLO, r.Table.Rules.Variant)

	assert.ErrorIs(t, r.SetVariant("host", game.NLH), ErrRotationActive)
}

func TestPendingConfigAppliesAtBoundary(t *testing.T) {
	m := testManager()
	r, err := m.Create("host", baseConfig(), "")
	require.NoError(t, err)
	require.NoError(t, m.SitDown(r.ID, "p1", "Ann", 0, 500))
	require.NoError(t, m.SitDown(r.ID, "host", "Hank", 1, 500))
	_, err = r.Table.StartHand()
	require.NoError(t, err)

	edit := r.Config
	edit.SmallBlind, edit.BigBlind = 10, 20
	applied, err := r.UpdateConfig("host", edit)
	require.NoError(t, err)
	assert.False(t, applied, "mid-hand edits are parked")
	assert.Equal(t, 5, r.Table.SmallBlind)

	assert.True(t, r.ApplyPendingConfig())
	assert.Equal(t, 10, r.Table.SmallBlind)
	assert.Equal(t, 20, r.Table.BigBlind)
	assert.Nil(t, r.PendingConfig)
}

func sevenDeuceRoom(t *testing.T) *Room {
	t.Helper()
	m := testManager()
	r, err := m.Create("host", baseConfig(), "")
	require.NoError(t, err)
	require.NoError(t, m.SitDown(r.ID, "p0", "Ann", 0, 500))
	require.NoError(t, m.SitDown(r.ID, "p1", "Bob", 1, 500))
	require.NoError(t, m.SitDown(r.ID, "p2", "Cat", 2, 500))
	r.SevenDeuce = true
	return r
}

func TestSevenDeuceBonusPaid(t *testing.T) {
	r := sevenDeuceRoom(t)
	for _, s := range r.Table.Seats {
		s.TotalBet = 50
	}
	r.Table.Seats[0].Hand = card.MustParseAll("7h", "2c")

	res := &game.HandResult{Winners: []game.Winner{{Seat: 0, PlayerID: "p0", Amount: 150}}}
	payout := r.CheckSevenDeuce(res, true)
	require.NotNil(t, payout)
	assert.Equal(t, "p0", payout.WinnerID)
	assert.Equal(t, 20, payout.Amount, "one big blind from each other seat")
	assert.Equal(t, 520, r.Table.Seats[0].Stack)
	assert.Equal(t, 490, r.Table.Seats[1].Stack)
}

func TestSevenDeuceRequiresTheHolding(t *testing.T) {
	r := sevenDeuceRoom(t)
	for _, s := range r.Table.Seats {
		s.TotalBet = 50
	}
	r.Table.Seats[0].Hand = card.MustParseAll("Ah", "Kc")
	res := &game.HandResult{Winners: []game.Winner{{Seat: 0, PlayerID: "p0", Amount: 150}}}
	assert.Nil(t, r.CheckSevenDeuce(res, true))
}

func TestSevenDeuceUncontestedNeedsRaise(t *testing.T) {
	r := sevenDeuceRoom(t)
	for _, s := range r.Table.Seats {
		s.TotalBet = 10
	}
	r.Table.Seats[0].Hand = card.MustParseAll("2d", "7s")
	res := &game.HandResult{
		Winners:     []game.Winner{{Seat: 0, PlayerID: "p0", Amount: 30}},
		Uncontested: true,
	}
	assert.Nil(t, r.CheckSevenDeuce(res, false), "unraised walk pays nothing")
	assert.NotNil(t, r.CheckSevenDeuce(res, true))
}

func TestStandUpGameResolvesToLastUnmarked(t *testing.T) {
	r := sevenDeuceRoom(t)
	r.StandUp = true

	_, done := r.MarkStandUp(&game.HandResult{Winners: []game.Winner{{Seat: 0, PlayerID: "p0"}}})
	assert.False(t, done)
	loser, done := r.MarkStandUp(&game.HandResult{Winners: []game.Winner{{Seat: 1, PlayerID: "p1"}}})
	require.True(t, done)
	assert.Equal(t, "p2", loser)

	for _, s := range r.Table.Seats {
		assert.False(t, s.StoodUp, "markers reset for the next round")
	}
}
