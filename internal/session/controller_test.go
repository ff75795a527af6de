package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroomlabs/cardroom/internal/game"
	"github.com/cardroomlabs/cardroom/internal/protocol"
	"github.com/cardroomlabs/cardroom/internal/room"
)

type fakeSender struct {
	mu     sync.Mutex
	events map[string][]*protocol.Envelope
}

func newFakeSender() *fakeSender {
	return &fakeSender{events: make(map[string][]*protocol.Envelope)}
}

func (f *fakeSender) SendToPlayer(id string, env *protocol.Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[id] = append(f.events[id], env)
}

// last returns the most recent event of a kind sent to a player
func (f *fakeSender) last(id, event string) *protocol.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	evs := f.events[id]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Event == event {
			return evs[i]
		}
	}
	return nil
}

func (f *fakeSender) count(id, event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, env := range f.events[id] {
		if env.Event == event {
			n++
		}
	}
	return n
}

// drain runs queued work synchronously; tests never start Run
func drain(c *Controller) {
	for {
		select {
		case fn := <-c.queue:
			c.invoke(fn)
		default:
			return
		}
	}
}

// advance moves the mock clock and processes whatever it triggered
func advance(t *testing.T, c *Controller, clock *quartz.Mock, d time.Duration) {
	t.Helper()
	for d > 0 {
		step := d
		if next, ok := clock.Peek(); ok && next < step {
			step = next
		}
		clock.Advance(step).MustWait(context.Background())
		drain(c)
		d -= step
	}
}

func testController(t *testing.T, variant game.Variant) (*Controller, *fakeSender, *quartz.Mock, *room.Room) {
	t.Helper()
	m := room.NewManager(zerolog.Nop())
	cfg := room.Config{SmallBlind: 5, BigBlind: 10, Variant: variant}
	r, err := m.Create("p0", cfg, "")
	require.NoError(t, err)
	require.NoError(t, m.SitDown(r.ID, "p0", "Ann", 0, 500))
	require.NoError(t, m.SitDown(r.ID, "p1", "Bob", 1, 500))

	sender := newFakeSender()
	clock := quartz.NewMock(t)
	c := NewController(r, m, sender, clock, zerolog.Nop())
	c.watchers["p0"] = "Ann"
	c.watchers["p1"] = "Bob"
	return c, sender, clock, r
}

// startHand gets past the auto-start grace period
func startHand(t *testing.T, c *Controller, clock *quartz.Mock) {
	t.Helper()
	c.NotifySeated()
	drain(c)
	advance(t, c, clock, autoStartGrace)
	require.True(t, c.room.InHand(), "hand should start after the grace period")
}

func activePlayer(c *Controller) (string, int) {
	seat := c.room.Table.Active
	return c.room.Table.Seats[seat].ID, seat
}

func turnToken(t *testing.T, sender *fakeSender, playerID string) string {
	t.Helper()
	env := sender.last(playerID, protocol.EvYourTurn)
	require.NotNil(t, env, "expected a your-turn prompt for %s", playerID)
	var yt protocol.YourTurn
	require.NoError(t, protocol.Decode(env, &yt))
	return yt.ActionToken
}

func TestTokenSingleUse(t *testing.T) {
	clock := quartz.NewMock(t)
	ts := newTokenStore(clock)
	tok := ts.Issue("p0")

	require.NoError(t, ts.Consume("p0", tok))
	assert.ErrorIs(t, ts.Consume("p0", tok), ErrBadToken, "tokens are single use")
	ts.Issue("p0")
	assert.ErrorIs(t, ts.Consume("p0", "bogus"), ErrBadToken)
}

func TestTokenExpiry(t *testing.T) {
	clock := quartz.NewMock(t)
	ts := newTokenStore(clock)
	tok := ts.Issue("p0")
	clock.Advance(tokenTTL + time.Second).MustWait(context.Background())
	assert.ErrorIs(t, ts.Consume("p0", tok), ErrTokenExpired)
}

func TestRateLimiterWindow(t *testing.T) {
	clock := quartz.NewMock(t)
	rl := newRateLimiter(clock)
	for i := 0; i < rateLimit; i++ {
		assert.True(t, rl.Allow("p0"))
	}
	assert.False(t, rl.Allow("p0"), "seventh action inside the window is dropped")

	clock.Advance(rateWindow + time.Millisecond).MustWait(context.Background())
	assert.True(t, rl.Allow("p0"), "window slides")
}

func TestAutoStartAndTurnPrompt(t *testing.T) {
	c, sender, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	assert.Equal(t, 2, sender.count("p0", protocol.EvGameStarted)+sender.count("p1", protocol.EvGameStarted))
	id, _ := activePlayer(c)
	env := sender.last(id, protocol.EvYourTurn)
	require.NotNil(t, env)
	var yt protocol.YourTurn
	require.NoError(t, protocol.Decode(env, &yt))
	assert.NotEmpty(t, yt.ActionToken)
	assert.Equal(t, r.Config.TimeLimit, yt.Timeout)
	assert.Contains(t, yt.ValidActions, "CALL")
}

func TestActionWithValidToken(t *testing.T) {
	c, sender, clock, _ := testController(t, game.NLH)
	startHand(t, c, clock)

	id, _ := activePlayer(c)
	tok := turnToken(t, sender, id)
	c.HandleAction(id, protocol.PlayerAction{Type: "CALL", ActionToken: tok})
	drain(c)

	assert.Zero(t, sender.count(id, protocol.EvActionInvalid))
	next, _ := activePlayer(c)
	assert.NotEqual(t, id, next, "action passes to the other seat")
	assert.NotNil(t, sender.last(next, protocol.EvYourTurn))
}

func TestActionRejectedWithBadToken(t *testing.T) {
	c, sender, clock, _ := testController(t, game.NLH)
	startHand(t, c, clock)

	id, _ := activePlayer(c)
	before := sender.count(id, protocol.EvYourTurn)
	c.HandleAction(id, protocol.PlayerAction{Type: "CALL", ActionToken: "stale"})
	drain(c)

	assert.Equal(t, 1, sender.count(id, protocol.EvActionInvalid))
	assert.Equal(t, before+1, sender.count(id, protocol.EvYourTurn), "seat is re-armed with a fresh token")
	assert.True(t, c.room.InHand())
}

func TestActionRateLimited(t *testing.T) {
	c, sender, clock, _ := testController(t, game.NLH)
	startHand(t, c, clock)

	id, _ := activePlayer(c)
	for i := 0; i < rateLimit+1; i++ {
		c.HandleAction(id, protocol.PlayerAction{Type: "CALL", ActionToken: "x"})
	}
	drain(c)
	env := sender.last(id, protocol.EvActionInvalid)
	require.NotNil(t, env)
	var inv protocol.ActionInvalid
	require.NoError(t, protocol.Decode(env, &inv))
	assert.Equal(t, "too many actions", inv.Reason)
}

func TestRejectionRestartsTurnClock(t *testing.T) {
	c, sender, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	id, _ := activePlayer(c)
	advance(t, c, clock, 10*time.Second)
	require.Equal(t, r.Config.TimeLimit-10, c.secondsLeft)

	// A stale token gets the seat a full clock again, not the remainder.
	c.HandleAction(id, protocol.PlayerAction{Type: "CALL", ActionToken: "stale"})
	drain(c)
	assert.Equal(t, r.Config.TimeLimit, c.secondsLeft)
	env := sender.last(id, protocol.EvYourTurn)
	require.NotNil(t, env)
	var yt protocol.YourTurn
	require.NoError(t, protocol.Decode(env, &yt))
	assert.Equal(t, r.Config.TimeLimit, yt.Timeout)

	// Same for an engine rejection, here a raise below the minimum.
	tok := turnToken(t, sender, id)
	advance(t, c, clock, 5*time.Second)
	c.HandleAction(id, protocol.PlayerAction{Type: "RAISE", Amount: 2, ActionToken: tok})
	drain(c)
	assert.Equal(t, r.Config.TimeLimit, c.secondsLeft)
	assert.True(t, c.room.InHand())
}

func TestTimerTicksBroadcast(t *testing.T) {
	c, sender, clock, _ := testController(t, game.NLH)
	startHand(t, c, clock)

	advance(t, c, clock, time.Second)
	env := sender.last("p1", protocol.EvTimerUpdate)
	require.NotNil(t, env)
	var tu protocol.TimerUpdate
	require.NoError(t, protocol.Decode(env, &tu))
	assert.Equal(t, 29, tu.Seconds)
}

func TestTimeoutFoldsWhenFacingBet(t *testing.T) {
	c, sender, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	id, seat := activePlayer(c)
	for i := 0; i < r.Config.TimeLimit; i++ {
		advance(t, c, clock, time.Second)
	}
	// Preflop the small blind faces the big blind and cannot check.
	assert.Equal(t, game.StatusFolded, r.Table.Seats[seat].Status)
	assert.Equal(t, 1, r.Table.Seats[seat].ConsecutiveTimeouts)
	_ = id

	// Uncontested settle fires after the end-of-hand delay.
	advance(t, c, clock, settleDelay)
	require.NotNil(t, sender.last("p1", protocol.EvShowdownResult))
	assert.False(t, r.Table.State.InProgress())
}

func TestThirdTimeoutSitsPlayerOut(t *testing.T) {
	c, _, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	_, seat := activePlayer(c)
	r.Table.Seats[seat].ConsecutiveTimeouts = maxTimeouts - 1
	for i := 0; i < r.Config.TimeLimit; i++ {
		advance(t, c, clock, time.Second)
	}
	assert.True(t, r.Table.Seats[seat].PendingSitOut)
}

func TestTimeBankExtendsTurn(t *testing.T) {
	c, sender, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	id, seat := activePlayer(c)
	advance(t, c, clock, 5*time.Second)
	c.HandleTimeBank(id)
	drain(c)

	assert.Equal(t, 4, r.Table.Seats[seat].TimeBank)
	assert.Equal(t, 25+timeBankSeconds, c.secondsLeft)
	env := sender.last(id, protocol.EvTimebankUpdate)
	require.NotNil(t, env)
	var tb protocol.TimebankUpdate
	require.NoError(t, protocol.Decode(env, &tb))
	assert.Equal(t, 4, tb.Chips)
}

func TestTimeBankRejectedOffTurn(t *testing.T) {
	c, sender, clock, _ := testController(t, game.NLH)
	startHand(t, c, clock)

	id, _ := activePlayer(c)
	other := "p0"
	if id == "p0" {
		other = "p1"
	}
	c.HandleTimeBank(other)
	drain(c)
	assert.Equal(t, 1, sender.count(other, protocol.EvActionInvalid))
}

func TestDisconnectOnTurnFolds(t *testing.T) {
	c, _, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	id, seat := activePlayer(c)
	c.PlayerDisconnected(id)
	drain(c)

	assert.Equal(t, game.StatusFolded, r.Table.Seats[seat].Status)
	assert.True(t, r.Table.Seats[seat].Disconnected)
	assert.False(t, r.Table.State.InProgress(), "heads-up fold ends the hand")
}

func TestDisconnectIdleStandsUp(t *testing.T) {
	c, _, _, r := testController(t, game.NLH)
	c.PlayerDisconnected("p1")
	drain(c)
	assert.Equal(t, 1, r.Table.OccupiedSeats())
}

func TestResumeRearmsTurn(t *testing.T) {
	c, sender, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	id, seat := activePlayer(c)
	r.Table.Seats[seat].Disconnected = true
	before := sender.count(id, protocol.EvYourTurn)
	c.PlayerResumed(id)
	drain(c)

	assert.False(t, r.Table.Seats[seat].Disconnected)
	assert.Equal(t, before+1, sender.count(id, protocol.EvYourTurn))
}

func TestHandPlaysToSettlement(t *testing.T) {
	c, sender, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	// Play a full checked-down hand: call, then check every street.
	for rounds := 0; rounds < 20 && r.Table.State.InProgress(); rounds++ {
		id, _ := activePlayer(c)
		tok := turnToken(t, sender, id)
		act := "CHECK"
		opts := r.Table.ValidActions(r.Table.Active)
		if !opts.Allows(game.ActionCheck) {
			act = "CALL"
		}
		c.HandleAction(id, protocol.PlayerAction{Type: act, ActionToken: tok})
		drain(c)
		if !r.Table.State.InProgress() && r.Table.State.Phase == game.PhaseShowdown {
			break
		}
	}
	advance(t, c, clock, settleDelay)
	require.NotNil(t, sender.last("p0", protocol.EvShowdownResult))
	total := r.Table.Seats[0].Stack + r.Table.Seats[1].Stack
	assert.Equal(t, 1000, total, "chips conserved through settlement")

	// The next hand schedules itself.
	advance(t, c, clock, autoStartGrace)
	assert.True(t, r.Table.State.InProgress())
}

func TestViewHidesOtherHands(t *testing.T) {
	c, _, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	view := buildRoomView(r, "p0")
	for _, sv := range view.Seats {
		if sv.PlayerID == "p0" {
			assert.Len(t, sv.Hand, 2, "viewer sees their own cards")
		} else {
			assert.Nil(t, sv.Hand, "other hole cards are stripped")
		}
	}
	assert.False(t, view.HasPassword)
}

func TestOFCHandAutoPlaysToScoring(t *testing.T) {
	c, sender, clock, r := testController(t, game.OFC)
	startHand(t, c, clock)

	require.NotNil(t, r.OFC)
	env := sender.last("p0", protocol.EvOFCDeal)
	require.NotNil(t, env)
	var deal protocol.OFCDeal
	require.NoError(t, protocol.Decode(env, &deal))
	assert.Len(t, deal.Cards, 5)

	// Let every placement deadline lapse; auto-placement walks the hand
	// through all five rounds and into scoring.
	for i := 0; i < 400 && r.OFC != nil; i++ {
		advance(t, c, clock, time.Second)
	}
	require.Nil(t, r.OFC, "hand should score out")

	env = sender.last("p1", protocol.EvOFCScoring)
	require.NotNil(t, env)
	var scoring protocol.OFCScoring
	require.NoError(t, protocol.Decode(env, &scoring))
	require.Len(t, scoring.Seats, 2)
	assert.Equal(t, 0, scoring.Seats[0].Points+scoring.Seats[1].Points)
}

func TestOFCTimeoutsCountTowardSitOut(t *testing.T) {
	c, _, clock, r := testController(t, game.OFC)
	startHand(t, c, clock)
	require.NotNil(t, r.OFC)

	seat0 := r.Table.Seats[r.Table.SeatIndex("p0")]
	seat0.ConsecutiveTimeouts = maxTimeouts - 1
	before := testutil.ToFloat64(turnTimeouts)

	// Let the opening placement deadline lapse: both stalled players are
	// auto-placed and charged a timeout each.
	for i := 0; i < r.Config.TimeLimit; i++ {
		advance(t, c, clock, time.Second)
	}
	assert.Equal(t, maxTimeouts, seat0.ConsecutiveTimeouts)
	assert.True(t, seat0.PendingSitOut)
	seat1 := r.Table.Seats[r.Table.SeatIndex("p1")]
	assert.Equal(t, 1, seat1.ConsecutiveTimeouts)
	assert.Equal(t, before+2, testutil.ToFloat64(turnTimeouts))
}

func TestPanicInQueueAbortsHand(t *testing.T) {
	c, sender, clock, r := testController(t, game.NLH)
	startHand(t, c, clock)

	c.Dispatch(func() { panic("boom") })
	drain(c)

	assert.False(t, r.Table.State.InProgress(), "panic aborts the hand")
	assert.Equal(t, 500, r.Table.Seats[0].Stack, "pot refunded")
	require.NotNil(t, sender.last("p0", protocol.EvError))
}
