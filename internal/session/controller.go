// Package session drives a room's gameplay: it serializes every mutation
// through a single goroutine, runs turn timers and action tokens, and
// broadcasts sanitized state to connected players.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/cardroomlabs/cardroom/internal/game"
	"github.com/cardroomlabs/cardroom/internal/protocol"
	"github.com/cardroomlabs/cardroom/internal/room"
)

// Sender delivers events to connected players. Implemented by the
// websocket server; sends to unknown or gone players are dropped there.
type Sender interface {
	SendToPlayer(playerID string, env *protocol.Envelope)
}

const (
	timeBankSeconds = 30
	maxTimeouts     = 3

	settleDelay     = 2 * time.Second
	autoStartGrace  = 2 * time.Second
	runoutStepDelay = 1500 * time.Millisecond

	queueDepth = 256
)

// deadlineKind says what the countdown currently guards
type deadlineKind int

const (
	deadlineNone deadlineKind = iota
	deadlineTurn
	deadlineDraw
	deadlineOFC
)

// Controller owns one room's gameplay loop. All game and room mutation
// happens on the Run goroutine; public methods enqueue work and return.
type Controller struct {
	room    *room.Room
	manager *room.Manager
	sender  Sender
	clock   quartz.Clock
	logger  zerolog.Logger

	queue chan func()
	done  chan struct{}

	watchers map[string]string // playerID -> display name

	tokens  *tokenStore
	limiter *rateLimiter

	deadline    deadlineKind
	secondsLeft int
	turnSeat    int
	tickTimer   *quartz.Timer

	// pending paces the between-action delays: auto-start, settle and
	// runout steps. At most one is outstanding.
	pending *quartz.Timer

	// potRaised marks that this hand saw a voluntary bet or raise, which
	// qualifies an uncontested win for the seven-deuce bonus.
	potRaised bool
	lastRound int // OFC round already announced
}

// NewController creates a controller for one room
func NewController(r *room.Room, m *room.Manager, sender Sender, clock quartz.Clock, logger zerolog.Logger) *Controller {
	return &Controller{
		room:     r,
		manager:  m,
		sender:   sender,
		clock:    clock,
		logger:   logger.With().Str("room", r.ID).Logger(),
		queue:    make(chan func(), queueDepth),
		done:     make(chan struct{}),
		watchers: make(map[string]string),
		tokens:   newTokenStore(clock),
		limiter:  newRateLimiter(clock),
		turnSeat: -1,
	}
}

// Run processes the room's work queue until the context is canceled
func (c *Controller) Run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-c.queue:
			c.invoke(fn)
		}
	}
}

// invoke runs one queued task. A panic aborts the current hand and
// refunds the pot rather than poisoning the queue.
func (c *Controller) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("recovered in room queue")
			c.clearDeadline()
			if c.room.Table.State.InProgress() {
				c.room.Table.AbortHand()
			}
			c.room.OFC = nil
			c.broadcast(protocol.MustEvent(protocol.EvError,
				protocol.ErrorPayload{Message: "internal error, hand aborted"}))
			c.broadcastState()
		}
	}()
	fn()
}

// Dispatch enqueues work for the room goroutine
func (c *Controller) Dispatch(fn func()) {
	select {
	case c.queue <- fn:
	case <-c.done:
	}
}

func (c *Controller) broadcast(env *protocol.Envelope) {
	for id := range c.watchers {
		c.sender.SendToPlayer(id, env)
	}
}

// broadcastState sends each watcher their own sanitized snapshot
func (c *Controller) broadcastState() {
	for id := range c.watchers {
		view := buildRoomView(c.room, id)
		c.sender.SendToPlayer(id, protocol.MustEvent(protocol.EvRoomStateUpdate, view))
	}
}

func (c *Controller) actionInvalid(playerID, reason string) {
	c.sender.SendToPlayer(playerID,
		protocol.MustEvent(protocol.EvActionInvalid, protocol.ActionInvalid{Reason: reason}))
}

// Attach subscribes a player to the room's broadcasts
func (c *Controller) Attach(playerID, name string) {
	c.Dispatch(func() {
		c.watchers[playerID] = name
		view := buildRoomView(c.room, playerID)
		c.sender.SendToPlayer(playerID, protocol.MustEvent(protocol.EvRoomJoined, view))
	})
}

// RequestState sends the caller a fresh snapshot
func (c *Controller) RequestState(playerID string) {
	c.Dispatch(func() {
		view := buildRoomView(c.room, playerID)
		c.sender.SendToPlayer(playerID, protocol.MustEvent(protocol.EvRoomStateUpdate, view))
	})
}

// NotifySeated is called after any seating or config change so the room
// can broadcast and, when enough players are ready, schedule a hand.
func (c *Controller) NotifySeated() {
	c.Dispatch(func() {
		c.broadcastState()
		c.maybeAutoStart()
	})
}

// maybeAutoStart schedules a hand start after a short grace period. The
// grace lets a second player finish sitting down before cards fly.
func (c *Controller) maybeAutoStart() {
	if c.room.InHand() || c.room.Table.StartableCount() < 2 {
		return
	}
	c.schedulePending(autoStartGrace, c.startHand)
}

func (c *Controller) schedulePending(d time.Duration, fn func()) {
	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = c.clock.AfterFunc(d, func() { c.Dispatch(fn) })
}

// startHand deals the next hand of whatever variant the room is on
func (c *Controller) startHand() {
	r := c.room
	if r.InHand() || r.Table.StartableCount() < 2 {
		return
	}
	if r.ApplyPendingConfig() {
		c.broadcast(protocol.MustEvent(protocol.EvConfigApplied, nil))
	}
	if r.IsOFC() {
		c.startOFCHand()
		return
	}

	info, err := r.Table.StartHand()
	if err != nil {
		c.logger.Warn().Err(err).Msg("hand start failed")
		return
	}
	c.potRaised = false
	handsDealt.WithLabelValues(string(r.Table.Rules.Variant)).Inc()
	c.logger.Info().Int("hand", info.HandNumber).
		Str("variant", string(r.Table.Rules.Variant)).Msg("hand started")
	c.broadcast(protocol.MustEvent(protocol.EvGameStarted, nil))
	c.broadcastState()

	switch {
	case info.Runout:
		c.announceRunout()
	case info.FirstToAct >= 0:
		c.beginTurn()
	default:
		c.scheduleSettle()
	}
}

// beginTurn prompts the active seat and starts its countdown
func (c *Controller) beginTurn() {
	seat := c.room.Table.Active
	if seat < 0 {
		return
	}
	c.turnSeat = seat
	c.deadline = deadlineTurn
	c.secondsLeft = c.room.Config.TimeLimit
	c.sendTurnPrompt(seat)
	c.startTicking()
}

// sendTurnPrompt issues a fresh action token and tells the seat its
// options. Reconnects get it again without touching the clock.
func (c *Controller) sendTurnPrompt(seat int) {
	t := c.room.Table
	s := t.Seats[seat]
	opts := t.ValidActions(seat)

	actions := make([]string, len(opts.Valid))
	for i, a := range opts.Valid {
		actions[i] = a.String()
	}
	payload := protocol.YourTurn{
		ValidActions:    actions,
		CallAmount:      opts.CallAmount,
		CurrentBet:      t.State.CurrentBet,
		MinRaise:        t.State.MinRaise,
		MaxBet:          opts.MaxBet,
		BetStructure:    opts.Structure.String(),
		IsCapped:        opts.IsCapped,
		RaisesRemaining: opts.RaisesRemaining,
		FixedBetSize:    opts.FixedBetSize,
		Timeout:         c.secondsLeft,
		ActionToken:     c.tokens.Issue(s.ID),
	}
	c.sender.SendToPlayer(s.ID, protocol.MustEvent(protocol.EvYourTurn, payload))
}

func (c *Controller) startTicking() {
	if c.tickTimer != nil {
		c.tickTimer.Stop()
	}
	c.tickTimer = c.clock.AfterFunc(time.Second, func() { c.Dispatch(c.tick) })
}

func (c *Controller) tick() {
	if c.deadline == deadlineNone {
		return
	}
	c.secondsLeft--
	if c.secondsLeft <= 0 {
		kind := c.deadline
		c.clearDeadline()
		switch kind {
		case deadlineTurn:
			c.turnExpired()
		case deadlineDraw:
			c.drawExpired()
		case deadlineOFC:
			c.ofcExpired()
		}
		return
	}
	c.broadcast(protocol.MustEvent(protocol.EvTimerUpdate,
		protocol.TimerUpdate{Seconds: c.secondsLeft}))
	c.startTicking()
}

func (c *Controller) clearDeadline() {
	c.deadline = deadlineNone
	c.turnSeat = -1
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
}

// turnExpired auto-acts for a seat that ran out its clock: check when
// legal, fold otherwise. Three straight timeouts sit the player out.
func (c *Controller) turnExpired() {
	t := c.room.Table
	seat := t.Active
	if seat < 0 {
		return
	}
	s := t.Seats[seat]
	c.tokens.Revoke(s.ID)
	turnTimeouts.Inc()

	opts := t.ValidActions(seat)
	var out *game.Outcome
	var err error
	if opts.Allows(game.ActionCheck) {
		out, err = t.ProcessAction(seat, game.ActionCheck, 0)
	} else {
		out, err = t.ForceFold(seat)
	}
	if err != nil {
		c.logger.Error().Err(err).Int("seat", seat).Msg("timeout auto-action failed")
		return
	}
	s.ConsecutiveTimeouts++
	if s.ConsecutiveTimeouts >= maxTimeouts {
		s.PendingSitOut = true
		c.logger.Info().Str("player", s.ID).Msg("sitting out after repeated timeouts")
	}
	c.handleOutcome(out)
}

// HandleAction processes a betting action from a client
func (c *Controller) HandleAction(playerID string, act protocol.PlayerAction) {
	c.Dispatch(func() { c.handleAction(playerID, act) })
}

func (c *Controller) handleAction(playerID string, act protocol.PlayerAction) {
	if !c.limiter.Allow(playerID) {
		c.actionInvalid(playerID, ErrRateLimited.Error())
		return
	}
	t := c.room.Table
	seat := t.SeatIndex(playerID)
	if seat < 0 || c.deadline != deadlineTurn || seat != t.Active {
		c.actionInvalid(playerID, "not your turn")
		return
	}
	if err := c.tokens.Consume(playerID, act.ActionToken); err != nil {
		c.actionInvalid(playerID, err.Error())
		c.beginTurn()
		return
	}
	action, ok := game.ParseAction(act.Type)
	if !ok {
		c.actionInvalid(playerID, "unknown action "+act.Type)
		c.beginTurn()
		return
	}

	prevBet := t.State.CurrentBet
	out, err := t.ProcessAction(seat, action, act.Amount)
	if err != nil {
		if errors.Is(err, game.ErrHandAborted) {
			c.abortFlow()
			return
		}
		c.actionInvalid(playerID, err.Error())
		// A rejection restarts the seat's turn from the top: full clock,
		// fresh token.
		c.beginTurn()
		return
	}
	t.Seats[seat].ConsecutiveTimeouts = 0
	if t.State.CurrentBet > prevBet {
		c.potRaised = true
	}
	c.clearDeadline()
	c.handleOutcome(out)
}

// handleOutcome routes the engine's report into the next session step
func (c *Controller) handleOutcome(out *game.Outcome) {
	c.broadcastState()
	switch {
	case out.RunoutStarted:
		c.announceRunout()
	case out.HandOver:
		c.clearDeadline()
		c.scheduleSettle()
	case out.DrawStarted:
		c.beginDrawPhase()
	default:
		if c.room.Table.State.IsDrawPhase {
			return // still collecting draws
		}
		if c.room.Table.Active >= 0 {
			c.beginTurn()
		}
	}
}

// beginDrawPhase opens a draw round: every live seat owes an exchange
// (or a stand pat) before the clock runs out.
func (c *Controller) beginDrawPhase() {
	c.deadline = deadlineDraw
	c.secondsLeft = c.room.Config.TimeLimit
	c.startTicking()
}

// HandleDraw processes a draw exchange from a client
func (c *Controller) HandleDraw(playerID string, indexes []int) {
	c.Dispatch(func() { c.handleDraw(playerID, indexes) })
}

func (c *Controller) handleDraw(playerID string, indexes []int) {
	if !c.limiter.Allow(playerID) {
		c.actionInvalid(playerID, ErrRateLimited.Error())
		return
	}
	t := c.room.Table
	seat := t.SeatIndex(playerID)
	if seat < 0 {
		c.actionInvalid(playerID, "not seated")
		return
	}
	out, err := t.SubmitDraw(seat, indexes)
	if err != nil {
		if errors.Is(err, game.ErrHandAborted) {
			c.abortFlow()
			return
		}
		c.actionInvalid(playerID, err.Error())
		return
	}
	c.sender.SendToPlayer(playerID, protocol.MustEvent(protocol.EvDrawComplete,
		protocol.DrawComplete{Cards: cardStrings(out.Drawn)}))
	c.broadcast(protocol.MustEvent(protocol.EvPlayerDrew,
		protocol.PlayerDrew{Seat: seat, Count: len(indexes)}))
	if out.AllDone {
		c.finishDraws(out)
	}
}

// drawExpired stands pat for every seat that never answered
func (c *Controller) drawExpired() {
	t := c.room.Table
	if !t.State.IsDrawPhase {
		return
	}
	final := &game.DrawOutcome{}
	for i, s := range t.Seats {
		if s == nil || !s.InHand() {
			continue
		}
		out, err := t.SubmitDraw(i, nil)
		if err != nil {
			continue // already drawn
		}
		c.broadcast(protocol.MustEvent(protocol.EvPlayerDrew,
			protocol.PlayerDrew{Seat: i, Count: 0}))
		if out.AllDone {
			// A follow-up draw phase gets its own clock; stop standing
			// pat on its behalf.
			final = out
			break
		}
	}
	c.finishDraws(final)
}

func (c *Controller) finishDraws(out *game.DrawOutcome) {
	c.clearDeadline()
	c.broadcastState()
	switch {
	case out.HandOver:
		c.scheduleSettle()
	case out.DrawStarted:
		c.beginDrawPhase()
	default:
		c.beginTurn()
	}
}

// announceRunout reveals the remaining hands and starts the paced board
// dealing.
func (c *Controller) announceRunout() {
	t := c.room.Table
	c.clearDeadline()
	c.broadcast(protocol.MustEvent(protocol.EvRunoutStarted, protocol.RunoutStarted{
		RunoutPhase:   t.State.RunoutPhase.String(),
		FullBoard:     cardStrings(t.State.Board),
		RevealedHands: revealedHands(t),
	}))
	c.schedulePending(runoutStepDelay, c.runoutStep)
}

func (c *Controller) runoutStep() {
	t := c.room.Table
	info, err := t.RunoutStep()
	if err != nil {
		c.abortFlow()
		return
	}
	c.broadcast(protocol.MustEvent(protocol.EvRunoutBoard, protocol.RunoutBoard{
		Board: cardStrings(info.Board),
		Phase: info.Phase.String(),
	}))
	c.broadcastState()
	if info.Done {
		c.scheduleSettle()
		return
	}
	c.schedulePending(runoutStepDelay, c.runoutStep)
}

func (c *Controller) scheduleSettle() {
	c.schedulePending(settleDelay, c.settle)
}

// settle resolves the pot, runs the side games and closes out the hand
func (c *Controller) settle() {
	r := c.room
	t := r.Table
	res, err := t.Settle()
	if err != nil {
		c.logger.Error().Err(err).Msg("settle failed")
		return
	}
	c.broadcast(protocol.MustEvent(protocol.EvShowdownResult, showdownPayload(t, res)))

	if bonus := r.CheckSevenDeuce(res, c.potRaised); bonus != nil {
		c.broadcast(protocol.MustEvent(protocol.EvSevenDeuceBonus,
			protocol.SevenDeuceBonus{Winner: bonus.WinnerID, Amount: bonus.Amount}))
	}
	if loser, done := r.MarkStandUp(res); done {
		c.broadcast(protocol.MustEvent(protocol.EvStandUpResult,
			protocol.StandUpResult{Loser: loser}))
	}

	c.finishHand(t.ApplyPendingTransitions())
}

// finishHand applies boundary transitions and queues the next hand
func (c *Controller) finishHand(removed []string) {
	r := c.room
	for _, id := range removed {
		c.tokens.Revoke(id)
	}
	if next, moved := r.AdvanceRotation(); moved {
		games := make([]string, len(r.Rotation.Games))
		for i, v := range r.Rotation.Games {
			games[i] = string(v)
		}
		c.broadcast(protocol.MustEvent(protocol.EvNextGame,
			protocol.NextGame{NextGame: string(next), GamesList: games}))
	}
	c.broadcastState()

	if r.Table.OccupiedSeats() == 0 && !r.Preset {
		c.manager.Delete(r.ID)
		return
	}
	c.maybeAutoStart()
}

// abortFlow recovers from an engine integrity failure mid-hand
func (c *Controller) abortFlow() {
	c.clearDeadline()
	c.broadcast(protocol.MustEvent(protocol.EvError,
		protocol.ErrorPayload{Message: "hand aborted, pot refunded"}))
	c.broadcastState()
	c.maybeAutoStart()
}

func showdownPayload(t *game.Table, res *game.HandResult) protocol.ShowdownResult {
	out := protocol.ShowdownResult{
		Uncontested: res.Uncontested,
		PotTotal:    res.PotTotal,
	}
	for _, w := range res.Winners {
		out.Winners = append(out.Winners, protocol.ShowdownWinner{
			Seat: w.Seat, PlayerID: w.PlayerID, Amount: w.Amount, Desc: w.Desc,
		})
	}
	for _, a := range res.Awards {
		out.Pots = append(out.Pots, protocol.PotResult{
			Amount:    a.Amount,
			HighSeats: a.HighSeats,
			LowSeats:  a.LowSeats,
			HighDesc:  a.HighDesc,
			LowDesc:   a.LowDesc,
		})
	}
	if len(res.Revealed) > 0 {
		out.Revealed = make(map[string][]string, len(res.Revealed))
		for seat, cards := range res.Revealed {
			if s := t.Seats[seat]; s != nil {
				out.Revealed[s.ID] = cardStrings(cards)
			}
		}
	}
	return out
}

// HandleTimeBank spends one time-bank chip to extend the current turn
func (c *Controller) HandleTimeBank(playerID string) {
	c.Dispatch(func() {
		t := c.room.Table
		seat := t.SeatIndex(playerID)
		if seat < 0 || c.deadline != deadlineTurn || seat != c.turnSeat {
			c.actionInvalid(playerID, "no turn to extend")
			return
		}
		s := t.Seats[seat]
		if s.TimeBank <= 0 {
			c.actionInvalid(playerID, "no time-bank chips left")
			return
		}
		s.TimeBank--
		c.secondsLeft += timeBankSeconds
		c.sender.SendToPlayer(playerID, protocol.MustEvent(protocol.EvTimebankUpdate,
			protocol.TimebankUpdate{Chips: s.TimeBank}))
		c.broadcast(protocol.MustEvent(protocol.EvTimerUpdate,
			protocol.TimerUpdate{Seconds: c.secondsLeft}))
	})
}

// HandleImBack returns a sitting-out player to the action
func (c *Controller) HandleImBack(playerID string) {
	c.Dispatch(func() {
		t := c.room.Table
		seat := t.SeatIndex(playerID)
		if seat < 0 {
			c.actionInvalid(playerID, "not seated")
			return
		}
		s := t.Seats[seat]
		s.PendingSitOut = false
		s.ConsecutiveTimeouts = 0
		if s.Status == game.StatusSitOut {
			s.PendingJoin = true
			s.WaitingForBB = false
		}
		c.broadcastState()
		c.maybeAutoStart()
	})
}

// PlayerDisconnected reacts to a dropped connection: a seat on turn is
// folded at once, a live seat off turn is folded and marked to leave,
// and an idle seat stands up immediately.
func (c *Controller) PlayerDisconnected(playerID string) {
	c.Dispatch(func() {
		t := c.room.Table
		seat := t.SeatIndex(playerID)
		if seat < 0 {
			delete(c.watchers, playerID)
			c.limiter.Forget(playerID)
			return
		}
		s := t.Seats[seat]
		s.Disconnected = true
		c.tokens.Revoke(playerID)

		if c.room.InHand() && s.InHand() {
			if seat != t.Active {
				s.PendingLeave = true
			}
			if c.deadline == deadlineTurn && seat == c.turnSeat {
				c.clearDeadline()
			}
			out, err := t.ForceFold(seat)
			if err == nil {
				c.handleOutcome(out)
			}
			return
		}
		if err := c.manager.StandUp(c.room.ID, playerID); err == nil {
			c.broadcastState()
		}
	})
}

// PlayerResumed rebinds a reconnected player to their seat
func (c *Controller) PlayerResumed(playerID string) {
	c.Dispatch(func() {
		t := c.room.Table
		seat := t.SeatIndex(playerID)
		if seat < 0 {
			return
		}
		t.Seats[seat].Disconnected = false
		view := buildRoomView(c.room, playerID)
		c.sender.SendToPlayer(playerID, protocol.MustEvent(protocol.EvRoomStateUpdate, view))
		if c.deadline == deadlineTurn && seat == c.turnSeat {
			c.sendTurnPrompt(seat)
		}
		c.broadcastState()
	})
}
