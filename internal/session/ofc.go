package session

import (
	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/cardroomlabs/cardroom/internal/game"
	"github.com/cardroomlabs/cardroom/internal/ofc"
	"github.com/cardroomlabs/cardroom/internal/protocol"
)

func (c *Controller) ofcError(playerID, msg string) {
	c.sender.SendToPlayer(playerID,
		protocol.MustEvent(protocol.EvOFCError, protocol.ErrorPayload{Message: msg}))
}

// startOFCHand deals an OFC hand among the startable seats
func (c *Controller) startOFCHand() {
	r := c.room
	var ids []string
	for _, s := range r.Table.Seats {
		if game.Startable(s) {
			ids = append(ids, s.ID)
			if s.Status == game.StatusSitOut {
				s.Status = game.StatusActive
				s.PendingJoin = false
			}
		}
	}
	if len(ids) < 2 {
		return
	}

	fantasy := make(map[string]bool)
	for _, id := range ids {
		if r.FantasyNext[id] {
			fantasy[id] = true
		}
	}
	g, err := ofc.NewGame(ids, fantasy, r.Table.BigBlind, ofc.WithLogger(c.logger))
	if err != nil {
		c.logger.Error().Err(err).Msg("ofc hand start failed")
		return
	}
	if err := g.Start(); err != nil {
		c.logger.Error().Err(err).Msg("ofc deal failed")
		return
	}
	r.OFC = g
	c.lastRound = 1
	handsDealt.WithLabelValues(string(game.OFC)).Inc()
	c.logger.Info().Int("players", len(ids)).Msg("ofc hand started")

	c.broadcast(protocol.MustEvent(protocol.EvGameStarted, nil))
	for _, p := range g.Players {
		c.sendOFCDeal(p)
	}
	c.broadcastState()
	c.beginOFCClock()
}

func (c *Controller) sendOFCDeal(p *ofc.Player) {
	c.sender.SendToPlayer(p.ID, protocol.MustEvent(protocol.EvOFCDeal, protocol.OFCDeal{
		Round: c.room.OFC.Round,
		Cards: cardStrings(p.CurrentCards),
	}))
}

func (c *Controller) beginOFCClock() {
	c.deadline = deadlineOFC
	c.secondsLeft = c.room.Config.TimeLimit
	c.startTicking()
}

// HandleOFCPlace processes a placement submission
func (c *Controller) HandleOFCPlace(playerID string, msg protocol.OFCPlaceCards) {
	c.Dispatch(func() { c.handleOFCPlace(playerID, msg) })
}

func (c *Controller) handleOFCPlace(playerID string, msg protocol.OFCPlaceCards) {
	if !c.limiter.Allow(playerID) {
		c.ofcError(playerID, ErrRateLimited.Error())
		return
	}
	g := c.room.OFC
	if g == nil {
		c.ofcError(playerID, "no hand in progress")
		return
	}

	placements := make([]ofc.Placement, 0, len(msg.Placements))
	for _, pl := range msg.Placements {
		cd, err := card.Parse(pl.Card)
		if err != nil {
			c.ofcError(playerID, err.Error())
			return
		}
		row, ok := ofc.ParseRow(pl.Row)
		if !ok {
			c.ofcError(playerID, "unknown row "+pl.Row)
			return
		}
		placements = append(placements, ofc.Placement{Card: cd, Row: row})
	}
	var discard *card.Card
	if msg.DiscardCard != "" {
		cd, err := card.Parse(msg.DiscardCard)
		if err != nil {
			c.ofcError(playerID, err.Error())
			return
		}
		discard = &cd
	}

	if err := g.Place(playerID, placements, discard); err != nil {
		c.ofcError(playerID, err.Error())
		return
	}
	if idx := c.room.Table.SeatIndex(playerID); idx >= 0 {
		c.room.Table.Seats[idx].ConsecutiveTimeouts = 0
	}
	c.afterOFCPlacement()
}

// afterOFCPlacement advances the session after a committed placement:
// announce round changes, deal the next turn, or score the hand.
func (c *Controller) afterOFCPlacement() {
	g := c.room.OFC
	c.broadcastState()

	if g.Phase == ofc.PhaseScoring {
		c.clearDeadline()
		c.finishOFCHand()
		return
	}
	if g.Round != c.lastRound {
		c.lastRound = g.Round
		c.broadcast(protocol.MustEvent(protocol.EvOFCRoundComplete, nil))
	}
	if g.Phase == ofc.PhasePineapplePlacing && g.Turn >= 0 {
		c.sendOFCDeal(g.Players[g.Turn])
		c.beginOFCClock()
	}
}

// ofcExpired auto-places for whoever stalled: pending openers in round
// one, the seat on turn afterwards. Stalls count toward the sit-out rule
// the same as betting-game timeouts.
func (c *Controller) ofcExpired() {
	g := c.room.OFC
	if g == nil {
		return
	}
	switch g.Phase {
	case ofc.PhaseInitialPlacing:
		for _, p := range g.Players {
			if !p.HasPlaced {
				c.ofcTimedOut(p)
			}
		}
	case ofc.PhasePineapplePlacing:
		if g.Turn >= 0 {
			c.ofcTimedOut(g.Players[g.Turn])
		}
	default:
		return
	}
	c.afterOFCPlacement()
}

// ofcTimedOut charges a stalled player one timeout, then auto-places
func (c *Controller) ofcTimedOut(p *ofc.Player) {
	turnTimeouts.Inc()
	if idx := c.room.Table.SeatIndex(p.ID); idx >= 0 {
		s := c.room.Table.Seats[idx]
		s.ConsecutiveTimeouts++
		if s.ConsecutiveTimeouts >= maxTimeouts {
			s.PendingSitOut = true
			c.logger.Info().Str("player", s.ID).Msg("sitting out after repeated timeouts")
		}
	}
	c.autoPlace(p)
}

// autoPlace fills a stalled player's cards bottom-up, discarding the
// leftover when the round requires one.
func (c *Controller) autoPlace(p *ofc.Player) {
	g := c.room.OFC
	cards := p.CurrentCards
	if len(cards) == 0 {
		return
	}

	keep := cards
	var discard *card.Card
	switch {
	case g.Phase == ofc.PhasePineapplePlacing:
		keep = cards[:2]
		discard = &cards[2]
	case p.IsFantasyland:
		keep = cards[:len(cards)-1]
		discard = &cards[len(cards)-1]
	}

	bottom, middle, top := len(p.Board.Bottom), len(p.Board.Middle), len(p.Board.Top)
	placements := make([]ofc.Placement, 0, len(keep))
	for _, cd := range keep {
		switch {
		case bottom < 5:
			placements = append(placements, ofc.Placement{Card: cd, Row: ofc.RowBottom})
			bottom++
		case middle < 5:
			placements = append(placements, ofc.Placement{Card: cd, Row: ofc.RowMiddle})
			middle++
		default:
			placements = append(placements, ofc.Placement{Card: cd, Row: ofc.RowTop})
			top++
		}
	}
	if err := g.Place(p.ID, placements, discard); err != nil {
		c.logger.Error().Err(err).Str("player", p.ID).Msg("ofc auto-place failed")
	}
}

// finishOFCHand scores the boards, settles chips against the table
// stacks and records fantasyland entitlements.
func (c *Controller) finishOFCHand() {
	r := c.room
	g := r.OFC
	res, err := g.Score()
	if err != nil {
		c.logger.Error().Err(err).Msg("ofc scoring failed")
		r.OFC = nil
		return
	}

	payload := protocol.OFCScoring{}
	for _, sc := range res.Seats {
		idx := r.Table.SeatIndex(sc.PlayerID)
		if idx >= 0 {
			s := r.Table.Seats[idx]
			s.Stack += sc.Chips
			if s.Stack < 0 {
				s.Stack = 0
			}
		}
		r.FantasyNext[sc.PlayerID] = sc.FantasyNext
		payload.Seats = append(payload.Seats, protocol.OFCSeatScore{
			PlayerID:  sc.PlayerID,
			Fouled:    sc.Fouled,
			Royalties: sc.Royalties,
			Points:    sc.Points,
			Chips:     sc.Chips,
			Fantasy:   sc.FantasyNext,
		})
	}
	c.broadcast(protocol.MustEvent(protocol.EvOFCScoring, payload))
	r.OFC = nil

	c.finishHand(r.Table.ApplyPendingTransitions())
}
