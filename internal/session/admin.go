package session

import (
	"github.com/google/uuid"

	"github.com/cardroomlabs/cardroom/internal/game"
	"github.com/cardroomlabs/cardroom/internal/protocol"
	"github.com/cardroomlabs/cardroom/internal/room"
)

// Seating and host controls run on the room queue so they serialize
// against the hand in progress.

func (c *Controller) sendError(playerID, msg string) {
	c.sender.SendToPlayer(playerID,
		protocol.MustEvent(protocol.EvError, protocol.ErrorPayload{Message: msg}))
}

// HandleSitDown seats a player and hands them a resume token
func (c *Controller) HandleSitDown(playerID, name string, seatIdx, buyIn int) {
	c.Dispatch(func() { c.sitDown(playerID, name, seatIdx, buyIn) })
}

func (c *Controller) sitDown(playerID, name string, seatIdx, buyIn int) {
	if err := c.manager.SitDown(c.room.ID, playerID, name, seatIdx, buyIn); err != nil {
		c.sendError(playerID, err.Error())
		return
	}
	c.afterSeated(playerID, seatIdx)
}

// afterSeated issues the seat's resume token and kicks off the next hand
func (c *Controller) afterSeated(playerID string, seatIdx int) {
	seat := c.room.Table.Seats[seatIdx]
	seat.ResumeToken = uuid.NewString()
	c.sender.SendToPlayer(playerID, protocol.MustEvent(protocol.EvSitDownSuccess,
		protocol.SitDownSuccess{
			RoomID:      c.room.ID,
			SeatIndex:   seatIdx,
			Stack:       seat.Stack,
			ResumeToken: seat.ResumeToken,
		}))
	c.broadcastState()
	c.maybeAutoStart()
}

// HandleQuickJoin seats a player at a random empty seat
func (c *Controller) HandleQuickJoin(playerID, name string, buyIn int) {
	c.Dispatch(func() {
		seatIdx, err := c.manager.QuickJoin(c.room.ID, playerID, name, buyIn)
		if err != nil {
			c.sendError(playerID, err.Error())
			return
		}
		c.afterSeated(playerID, seatIdx)
	})
}

// HandleStandUp vacates a player's seat (or marks it to leave mid-hand)
func (c *Controller) HandleStandUp(playerID string) {
	c.Dispatch(func() {
		if c.room.Table.SeatIndex(playerID) < 0 {
			c.sendError(playerID, room.ErrNotSeated.Error())
			return
		}
		c.standUp(playerID)
	})
}

func (c *Controller) standUp(playerID string) {
	seatIdx := c.room.Table.SeatIndex(playerID)
	if seatIdx < 0 {
		return
	}
	s := c.room.Table.Seats[seatIdx]
	if c.room.InHand() && s.InHand() {
		// Fold now, vacate at the hand boundary.
		s.PendingLeave = true
		if out, err := c.room.Table.ForceFold(seatIdx); err == nil {
			if c.deadline == deadlineTurn && seatIdx == c.turnSeat {
				c.clearDeadline()
			}
			c.handleOutcome(out)
			return
		}
	}
	if err := c.manager.StandUp(c.room.ID, playerID); err != nil {
		c.sendError(playerID, err.Error())
		return
	}
	c.tokens.Revoke(playerID)
	c.broadcastState()
}

// HandleLeaveRoom vacates the player's seat if they hold one, then stops
// their broadcasts.
func (c *Controller) HandleLeaveRoom(playerID string) {
	c.Dispatch(func() {
		c.standUp(playerID)
		delete(c.watchers, playerID)
		c.limiter.Forget(playerID)
	})
}

// HandleRebuy tops up a stack between hands
func (c *Controller) HandleRebuy(playerID string, amount int) {
	c.Dispatch(func() {
		stack, err := c.manager.Rebuy(c.room.ID, playerID, amount)
		if err != nil {
			c.sendError(playerID, err.Error())
			return
		}
		c.logger.Info().Str("player", playerID).Int("stack", stack).Msg("rebuy applied")
		c.broadcastState()
		c.maybeAutoStart()
	})
}

// HandleUpdateConfig stages or applies a host config edit
func (c *Controller) HandleUpdateConfig(playerID string, cfg room.Config) {
	c.Dispatch(func() {
		applied, err := c.room.UpdateConfig(playerID, cfg)
		if err != nil {
			c.sendError(playerID, err.Error())
			return
		}
		if applied {
			c.broadcast(protocol.MustEvent(protocol.EvConfigUpdated, nil))
			c.broadcastState()
		} else {
			c.broadcast(protocol.MustEvent(protocol.EvConfigPending, nil))
		}
	})
}

// HandleSetVariant switches the table's game between hands
func (c *Controller) HandleSetVariant(playerID, variant string) {
	c.Dispatch(func() {
		if err := c.room.SetVariant(playerID, game.Variant(variant)); err != nil {
			c.sendError(playerID, err.Error())
			return
		}
		c.broadcast(protocol.MustEvent(protocol.EvConfigUpdated, nil))
		c.broadcastState()
	})
}

// HandleSetRotation installs a variant rotation
func (c *Controller) HandleSetRotation(playerID string, games []string, handsPerGame int) {
	c.Dispatch(func() {
		variants := make([]game.Variant, len(games))
		for i, g := range games {
			variants[i] = game.Variant(g)
		}
		if err := c.room.SetRotation(playerID, variants, handsPerGame); err != nil {
			c.sendError(playerID, err.Error())
			return
		}
		c.broadcast(protocol.MustEvent(protocol.EvConfigUpdated, nil))
		c.broadcastState()
	})
}

// HandleToggleMetaGame flips a side game on or off
func (c *Controller) HandleToggleMetaGame(playerID, name string, enabled bool) {
	c.Dispatch(func() {
		if err := c.room.ToggleMetaGame(playerID, name, enabled); err != nil {
			c.sendError(playerID, err.Error())
			return
		}
		c.broadcast(protocol.MustEvent(protocol.EvConfigUpdated, nil))
	})
}
