// Package server exposes the cardroom over websockets: one connection
// per player, events routed onto per-room session queues.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cardroomlabs/cardroom/internal/protocol"
	"github.com/cardroomlabs/cardroom/internal/room"
	"github.com/cardroomlabs/cardroom/internal/session"
)

// Server owns the connection registry and the per-room controllers
type Server struct {
	cfg     *Config
	logger  *log.Logger
	zlog    zerolog.Logger
	manager *room.Manager
	clock   quartz.Clock

	upgrader websocket.Upgrader

	register   chan *Connection
	unregister chan *Connection

	mu          sync.RWMutex
	conns       map[string]*Connection
	controllers map[string]*session.Controller

	ctx context.Context // parents controller goroutines; set by Run
}

// NewServer builds a server and seeds the preset rooms
func NewServer(cfg *Config, logger *log.Logger, zlog zerolog.Logger, clock quartz.Clock) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		logger:  logger.WithPrefix("server"),
		zlog:    zlog,
		manager: room.NewManager(zlog),
		clock:   clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		conns:       make(map[string]*Connection),
		controllers: make(map[string]*session.Controller),
		ctx:         context.Background(),
	}
	if err := s.manager.SeedPresets(cfg.PresetRoomConfigs()); err != nil {
		return nil, fmt.Errorf("seed preset rooms: %w", err)
	}
	roomsActive.Set(float64(len(s.manager.List())))
	return s, nil
}

// Handler returns the HTTP mux: websocket, health and metrics endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run serves HTTP and the connection hub until the context is canceled
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx
	httpServer := &http.Server{
		Addr:    s.cfg.Address(),
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.runHub(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// runHub tracks connection registration on a single goroutine
func (s *Server) runHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-s.register:
			s.mu.Lock()
			s.conns[c.playerID] = c
			s.mu.Unlock()
			connectionsActive.Inc()
			s.logger.Info("Connection registered", "player", c.playerID, "name", c.name)

		case c := <-s.unregister:
			s.mu.Lock()
			current, ok := s.conns[c.playerID]
			if ok && current == c {
				delete(s.conns, c.playerID)
			}
			s.mu.Unlock()
			if ok && current == c {
				connectionsActive.Dec()
				if c.roomID != "" {
					if ctrl := s.lookupController(c.roomID); ctrl != nil {
						ctrl.PlayerDisconnected(c.playerID)
					}
				}
				s.logger.Info("Connection unregistered", "player", c.playerID)
			}
		}
	}
}

// handleWebSocket upgrades a client and starts its pumps
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name query parameter required", http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Upgrade failed", "error", err)
		return
	}

	c := newConnection(s, conn, uuid.NewString(), name)
	s.register <- c
	go c.writePump()
	go c.readPump()

	c.sendEvent(protocol.MustEvent(protocol.EvWelcome, protocol.Welcome{PlayerID: c.playerID}))
}

// SendToPlayer implements session.Sender. Messages to players without a
// live connection are dropped.
func (s *Server) SendToPlayer(playerID string, env *protocol.Envelope) {
	s.mu.RLock()
	c, ok := s.conns[playerID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Error("Failed to marshal event", "event", env.Event, "error", err)
		return
	}
	c.enqueue(data)
}

// controllerFor returns the room's controller, starting one on demand
func (s *Server) controllerFor(roomID string) (*session.Controller, error) {
	r, err := s.manager.Get(roomID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctrl, ok := s.controllers[roomID]; ok {
		return ctrl, nil
	}
	ctrl := session.NewController(r, s.manager, s, s.clock, s.zlog)
	s.controllers[roomID] = ctrl
	go ctrl.Run(s.ctx)
	return ctrl, nil
}

func (s *Server) lookupController(roomID string) *session.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controllers[roomID]
}

// attached returns the controller for the room the connection is in
func (s *Server) attached(c *Connection) *session.Controller {
	if c.roomID == "" {
		c.sendError("join a room first")
		return nil
	}
	ctrl := s.lookupController(c.roomID)
	if ctrl == nil {
		c.sendError("room is gone")
		c.roomID = ""
	}
	return ctrl
}

func decodeOrReject[T any](c *Connection, env *protocol.Envelope) (T, bool) {
	var payload T
	if err := protocol.Decode(env, &payload); err != nil {
		eventsRejected.WithLabelValues(env.Event).Inc()
		c.sendError(err.Error())
		return payload, false
	}
	return payload, true
}

// route dispatches one client event. Lobby operations run inline;
// room operations are queued on the room's controller.
func (s *Server) route(c *Connection, env *protocol.Envelope) {
	switch env.Event {
	case protocol.EvGetRoomList:
		c.sendEvent(protocol.MustEvent(protocol.EvRoomList, s.roomList()))

	case protocol.EvJoinRoom:
		if msg, ok := decodeOrReject[protocol.JoinRoom](c, env); ok {
			s.joinRoom(c, msg.RoomID, "", msg.ResumeToken)
		}

	case protocol.EvJoinPrivateRoom:
		if msg, ok := decodeOrReject[protocol.JoinPrivateRoom](c, env); ok {
			if s.joinRoom(c, msg.RoomID, msg.Password, "") && msg.BuyIn > 0 {
				if ctrl := s.attached(c); ctrl != nil {
					ctrl.HandleQuickJoin(c.playerID, c.name, msg.BuyIn)
				}
			}
		}

	case protocol.EvCreatePrivateRoom:
		if msg, ok := decodeOrReject[protocol.CreatePrivateRoom](c, env); ok {
			s.createRoom(c, msg)
		}

	case protocol.EvLeaveRoom:
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleLeaveRoom(c.playerID)
		}
		c.roomID = ""

	case protocol.EvSitDown:
		msg, ok := decodeOrReject[protocol.SitDown](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleSitDown(c.playerID, c.name, msg.SeatIndex, msg.BuyIn)
		}

	case protocol.EvQuickJoin:
		msg, ok := decodeOrReject[protocol.QuickJoin](c, env)
		if !ok {
			return
		}
		if s.joinRoom(c, msg.RoomID, "", "") {
			if ctrl := s.attached(c); ctrl != nil {
				ctrl.HandleQuickJoin(c.playerID, c.name, msg.BuyIn)
			}
		}

	case protocol.EvLeaveSeat:
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleStandUp(c.playerID)
		}

	case protocol.EvRebuy:
		msg, ok := decodeOrReject[protocol.Rebuy](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleRebuy(c.playerID, msg.Amount)
		}

	case protocol.EvImBack:
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleImBack(c.playerID)
		}

	case protocol.EvPlayerAction:
		msg, ok := decodeOrReject[protocol.PlayerAction](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleAction(c.playerID, msg)
		}

	case protocol.EvDrawExchange:
		msg, ok := decodeOrReject[protocol.DrawExchange](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleDraw(c.playerID, msg.DiscardIndexes)
		}

	case protocol.EvUseTimebank:
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleTimeBank(c.playerID)
		}

	case protocol.EvRequestRoomState:
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.RequestState(c.playerID)
		}

	case protocol.EvOFCPlaceCards:
		msg, ok := decodeOrReject[protocol.OFCPlaceCards](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleOFCPlace(c.playerID, msg)
		}

	case protocol.EvUpdateRoomConfig, protocol.EvUpdatePrivateRoomConfig:
		msg, ok := decodeOrReject[protocol.RoomConfig](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleUpdateConfig(c.playerID, roomConfigFromWire(msg))
		}

	case protocol.EvSetGameVariant, protocol.EvChangeVariant:
		msg, ok := decodeOrReject[protocol.SetGameVariant](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleSetVariant(c.playerID, msg.Variant)
		}

	case protocol.EvSetRotation:
		msg, ok := decodeOrReject[protocol.SetRotation](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleSetRotation(c.playerID, msg.Games, msg.HandsPerGame)
		}

	case protocol.EvToggleMetaGame:
		msg, ok := decodeOrReject[protocol.ToggleMetaGame](c, env)
		if !ok {
			return
		}
		if ctrl := s.attached(c); ctrl != nil {
			ctrl.HandleToggleMetaGame(c.playerID, msg.Game, msg.Enabled)
		}

	default:
		eventsRejected.WithLabelValues(env.Event).Inc()
		c.sendError("unknown event " + env.Event)
	}
}

// joinRoom attaches the connection to a room, optionally rebinding a
// previous seat via its resume token. Returns false on failure.
func (s *Server) joinRoom(c *Connection, roomID, password, resumeToken string) bool {
	r, err := s.manager.Authorize(roomID, password)
	if err != nil {
		eventsRejected.WithLabelValues(protocol.EvJoinRoom).Inc()
		c.sendError(err.Error())
		return false
	}
	ctrl, err := s.controllerFor(r.ID)
	if err != nil {
		c.sendError(err.Error())
		return false
	}

	if resumeToken != "" {
		if seatID, ok := s.resumeSeat(r, resumeToken); ok {
			s.rebind(c, seatID)
			c.roomID = r.ID
			ctrl.Attach(c.playerID, c.name)
			ctrl.PlayerResumed(c.playerID)
			return true
		}
		c.sendError("resume token not recognized")
	}

	c.roomID = r.ID
	ctrl.Attach(c.playerID, c.name)
	return true
}

// resumeSeat finds the seat holding a resume token
func (s *Server) resumeSeat(r *room.Room, token string) (string, bool) {
	for _, seat := range r.Table.Seats {
		if seat != nil && seat.ResumeToken != "" && seat.ResumeToken == token {
			return seat.ID, true
		}
	}
	return "", false
}

// rebind swaps the connection onto an existing player identity, kicking
// any stale connection still holding it.
func (s *Server) rebind(c *Connection, playerID string) {
	s.mu.Lock()
	old, hadOld := s.conns[playerID]
	delete(s.conns, c.playerID)
	s.conns[playerID] = c
	s.mu.Unlock()

	if hadOld && old != c {
		old.close()
	}
	c.playerID = playerID
	c.logger = s.logger.WithPrefix("conn").With("player", playerID)
}

// createRoom makes a player-hosted room and attaches the creator
func (s *Server) createRoom(c *Connection, msg protocol.CreatePrivateRoom) {
	cfg := roomConfigFromWire(msg.Config)
	cfg.Password = msg.Password
	r, err := s.manager.Create(c.playerID, cfg, msg.CustomRoomID)
	if err != nil {
		eventsRejected.WithLabelValues(protocol.EvCreatePrivateRoom).Inc()
		c.sendError(err.Error())
		return
	}
	roomsActive.Set(float64(len(s.manager.List())))
	ctrl, err := s.controllerFor(r.ID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.roomID = r.ID
	ctrl.Attach(c.playerID, c.name)
}

func (s *Server) roomList() protocol.RoomList {
	rooms := s.manager.List()
	roomsActive.Set(float64(len(rooms)))
	out := protocol.RoomList{}
	for _, r := range rooms {
		out.Rooms = append(out.Rooms, protocol.RoomSummary{
			RoomID:      r.ID,
			Name:        r.Config.Name,
			Variant:     string(r.Config.Variant),
			Players:     r.Table.OccupiedSeats(),
			MaxPlayers:  r.Config.MaxPlayers,
			SmallBlind:  r.Config.SmallBlind,
			BigBlind:    r.Config.BigBlind,
			HasPassword: r.HasPassword(),
			InHand:      r.InHand(),
		})
	}
	return out
}
