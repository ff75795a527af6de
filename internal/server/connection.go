package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/cardroomlabs/cardroom/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Outbound message buffer per connection
	sendBuffer = 256
)

// Connection wraps a websocket client. Each connection runs a read pump
// and a write pump; everything else happens on room queues.
type Connection struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	logger *log.Logger

	playerID string
	name     string

	// roomID is the room this connection is attached to, empty in the
	// lobby. Only the read pump mutates it.
	roomID string

	closeOnce sync.Once
}

func newConnection(server *Server, conn *websocket.Conn, playerID, name string) *Connection {
	return &Connection{
		server:   server,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		logger:   server.logger.WithPrefix("conn").With("player", playerID),
		playerID: playerID,
		name:     name,
	}
}

// close shuts the connection down exactly once
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// readPump reads client events and routes them until the connection dies
func (c *Connection) readPump() {
	defer func() {
		c.server.unregister <- c
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Unexpected close", "error", err)
			}
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.sendError("malformed message")
			continue
		}
		messagesReceived.Inc()
		c.server.route(c, &env)
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue drops the message if the client cannot keep up
func (c *Connection) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.logger.Warn("Send buffer full, dropping message")
	}
}

func (c *Connection) sendEvent(env *protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Error("Failed to marshal event", "event", env.Event, "error", err)
		return
	}
	c.enqueue(data)
}

func (c *Connection) sendError(msg string) {
	c.sendEvent(protocol.MustEvent(protocol.EvError, protocol.ErrorPayload{Message: msg}))
}
