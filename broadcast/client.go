// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// client is one WebSocket connection. Only writePump writes to conn.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	done     chan struct{}
	stopOnce sync.Once

	// While replaying, live frames are held in pending so they land after
	// the replay burst.
	mu        sync.Mutex
	replaying bool
	pending   [][]byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),

		replaying: true,
	}
}

// deliver queues a live frame, holding it back until the replay is flushed.
func (c *client) deliver(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replaying {
		c.pending = append(c.pending, msg)
		return
	}
	c.enqueue(msg)
}

// flushReplay queues the replay burst followed by every live frame that
// arrived since registration, then opens the client to live delivery.
func (c *client) flushReplay(frames [][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range frames {
		c.enqueue(msg)
	}
	for _, msg := range c.pending {
		c.enqueue(msg)
	}
	c.pending = nil
	c.replaying = false
}

func (c *client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		slog.Warn("dropping frame for slow client", "client_id", c.id)
	}
}

func (c *client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

// readPump discards inbound messages; clients only listen. It returns when
// the connection fails or closes.
func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
