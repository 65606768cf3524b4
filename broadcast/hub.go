// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/danielhkuo/crossroads/auth"
	"github.com/danielhkuo/crossroads/middleware"
	"github.com/danielhkuo/crossroads/models"
	"github.com/danielhkuo/crossroads/poll"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// ReplaySource supplies the state a newly connected client is brought up
// to date with.
type ReplaySource interface {
	Snapshot() poll.Snapshot
}

// Hub fans poll events out to every connected WebSocket client.
type Hub struct {
	upgrader websocket.Upgrader
	ipSalt   string

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Overlays are loaded from the streaming software, not from
			// this origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		ipSalt:  uuid.NewString(),
		clients: make(map[string]*client),
	}
}

// Broadcast encodes the frame once and queues it for every client without
// blocking. A client whose queue is full misses the frame.
func (h *Hub) Broadcast(event string, payload any) {
	msg, err := encodeFrame(event, payload)
	if err != nil {
		slog.Error("failed to encode frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.deliver(msg)
	}
}

// Handler upgrades the request and serves the client until it disconnects.
func (h *Hub) Handler(src ReplaySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}

		c := newClient(conn)
		if !h.register(c) {
			conn.Close()
			return
		}
		ipHash := auth.HashIP(middleware.GetClientIP(r), h.ipSalt)
		slog.Info("client connected", "client_id", c.id, "ip_hash", ipHash)

		// Frames broadcast from registration until the flush are held and
		// queued after the replay, so the last frame of each event is never
		// older than the snapshot.
		c.flushReplay(replayFrames(src.Snapshot()))

		go c.writePump()
		c.readPump()

		h.unregister(c)
		slog.Info("client disconnected", "client_id", c.id, "ip_hash", ipHash)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, c := range h.clients {
		c.stop()
		delete(h.clients, id)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.stop()
}

func encodeFrame(event string, payload any) ([]byte, error) {
	return json.Marshal(models.Frame{Event: event, Data: payload})
}

// replayFrames builds the burst sent on connect.
func replayFrames(s poll.Snapshot) [][]byte {
	type frame struct {
		event   string
		payload any
	}
	frames := []frame{
		{models.EventPollActive, s.Active()},
		{models.EventPollOverlay, s.Overlay},
		{models.EventPollVotes, s.Votes},
	}
	if s.Details != nil {
		frames = append(frames, frame{models.EventPollDetails, *s.Details})
	}

	out := make([][]byte, 0, len(frames))
	for _, f := range frames {
		msg, err := encodeFrame(f.event, f.payload)
		if err != nil {
			slog.Error("failed to encode replay frame", "event", f.event, "error", err)
			continue
		}
		out = append(out, msg)
	}
	return out
}
