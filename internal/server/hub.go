// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// sendBuffer is the per-connection outbound queue length.
const sendBuffer = 64

// =============================================================================
// CONNECTION
// =============================================================================

// Connection is one browser WebSocket bound to a session.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	mu sync.Mutex
}

// WriteMessage writes a frame with the connection's write lock held.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

// =============================================================================
// HUB
// =============================================================================

type sessionMessage struct {
	sessionID string
	data      []byte
}

// Hub fans transcript updates out to every socket of a session.
type Hub struct {
	connections map[string]*Connection
	sessions    map[string]map[string]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan sessionMessage
	done       chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a hub. Call Run to start delivering messages.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan sessionMessage, 256),
		done:        make(chan struct{}),
		logger:      logger.With().Str("component", "hub").Logger(),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// On return every remaining connection's Send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, conn := range h.connections {
				close(conn.Send)
				delete(h.connections, id)
			}
			h.sessions = make(map[string]map[string]struct{})
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.sessions[conn.SessionID] == nil {
				h.sessions[conn.SessionID] = make(map[string]struct{})
			}
			h.sessions[conn.SessionID][conn.ID] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug().Str("conn", conn.ID).Str("session", conn.SessionID).Msg("connection registered")

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.broadcast:
			var slow []*Connection
			h.mu.RLock()
			for connID := range h.sessions[msg.sessionID] {
				conn, ok := h.connections[connID]
				if !ok {
					continue
				}
				select {
				case conn.Send <- msg.data:
				default:
					slow = append(slow, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range slow {
				h.logger.Warn().Str("conn", conn.ID).Msg("send buffer full, dropping connection")
				h.remove(conn)
			}
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	if ids := h.sessions[conn.SessionID]; ids != nil {
		delete(ids, conn.ID)
		if len(ids) == 0 {
			delete(h.sessions, conn.SessionID)
		}
	}
	close(conn.Send)
	h.logger.Debug().Str("conn", conn.ID).Msg("connection unregistered")
}

// NewConnection wraps a socket for the given session. It is not registered.
func (h *Hub) NewConnection(ws *websocket.Conn, sessionID string) *Connection {
	return &Connection{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Conn:      ws,
		Send:      make(chan []byte, sendBuffer),
	}
}

// Register adds a connection. It returns false once the hub has stopped,
// in which case the caller still owns conn and must close it.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection and closes its Send channel.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast queues data for every connection of a session.
func (h *Hub) Broadcast(sessionID string, data []byte) {
	select {
	case h.broadcast <- sessionMessage{sessionID: sessionID, data: data}:
	case <-h.done:
	}
}

// BroadcastJSON marshals v and queues it for a session.
func (h *Hub) BroadcastJSON(sessionID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal broadcast")
	}
	h.Broadcast(sessionID, data)
	return nil
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SessionCount returns the number of sessions with at least one connection.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// HasConnections reports whether a session has any live sockets.
func (h *Hub) HasConnections(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID]) > 0
}
