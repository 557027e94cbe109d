// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		// The default check rejects cross-origin upgrades.
		CheckOrigin: nil,
	}
}

// handleWS upgrades the request and streams transcript frames for the
// caller's session.
func (s *Server) handleWS(c echo.Context) error {
	sess := sessionFrom(c)

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	ws.SetReadLimit(maxMessageSize)

	conn := s.hub.NewConnection(ws, sess.ID)

	// Queue the current state before registering so the first frame the
	// page sees is never older than a pushed one.
	if f, err := s.frame(sess, sess.Store.Snapshot()); err == nil {
		if data, err := json.Marshal(f); err == nil {
			conn.Send <- data
		}
	}
	if !s.hub.Register(conn) {
		conn.Close()
		return nil
	}

	go s.writePump(conn)
	go s.readPump(conn)
	return nil
}

// readPump drains the socket so pongs and close frames are processed.
// Client messages carry no commands.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
		// The idle clock starts when the page goes away.
		s.sessions.Get(conn.SessionID)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.Debug().Err(err).Str("conn", conn.ID).Msg("websocket closed")
			}
			return
		}
	}
}

// writePump delivers queued frames and keeps the socket alive with pings.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
