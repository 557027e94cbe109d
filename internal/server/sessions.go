// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/model"
)

// SessionCookie names the cookie that carries a browser's session ID.
const SessionCookie = "chatbot_session"

// janitorInterval is the longest the janitor sleeps between sweeps.
const janitorInterval = time.Minute

// =============================================================================
// SESSION
// =============================================================================

// Session is one browser's conversation.
type Session struct {
	ID    string
	Store *conversation.Store

	mu       sync.Mutex
	lastSeen time.Time
	rendered map[string]template.HTML
}

// Touch marks the session as used at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

// LastSeen returns the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// messageHTML returns the HTML for each message, rendering only messages
// not seen before. Entries for messages no longer present are dropped.
func (s *Session) messageHTML(msgs []model.Message, render func(model.Message) template.HTML) []template.HTML {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]template.HTML, len(msgs))
	next := make(map[string]template.HTML, len(msgs))
	for i, msg := range msgs {
		h, ok := s.rendered[msg.ID]
		if !ok {
			h = render(msg)
		}
		out[i] = h
		next[msg.ID] = h
	}
	s.rendered = next
	return out
}

// =============================================================================
// SESSION SET
// =============================================================================

// StoreFactory builds the store for a new session.
type StoreFactory func(sessionID string) *conversation.Store

// Sessions tracks live browser sessions by ID.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newStore StoreFactory
	inUse    func(id string) bool
	now      func() time.Time
}

// NewSessions creates an empty session set.
func NewSessions(factory StoreFactory) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		newStore: factory,
		now:      time.Now,
	}
}

// KeepWhile makes Prune skip sessions for which inUse reports true, however
// long they have been idle.
func (s *Sessions) KeepWhile(inUse func(id string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse = inUse
}

// Get returns the session with the given ID and marks it used.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		sess.Touch(s.now())
	}
	return sess, ok
}

// Peek returns a session without marking it used.
func (s *Sessions) Peek(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Each calls fn for every live session.
func (s *Sessions) Each(fn func(*Session)) {
	s.mu.RLock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()
	for _, sess := range list {
		fn(sess)
	}
}

// Create starts a new session with a fresh store.
func (s *Sessions) Create() *Session {
	id := uuid.NewString()
	sess := &Session{
		ID:       id,
		Store:    s.newStore(id),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune removes sessions idle for longer than ttl, other than those still in
// use, and returns how many were removed. A non-positive ttl keeps every
// session.
func (s *Sessions) Prune(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.inUse != nil && s.inUse(id) {
			continue
		}
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Janitor prunes idle sessions until ctx is cancelled.
func (s *Sessions) Janitor(ctx context.Context, ttl time.Duration, onPrune func(int)) {
	if ttl <= 0 {
		<-ctx.Done()
		return
	}
	interval := ttl / 4
	if interval > janitorInterval {
		interval = janitorInterval
	}
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Prune(ttl); n > 0 && onPrune != nil {
				onPrune(n)
			}
		}
	}
}
