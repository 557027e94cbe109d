// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/chatbot/internal/model"
)

// FallbackText is appended as a bot message whenever a generation request fails.
const FallbackText = "Sorry, there was an error. Please try again later."

// =============================================================================
// ORDERING POLICY
// =============================================================================

// Ordering controls how responses for overlapping requests are appended.
type Ordering int

const (
	// OrderResolution appends every response in the order it resolves,
	// including responses for requests issued before the last Clear.
	OrderResolution Ordering = iota

	// OrderLatest only appends the response to the most recent request of
	// the current epoch. Older responses are dropped.
	OrderLatest
)

// String returns the configuration name of the ordering.
func (o Ordering) String() string {
	switch o {
	case OrderResolution:
		return "resolution"
	case OrderLatest:
		return "latest"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// ParseOrdering converts a configuration value to an Ordering.
// The empty string selects OrderResolution.
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "resolution":
		return OrderResolution, nil
	case "latest":
		return OrderLatest, nil
	default:
		return OrderResolution, errors.Errorf("unknown ordering %q (want resolution or latest)", s)
	}
}

// =============================================================================
// REQUEST / OUTCOME
// =============================================================================

// Request is issued by Send and must be dispatched exactly once.
type Request struct {
	ID     uint64
	Prompt string
	Epoch  uint64
}

// Outcome is the result of a dispatched Request, fed back through Settle.
type Outcome struct {
	RequestID uint64
	Epoch     uint64
	Text      string
	Err       error
}

// Failed reports whether the request did not produce a usable response.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a copy of the store state at one revision.
type Snapshot struct {
	Messages     []model.Message
	Draft        string
	Loading      bool
	InFlight     int
	SidebarOpen  bool
	DarkMode     bool
	ShowGreeting bool

	// Revision increases on every state change.
	Revision uint64
	// Appended increases on every message append.
	Appended uint64
}

// LastBotMessage returns the most recent bot message, if any.
func (s Snapshot) LastBotMessage() (model.Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsBot() {
			return s.Messages[i], true
		}
	}
	return model.Message{}, false
}

// Hook receives the snapshot produced by a transition.
type Hook func(Snapshot)

// =============================================================================
// STORE
// =============================================================================

// Config holds the options for a Store.
type Config struct {
	Ordering Ordering
	DarkMode bool
	Logger   *zerolog.Logger
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{Ordering: OrderResolution}
}

// Store is the single source of truth for one conversation.
// It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	conv         model.Conversation
	draft        string
	inFlight     int
	sidebarOpen  bool
	darkMode     bool
	showGreeting bool

	ordering Ordering
	nextID   uint64
	latestID uint64
	epoch    uint64

	revision uint64
	appended uint64

	onAppend []Hook
	onChange []Hook

	logger zerolog.Logger
}

// NewStore creates a store with the default configuration.
func NewStore() *Store {
	return NewStoreWithConfig(DefaultConfig())
}

// NewStoreWithConfig creates a store with the given configuration.
func NewStoreWithConfig(cfg Config) *Store {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Store{
		ordering:     cfg.Ordering,
		darkMode:     cfg.DarkMode,
		showGreeting: true,
		logger:       logger.With().Str("component", "conversation").Logger(),
	}
}

// OnAppend registers a hook that runs after every message append.
func (s *Store) OnAppend(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAppend = append(s.onAppend, h)
}

// OnChange registers a hook that runs after every state change.
func (s *Store) OnChange(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, h)
}

// Ordering returns the store's ordering policy.
func (s *Store) Ordering() Ordering {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordering
}

// SetOrdering changes the ordering policy for responses settled from now on.
func (s *Store) SetOrdering(o Ordering) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ordering = o
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// SetDraft records the in-progress input text.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	if s.draft == text {
		s.mu.Unlock()
		return
	}
	s.draft = text
	s.commit(false)
}

// Send submits a draft. A draft that is empty after trimming whitespace is
// ignored and Send returns false. Otherwise the raw draft is appended as a
// user message, the draft is cleared, loading is set, and the returned
// Request must be dispatched by the caller.
func (s *Store) Send(draft string) (Request, bool) {
	if strings.TrimSpace(draft) == "" {
		return Request{}, false
	}

	s.mu.Lock()
	s.showGreeting = false
	msg := model.NewUserMessage(draft)
	s.conv.Append(msg)
	s.draft = ""
	s.inFlight++
	s.nextID++
	s.latestID = s.nextID
	req := Request{ID: s.nextID, Prompt: draft, Epoch: s.epoch}
	s.commit(true)

	s.logger.Debug().Uint64("request_id", req.ID).Str("prompt", msg.Preview(40)).Msg("request issued")
	return req, true
}

// Settle applies the outcome of a dispatched request: it appends the bot
// reply (or the fallback text on failure) and clears loading in one step.
// Under OrderLatest, stale outcomes only release their loading count.
func (s *Store) Settle(out Outcome) {
	s.mu.Lock()
	if s.inFlight > 0 {
		s.inFlight--
	}

	if s.ordering == OrderLatest && (out.Epoch != s.epoch || out.RequestID != s.latestID) {
		s.logger.Info().
			Uint64("request_id", out.RequestID).
			Uint64("epoch", out.Epoch).
			Msg("discarding stale response")
		s.commit(false)
		return
	}

	text := out.Text
	if out.Err != nil {
		s.logger.Warn().Err(out.Err).Uint64("request_id", out.RequestID).Msg("generation failed")
		text = FallbackText
	}
	s.conv.Append(model.NewBotMessage(text))
	s.commit(true)
}

// Clear empties the conversation, shows the greeting and closes the side
// panel. In-flight requests are not cancelled. Clearing an already empty
// conversation changes nothing.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.conv.IsEmpty() && s.showGreeting && !s.sidebarOpen {
		s.mu.Unlock()
		return
	}
	s.conv.Reset()
	s.showGreeting = true
	s.sidebarOpen = false
	s.epoch++
	s.commit(false)
}

// ToggleSidebar opens or closes the side panel.
func (s *Store) ToggleSidebar() {
	s.mu.Lock()
	s.sidebarOpen = !s.sidebarOpen
	s.commit(false)
}

// CloseSidebar closes the side panel if it is open.
func (s *Store) CloseSidebar() {
	s.mu.Lock()
	if !s.sidebarOpen {
		s.mu.Unlock()
		return
	}
	s.sidebarOpen = false
	s.commit(false)
}

// SetDarkMode selects the theme and closes the side panel.
func (s *Store) SetDarkMode(dark bool) {
	s.mu.Lock()
	if s.darkMode == dark && !s.sidebarOpen {
		s.mu.Unlock()
		return
	}
	s.darkMode = dark
	s.sidebarOpen = false
	s.commit(false)
}

// ToggleDarkMode flips the theme and closes the side panel.
func (s *Store) ToggleDarkMode() {
	s.mu.Lock()
	s.darkMode = !s.darkMode
	s.sidebarOpen = false
	s.commit(false)
}

// =============================================================================
// INTERNAL
// =============================================================================

// commit bumps the revision, releases the lock and runs the hooks.
// The caller must hold s.mu.
func (s *Store) commit(appended bool) {
	s.revision++
	if appended {
		s.appended++
	}
	snap := s.snapshotLocked()

	var hooks []Hook
	if appended {
		hooks = append(hooks, s.onAppend...)
	}
	hooks = append(hooks, s.onChange...)
	s.mu.Unlock()

	for _, h := range hooks {
		h(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Messages:     s.conv.Messages(),
		Draft:        s.draft,
		Loading:      s.inFlight > 0,
		InFlight:     s.inFlight,
		SidebarOpen:  s.sidebarOpen,
		DarkMode:     s.darkMode,
		ShowGreeting: s.showGreeting,
		Revision:     s.revision,
		Appended:     s.appended,
	}
}
