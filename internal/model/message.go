// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Bot"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a conversation.
// Messages are values and are never modified after creation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user message. The text is kept verbatim,
// including surrounding whitespace.
func NewUserMessage(text string) Message {
	return NewMessage(SenderUser, text)
}

// NewBotMessage creates a new bot message.
func NewBotMessage(text string) Message {
	return NewMessage(SenderBot, text)
}

// IsUser returns true for messages typed by the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot returns true for messages produced by the generation service
// (including the fallback error text).
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
