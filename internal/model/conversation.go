// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered, append-only log of messages.
// Insertion order is display order. Individual entries are never reordered or
// removed; the only way to shrink a conversation is Reset.
//
// The zero value is an empty conversation ready for use.
type Conversation struct {
	messages []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{messages: make([]Message, 0)}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// Reset empties the conversation.
func (c *Conversation) Reset() {
	c.messages = make([]Message, 0)
}

// Messages returns a copy of the messages in display order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}
