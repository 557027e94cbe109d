// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types shared by the conversation store
// and every renderer.
//
// # Key Types
//
//   - Message: a single immutable entry with text, sender and timestamp
//   - Sender: who wrote a message (user or bot)
//   - Conversation: an append-only, ordered log of messages
//
// # Usage
//
//	var conv model.Conversation
//	conv.Append(model.NewUserMessage("hello"))
//	conv.Append(model.NewBotMessage("**Hi!**"))
//	for _, msg := range conv.Messages() {
//	    fmt.Println(msg.Sender, msg.Text)
//	}
package model
