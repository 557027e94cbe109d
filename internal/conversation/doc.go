// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the state of a single chat session.
//
// A Store holds the message log together with the UI flags that renderers
// need (draft, loading, side panel, theme, greeting). Every mutation goes
// through a named transition on the Store, and every transition is atomic:
// renderers only ever observe a consistent Snapshot.
//
// # Key Components
//
//   - Store: the state object and its transitions (Send, Settle, Clear, ...)
//   - Snapshot: an immutable copy of the state handed to renderers and hooks
//   - Request / Outcome: the two ends of one generation round-trip
//   - Generator / Dispatch: the asynchronous call that turns a Request into an Outcome
//   - Ordering: how late responses are treated (resolution order or latest-only)
//
// # Usage
//
//	store := conversation.NewStore()
//	store.OnAppend(func(s conversation.Snapshot) { scrollToBottom() })
//
//	if req, ok := store.Send(draft); ok {
//	    go func() {
//	        store.Settle(conversation.Dispatch(ctx, client, req))
//	    }()
//	}
package conversation
