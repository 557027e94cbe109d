// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbot/internal/conversation"
)

// =============================================================================
// GENERATION MESSAGES
// =============================================================================

// ResponseMsg delivers the outcome of a dispatched request.
type ResponseMsg struct {
	Outcome conversation.Outcome
}

// dispatchCmd runs the generation call off the update loop.
func dispatchCmd(ctx context.Context, gen conversation.Generator, req conversation.Request) tea.Cmd {
	return func() tea.Msg {
		return ResponseMsg{Outcome: conversation.Dispatch(ctx, gen, req)}
	}
}

// =============================================================================
// CONFIGURATION MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent when the config file changes on disk.
type ConfigReloadedMsg struct {
	WordWrap int
}
