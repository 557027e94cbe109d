// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatbot TUI.

# Color System (colors.go)

Every color is a light/dark pair. Pairs are resolved with Pick against the
conversation's own theme flag, so toggling dark mode in the app switches the
palette regardless of the terminal background.

	Background   - transcript background
	Panel        - side panel
	UserBubbleBg - user messages (right aligned)
	BotBubbleBg  - bot messages (left aligned)

# Theme (theme.go)

NewTheme(dark) builds the full set of lipgloss styles for one palette. The
chat view keeps one Theme per palette and swaps when the flag changes.
*/
package styles
