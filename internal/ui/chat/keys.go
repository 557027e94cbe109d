// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Submit        key.Binding
	ToggleSidebar key.Binding
	ToggleTheme   key.Binding
	NewChat       key.Binding
	ClosePanel    key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
// ToggleTheme and NewChat are only active while the side panel is open.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "menu"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new chat"),
		),
		ClosePanel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close menu"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns bindings for the one-line help bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleSidebar, k.PageUp, k.Quit}
}

// FullHelp returns all bindings grouped by area.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Quit},
		{k.ToggleSidebar, k.ToggleTheme, k.NewChat, k.ClosePanel},
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown},
	}
}

// PanelHelp returns the bindings shown while the side panel is open.
func (k KeyMap) PanelHelp() []key.Binding {
	return []key.Binding{k.ToggleTheme, k.NewChat, k.ClosePanel, k.Quit}
}

