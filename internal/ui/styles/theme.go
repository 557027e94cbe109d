// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for one palette.
// Unlike terminal-detected themes, the palette is fixed by IsDark.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// CONTAINER STYLES
	// ==========================================================================

	App        lipgloss.Style
	Transcript lipgloss.Style

	// ==========================================================================
	// HEADER / MENU
	// ==========================================================================

	Header     lipgloss.Style
	MenuButton lipgloss.Style
	Title      lipgloss.Style

	// ==========================================================================
	// SIDE PANEL
	// ==========================================================================

	Panel         lipgloss.Style
	PanelItem     lipgloss.Style
	PanelKey      lipgloss.Style
	PanelFootnote lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLES
	// ==========================================================================

	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputBox         lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	SendButton       lipgloss.Style

	// ==========================================================================
	// LOADING / GREETING / HELP
	// ==========================================================================

	Spinner     lipgloss.Style
	LoadingText lipgloss.Style
	Greeting    lipgloss.Style
	Help        lipgloss.Style
}

// PanelWidth is the fixed width of the side panel.
const PanelWidth = 22

// NewTheme creates a theme for the light or dark palette.
func NewTheme(dark bool) *Theme {
	t := &Theme{
		IsDark:       dark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// Color resolves a color pair against this theme.
func (t *Theme) Color(c lipgloss.AdaptiveColor) lipgloss.Color {
	return Pick(c, t.IsDark)
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	bg := t.Color(Background)
	fg := t.Color(TextPrimary)

	t.App = lipgloss.NewStyle().
		Background(bg).
		Foreground(fg)

	t.Transcript = lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 2)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1)

	t.MenuButton = lipgloss.NewStyle().
		Foreground(fg).
		Bold(true)

	t.Title = lipgloss.NewStyle().
		Foreground(t.Color(TextSecondary)).
		Bold(true)

	// Side panel
	t.Panel = lipgloss.NewStyle().
		Background(t.Color(Panel)).
		Foreground(t.Color(TextSecondary)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(t.Color(Border)).
		Width(PanelWidth).
		Padding(1, 1)

	t.PanelItem = lipgloss.NewStyle().
		Foreground(t.Color(TextSecondary))

	t.PanelKey = lipgloss.NewStyle().
		Foreground(t.Color(Accent)).
		Bold(true)

	t.PanelFootnote = lipgloss.NewStyle().
		Foreground(t.Color(TextMuted)).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(t.Color(UserBubbleFg)).
		Background(t.Color(UserBubbleBg)).
		Padding(0, 2).
		MarginBottom(1)

	t.BotBubble = lipgloss.NewStyle().
		Foreground(t.Color(BotBubbleFg)).
		Background(t.Color(BotBubbleBg)).
		Padding(0, 1).
		MarginBottom(1)

	// Input area
	t.InputBox = lipgloss.NewStyle().
		Background(t.Color(InputBg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Color(Border)).
		Padding(0, 1)

	t.InputText = lipgloss.NewStyle().
		Foreground(fg)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(t.Color(TextMuted)).
		Italic(true)

	t.SendButton = lipgloss.NewStyle().
		Foreground(t.Color(Accent)).
		Bold(true)

	// Loading, greeting, help
	t.Spinner = lipgloss.NewStyle().
		Foreground(t.Color(SpinnerArc))

	t.LoadingText = lipgloss.NewStyle().
		Foreground(fg)

	t.Greeting = lipgloss.NewStyle().
		Foreground(t.Color(Accent)).
		Bold(true).
		Align(lipgloss.Center)

	t.Help = lipgloss.NewStyle().
		Foreground(t.Color(TextMuted))
}
