// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/chatbot/internal/markup"
	"github.com/jeranaias/chatbot/internal/model"
)

// Greeting shown until the first send after start or a new chat.
const greetingArt = `  .-----.
 | o   o |
 |   ^   |
  '-----'`

const greetingText = "Hi! How can I help you today?"

// =============================================================================
// MAIN RENDER
// =============================================================================

func (m Model) renderChat() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderHelp(),
	)

	if m.snap.SidebarOpen {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderPanel(), main)
	}

	return m.theme.App.
		Width(m.width).
		MaxWidth(m.width).
		Height(m.height).
		MaxHeight(m.height).
		Render(main)
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader draws the top row. The menu affordance is hidden while the
// panel is open; the panel carries its own.
func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Chatbot")
	if m.snap.SidebarOpen {
		return m.theme.Header.Width(m.mainWidth()).Render(title)
	}
	return m.theme.Header.Width(m.mainWidth()).Render(
		m.theme.MenuButton.Render(menuLabel) + " " + title,
	)
}

// =============================================================================
// SIDE PANEL
// =============================================================================

func (m Model) renderPanel() string {
	modeLabel := "Dark mode"
	if m.snap.DarkMode {
		modeLabel = "Light mode"
	}

	item := func(k, label string) string {
		return m.theme.PanelKey.Render(k) + "  " + m.theme.PanelItem.Render(label)
	}

	lines := []string{
		m.theme.MenuButton.Render(menuLabel),
		"",
		item("t", modeLabel),
		item("n", "New chat"),
		"",
		m.theme.PanelFootnote.Render("esc to close"),
	}

	height := m.height - 2 // vertical padding
	if height < len(lines) {
		height = len(lines)
	}
	return m.theme.Panel.Height(height).Render(strings.Join(lines, "\n"))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders the viewport content: every message followed by
// the loading placeholder. The greeting fills the viewport when there is
// nothing else to show, and otherwise sits above the messages; replies to
// requests sent before a new chat still land after a clear.
func (m Model) renderTranscript() string {
	width := m.viewport.Width
	greeting := m.theme.Greeting.Render(greetingArt + "\n\n" + greetingText)
	if m.snap.ShowGreeting && len(m.snap.Messages) == 0 && !m.snap.Loading {
		return lipgloss.Place(width, m.viewport.Height, lipgloss.Center, lipgloss.Center, greeting)
	}

	inner := width - m.theme.Transcript.GetHorizontalPadding()
	if inner < 1 {
		inner = 1
	}

	var b strings.Builder
	if m.snap.ShowGreeting {
		b.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, greeting))
		b.WriteString("\n\n")
	}
	for _, msg := range m.snap.Messages {
		b.WriteString(m.renderMessage(msg, inner))
		b.WriteString("\n")
	}
	if m.snap.Loading {
		b.WriteString(m.renderLoading())
	}

	return m.theme.Transcript.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// bubbleWidth is the widest a message bubble may be: three quarters of the
// transcript, further capped by the configured word wrap.
func (m Model) bubbleWidth(inner int) int {
	w := inner * 3 / 4
	if m.wordWrap > 0 && w > m.wordWrap {
		w = m.wordWrap
	}
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) renderMessage(msg model.Message, inner int) string {
	maxWidth := m.bubbleWidth(inner)

	if msg.IsUser() {
		text := markup.StripControl(msg.Text)
		style := m.theme.UserBubble
		pad := style.GetHorizontalFrameSize()
		if w := textWidth(text) + pad; w < maxWidth {
			style = style.Width(w)
		} else {
			style = style.Width(maxWidth)
		}
		return lipgloss.PlaceHorizontal(inner, lipgloss.Right, style.Render(text))
	}

	style := m.theme.BotBubble
	rendered := m.term.Render(msg.Text, maxWidth-style.GetHorizontalFrameSize(), m.snap.DarkMode)
	return lipgloss.PlaceHorizontal(inner, lipgloss.Left, style.MaxWidth(maxWidth).Render(rendered))
}

func (m Model) renderLoading() string {
	return m.spinner.View() + " " + m.theme.LoadingText.Render("Loading...")
}

// textWidth returns the display width of the widest line.
func textWidth(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if w := runewidth.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

// =============================================================================
// INPUT
// =============================================================================

func (m Model) renderInput() string {
	content := m.inputContentWidth()
	field := lipgloss.NewStyle().
		Width(content - len(sendLabel)).
		MaxWidth(content - len(sendLabel)).
		Render(m.input.View())

	line := field + m.theme.SendButton.Render(sendLabel)
	return m.theme.InputBox.Width(m.mainWidth() - 2).Render(line)
}

// =============================================================================
// HELP
// =============================================================================

func (m Model) renderHelp() string {
	var view string
	if m.snap.SidebarOpen {
		view = m.help.ShortHelpView(m.keyMap.PanelHelp())
	} else {
		view = m.help.ShortHelpView(m.keyMap.ShortHelp())
	}
	return m.theme.Help.Width(m.mainWidth()).MaxWidth(m.mainWidth()).Render(view)
}
