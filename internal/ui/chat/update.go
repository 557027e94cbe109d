// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case ResponseMsg:
		return m.handleResponse(msg)

	case ConfigReloadedMsg:
		m.wordWrap = msg.WordWrap
		m.sync()
		return m, nil

	case spinner.TickMsg:
		if !m.snap.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.viewport.SetContent(m.renderTranscript())
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.sync()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	if key.Matches(msg, m.keyMap.ToggleSidebar) {
		m.store.ToggleSidebar()
		m.sync()
		return m, nil
	}

	if m.snap.SidebarOpen {
		return m.handlePanelKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.store.SetDraft(m.input.Value())
	m.snap = m.store.Snapshot()
	return m, cmd
}

// handlePanelKey handles keys while the side panel has focus.
func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.ToggleTheme):
		m.store.ToggleDarkMode()
	case key.Matches(msg, m.keyMap.NewChat):
		m.store.Clear()
	case key.Matches(msg, m.keyMap.ClosePanel):
		m.store.CloseSidebar()
	default:
		return m, nil
	}
	m.sync()
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.MouseLeft {
		switch {
		case m.menuZone.contains(msg.X, msg.Y):
			m.store.ToggleSidebar()
			m.sync()
			return m, nil
		case !m.snap.SidebarOpen && m.sendZone.contains(msg.X, msg.Y):
			return m.submit()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleResponse(msg ResponseMsg) (tea.Model, tea.Cmd) {
	m.store.Settle(msg.Outcome)
	m.sync()
	return m, nil
}

// =============================================================================
// SUBMIT
// =============================================================================

// submit sends the current draft. Blank drafts are left in place and
// nothing is dispatched.
func (m Model) submit() (tea.Model, tea.Cmd) {
	req, ok := m.store.Send(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.sync()

	return m, tea.Batch(
		dispatchCmd(m.ctx, m.gen, req),
		m.spinner.Tick,
	)
}
