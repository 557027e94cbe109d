// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeGenerator struct {
	reply string
	err   error
	calls []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, prompt)
	return f.reply, f.err
}

func newTestModel(t *testing.T, gen conversation.Generator) Model {
	t.Helper()
	logger := zerolog.Nop()
	store := conversation.NewStoreWithConfig(conversation.Config{Logger: &logger})
	m := New(store, gen)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// responses runs cmd (and any batched cmds) and returns the ResponseMsgs produced.
func responses(cmd tea.Cmd) []ResponseMsg {
	if cmd == nil {
		return nil
	}
	var out []ResponseMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, responses(c)...)
		}
	case ResponseMsg:
		out = append(out, msg)
	}
	return out
}

func senders(msgs []model.Message) []model.Sender {
	out := make([]model.Sender, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.Sender
	}
	return out
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_EnterSendsDraft(t *testing.T) {
	gen := &fakeGenerator{reply: "**Hi!**"}
	m := newTestModel(t, gen)

	m = typeText(t, m, "hello")
	assert.Equal(t, "hello", m.Store().Snapshot().Draft)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	snap := m.Store().Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "hello", snap.Messages[0].Text)
	assert.True(t, snap.Loading)
	assert.Equal(t, "", m.input.Value())
	assert.Contains(t, m.View(), "Loading...")

	rs := responses(cmd)
	require.Len(t, rs, 1)
	assert.Equal(t, []string{"hello"}, gen.calls)

	m, _ = update(t, m, rs[0])
	snap = m.Store().Snapshot()
	assert.Equal(t, []model.Sender{model.SenderUser, model.SenderBot}, senders(snap.Messages))
	assert.Equal(t, "**Hi!**", snap.Messages[1].Text)
	assert.False(t, snap.Loading)
	assert.NotContains(t, m.View(), "Loading...")
	assert.Contains(t, m.View(), "Hi!")
}

func TestSubmit_BlankDraftDoesNothing(t *testing.T) {
	gen := &fakeGenerator{reply: "x"}
	m := newTestModel(t, gen)

	m = typeText(t, m, "   ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, m.Store().Snapshot().Messages)
	assert.Empty(t, gen.calls)
	assert.True(t, m.Store().Snapshot().ShowGreeting)
}

func TestSubmit_OtherKeysDoNotSend(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})
	m = typeText(t, m, "hello")

	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyTab},
		{Type: tea.KeySpace, Runes: []rune{' '}},
		{Type: tea.KeyCtrlJ},
	} {
		m, _ = update(t, m, k)
	}

	assert.Empty(t, m.Store().Snapshot().Messages)
}

func TestSubmit_FailureShowsFallback(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{err: errors.New("down")})
	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	for _, r := range responses(cmd) {
		m, _ = update(t, m, r)
	}

	snap := m.Store().Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, conversation.FallbackText, snap.Messages[1].Text)
	assert.Contains(t, m.View(), "Sorry, there was an error.")
}

func TestSubmit_ClickOnSendAffordance(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{reply: "ok"})
	m = typeText(t, m, "clicked")

	z := m.sendZone
	m, cmd := update(t, m, tea.MouseMsg{X: z.x0, Y: z.y, Type: tea.MouseLeft})

	assert.Len(t, m.Store().Snapshot().Messages, 1)
	assert.Len(t, responses(cmd), 1)
}

func TestSubmit_ClickOutsideSendIgnored(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{reply: "ok"})
	m = typeText(t, m, "hello")

	z := m.sendZone
	m, _ = update(t, m, tea.MouseMsg{X: z.x0 - 1, Y: z.y, Type: tea.MouseLeft})
	m, _ = update(t, m, tea.MouseMsg{X: z.x0, Y: z.y - 1, Type: tea.MouseLeft})

	assert.Empty(t, m.Store().Snapshot().Messages)
}

func TestSendZoneInsideInputRow(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})

	lines := strings.Split(m.View(), "\n")
	require.Greater(t, len(lines), m.sendZone.y)
	assert.Contains(t, lines[m.sendZone.y], sendLabel)
}

// =============================================================================
// SIDE PANEL TESTS
// =============================================================================

func TestSidebar_ToggleThemeClosesPanel(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	require.True(t, m.Store().Snapshot().SidebarOpen)
	assert.Contains(t, m.View(), "Dark mode")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})

	snap := m.Store().Snapshot()
	assert.True(t, snap.DarkMode)
	assert.False(t, snap.SidebarOpen)
	assert.True(t, m.theme.IsDark)
	assert.Equal(t, "", snap.Draft, "panel keys are not typed into the input")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.Contains(t, m.View(), "Light mode")
}

func TestSidebar_NewChatClears(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{reply: "hi"})
	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range responses(cmd) {
		m, _ = update(t, m, r)
	}
	require.Len(t, m.Store().Snapshot().Messages, 2)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	snap := m.Store().Snapshot()
	assert.Empty(t, snap.Messages)
	assert.True(t, snap.ShowGreeting)
	assert.False(t, snap.SidebarOpen)
	assert.Contains(t, m.View(), greetingText)
}

func TestSidebar_EscCloses(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.Store().Snapshot().SidebarOpen)
}

func TestSidebar_MenuClick(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})

	z := m.menuZone
	m, _ = update(t, m, tea.MouseMsg{X: z.x0, Y: z.y, Type: tea.MouseLeft})
	require.True(t, m.Store().Snapshot().SidebarOpen)

	z = m.menuZone
	m, _ = update(t, m, tea.MouseMsg{X: z.x0, Y: z.y, Type: tea.MouseLeft})
	assert.False(t, m.Store().Snapshot().SidebarOpen)
}

func TestSidebar_MenuHiddenWhileOpen(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})
	closedHeader := m.renderHeader()
	assert.Contains(t, closedHeader, menuLabel)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.NotContains(t, m.renderHeader(), menuLabel)
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestGreetingShownUntilFirstSend(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{reply: "hi"})
	assert.Contains(t, m.View(), greetingText)

	m = typeText(t, m, "hello")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotContains(t, m.View(), greetingText)
}

func TestNewChatWhileLoadingStillShowsReply(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{reply: "pong"})
	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	pending := responses(cmd)
	require.Len(t, pending, 1)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	snap := m.Store().Snapshot()
	require.True(t, snap.ShowGreeting)
	require.True(t, snap.Loading)
	assert.Contains(t, m.View(), "Loading...")

	m, _ = update(t, m, pending[0])

	snap = m.Store().Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, model.SenderBot, snap.Messages[0].Sender)
	assert.False(t, snap.Loading)
	view := m.View()
	assert.Contains(t, view, "pong")
	assert.NotContains(t, view, "Loading...")
	assert.True(t, m.viewport.AtBottom())
}

func TestAutoScrollOnAppend(t *testing.T) {
	gen := &fakeGenerator{reply: strings.Repeat("line\n\n", 40)}
	m := newTestModel(t, gen)

	for i := 0; i < 3; i++ {
		m = typeText(t, m, "more")
		var cmd tea.Cmd
		m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		for _, r := range responses(cmd) {
			m, _ = update(t, m, r)
		}
	}

	m.viewport.GotoTop()
	require.False(t, m.viewport.AtBottom())

	m = typeText(t, m, "again")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.viewport.AtBottom())
}

func TestBotReplyEscapesStripped(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{reply: "\x1b]0;pwned\x07safe"})
	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range responses(cmd) {
		m, _ = update(t, m, r)
	}

	view := m.View()
	assert.Contains(t, view, "safe")
	assert.NotContains(t, view, "pwned")
}

func TestConfigReloadedAppliesWordWrap(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})
	m, _ = update(t, m, ConfigReloadedMsg{WordWrap: 30})

	assert.Equal(t, 30, m.bubbleWidth(200))
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeGenerator{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
