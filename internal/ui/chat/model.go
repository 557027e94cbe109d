// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/markup"
	"github.com/jeranaias/chatbot/internal/ui/styles"
)

// =============================================================================
// LAYOUT CONSTANTS
// =============================================================================

// Row heights of the fixed regions. The transcript viewport takes the rest.
const (
	headerHeight = 1
	inputHeight  = 3 // rounded border + one line
	helpHeight   = 1

	menuLabel = "[=]"
	sendLabel = "[Send]"

	promptText = "> "
)

// zone is a clickable single-row span of cells, [x0, x1) on row y.
type zone struct {
	x0, x1, y int
}

func (z zone) contains(x, y int) bool {
	return y == z.y && x >= z.x0 && x < z.x1
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	store *conversation.Store
	gen   conversation.Generator
	ctx   context.Context

	// Last snapshot rendered
	snap         conversation.Snapshot
	lastAppended uint64

	// Styling
	themes [2]*styles.Theme
	theme  *styles.Theme
	term   *markup.TermRenderer

	// Dimensions
	width    int
	height   int
	wordWrap int
	mainX    int

	// Hit zones, recomputed on every layout
	sendZone zone
	menuZone zone

	// Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keyMap   KeyMap
}

// New creates a chat model bound to store. Requests are dispatched to gen.
func New(store *conversation.Store, gen conversation.Generator) Model {
	ti := textinput.New()
	ti.Prompt = promptText
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	m := Model{
		store:    store,
		gen:      gen,
		ctx:      context.Background(),
		themes:   [2]*styles.Theme{styles.NewTheme(false), styles.NewTheme(true)},
		term:     markup.NewTermRenderer(),
		width:    80,
		height:   24,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		keyMap:   DefaultKeyMap(),
	}
	m.sync()
	return m
}

// WithContext sets the context passed to generation requests.
func (m Model) WithContext(ctx context.Context) Model {
	m.ctx = ctx
	return m
}

// WithWordWrap caps the width of message bubbles. Zero follows the terminal.
func (m Model) WithWordWrap(width int) Model {
	m.wordWrap = width
	m.sync()
	return m
}

// Store returns the conversation store driven by this view.
func (m Model) Store() *conversation.Store {
	return m.store
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// View renders the model.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// STATE SYNC
// =============================================================================

// sync pulls a fresh snapshot from the store, lays out the screen and
// re-renders the transcript. When a message was appended since the last
// sync the transcript scrolls to the newest entry.
func (m *Model) sync() {
	snap := m.store.Snapshot()
	m.snap = snap

	if snap.DarkMode {
		m.theme = m.themes[1]
	} else {
		m.theme = m.themes[0]
	}

	if snap.SidebarOpen {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
	m.applyInputStyles()

	m.layout()
	m.viewport.SetContent(m.renderTranscript())

	if snap.Appended != m.lastAppended {
		m.lastAppended = snap.Appended
		m.viewport.GotoBottom()
	}
}

// layout computes widget sizes and click zones from the window size.
func (m *Model) layout() {
	m.mainX = 0
	if m.snap.SidebarOpen {
		m.mainX = styles.PanelWidth + 1
	}
	mainWidth := m.mainWidth()

	vpHeight := m.height - headerHeight - inputHeight - helpHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight

	// Input box: border (1) + padding (1) on each side
	content := m.inputContentWidth()
	inputWidth := content - len(sendLabel) - len(promptText) - 2
	if inputWidth < 1 {
		inputWidth = 1
	}
	m.input.Width = inputWidth

	sendX := m.mainX + 2 + content - len(sendLabel)
	m.sendZone = zone{x0: sendX, x1: sendX + len(sendLabel), y: headerHeight + vpHeight + 1}

	if m.snap.SidebarOpen {
		// Menu sits at the top of the panel, inside its padding
		m.menuZone = zone{x0: 1, x1: 1 + len(menuLabel), y: 1}
	} else {
		m.menuZone = zone{x0: 1, x1: 1 + len(menuLabel), y: 0}
	}
}

func (m Model) mainWidth() int {
	w := m.width - m.mainX
	if w < 1 {
		w = 1
	}
	return w
}

func (m Model) inputContentWidth() int {
	w := m.mainWidth() - 4
	if w < len(sendLabel)+1 {
		w = len(sendLabel) + 1
	}
	return w
}

func (m *Model) applyInputStyles() {
	m.input.TextStyle = m.theme.InputText
	m.input.PlaceholderStyle = m.theme.InputPlaceholder
	m.input.PromptStyle = m.theme.SendButton
	m.spinner.Style = m.theme.Spinner
}
