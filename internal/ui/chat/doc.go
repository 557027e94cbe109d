// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the terminal chat view.

The chat package renders a conversation.Store as a Bubble Tea program: a
scrolling transcript, a single-line input with a send affordance, and an
optional side panel holding the theme switch and the new-chat action.

# Key Components

## Model (model.go)

The Model owns the Bubble Tea widgets (viewport, text input, spinner) and a
reference to the Store. It never keeps its own copy of the conversation;
after every transition it takes a fresh Snapshot and re-renders from it.

## Update Loop (update.go)

  - enter or a click on [Send] submits the draft
  - ctrl+b or a click on the menu toggles the side panel
  - in the panel, t switches theme and n starts a new chat
  - generation runs as a tea.Cmd and comes back as a ResponseMsg

## View Rendering (view.go)

  - user messages right aligned, bot replies left aligned (Markdown via glamour)
  - a spinner placeholder while a request is outstanding
  - a centred greeting until the first send after start or clear

# Usage

	store := conversation.NewStore()
	m := chat.New(store, generate.NewClient())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
