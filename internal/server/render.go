// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"html/template"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/markup"
	"github.com/jeranaias/chatbot/internal/model"
)

// FrameTranscript is the socket frame type carrying a transcript fragment.
const FrameTranscript = "transcript"

// =============================================================================
// WIRE TYPES
// =============================================================================

// Frame is pushed to the browser after each store change. Mutating
// endpoints return the same shape so the page can update without a socket.
type Frame struct {
	Type     string `json:"type"`
	HTML     string `json:"html"`
	Revision uint64 `json:"revision"`
	Appended uint64 `json:"appended"`
	Dark     bool   `json:"dark"`
	Sidebar  bool   `json:"sidebar"`
	Greeting bool   `json:"greeting"`
	Loading  bool   `json:"loading"`
}

// StateMessage is one message in a State.
type StateMessage struct {
	ID        string        `json:"id"`
	Sender    model.Sender  `json:"sender"`
	Text      string        `json:"text"`
	HTML      template.HTML `json:"html"`
	CreatedAt time.Time     `json:"created_at"`
}

// State is the full JSON view of a session's store.
type State struct {
	Revision uint64         `json:"revision"`
	Appended uint64         `json:"appended"`
	Dark     bool           `json:"dark"`
	Sidebar  bool           `json:"sidebar"`
	Greeting bool           `json:"greeting"`
	Loading  bool           `json:"loading"`
	InFlight int            `json:"in_flight"`
	Messages []StateMessage `json:"messages"`
}

// =============================================================================
// TEMPLATE VIEWS
// =============================================================================

type messageView struct {
	ID     string
	Sender string
	Label  string
	HTML   template.HTML
}

type transcriptView struct {
	Greeting bool
	Loading  bool
	Messages []messageView
}

type pageView struct {
	Dark       bool
	Sidebar    bool
	Revision   uint64
	Appended   uint64
	Transcript transcriptView
}

// renderMessage converts bot Markdown to sanitized HTML. User text is shown
// literally.
func (s *Server) renderMessage(msg model.Message) template.HTML {
	if msg.IsBot() {
		return s.html.Render(msg.Text)
	}
	return markup.PlainHTML(msg.Text)
}

func (s *Server) transcriptView(sess *Session, snap conversation.Snapshot) transcriptView {
	htmls := sess.messageHTML(snap.Messages, s.renderMessage)
	views := make([]messageView, len(snap.Messages))
	for i, msg := range snap.Messages {
		views[i] = messageView{
			ID:     msg.ID,
			Sender: msg.Sender.String(),
			Label:  msg.Sender.DisplayName(),
			HTML:   htmls[i],
		}
	}
	return transcriptView{
		Greeting: snap.ShowGreeting,
		Loading:  snap.Loading,
		Messages: views,
	}
}

func (s *Server) pageView(sess *Session, snap conversation.Snapshot) pageView {
	return pageView{
		Dark:       snap.DarkMode,
		Sidebar:    snap.SidebarOpen,
		Revision:   snap.Revision,
		Appended:   snap.Appended,
		Transcript: s.transcriptView(sess, snap),
	}
}

// frame renders the transcript fragment for a snapshot.
func (s *Server) frame(sess *Session, snap conversation.Snapshot) (Frame, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "transcript", s.transcriptView(sess, snap)); err != nil {
		return Frame{}, errors.Wrap(err, "render transcript")
	}
	return Frame{
		Type:     FrameTranscript,
		HTML:     buf.String(),
		Revision: snap.Revision,
		Appended: snap.Appended,
		Dark:     snap.DarkMode,
		Sidebar:  snap.SidebarOpen,
		Greeting: snap.ShowGreeting,
		Loading:  snap.Loading,
	}, nil
}

func (s *Server) state(sess *Session, snap conversation.Snapshot) State {
	htmls := sess.messageHTML(snap.Messages, s.renderMessage)
	msgs := make([]StateMessage, len(snap.Messages))
	for i, msg := range snap.Messages {
		msgs[i] = StateMessage{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Text:      msg.Text,
			HTML:      htmls[i],
			CreatedAt: msg.CreatedAt,
		}
	}
	return State{
		Revision: snap.Revision,
		Appended: snap.Appended,
		Dark:     snap.DarkMode,
		Sidebar:  snap.SidebarOpen,
		Greeting: snap.ShowGreeting,
		Loading:  snap.Loading,
		InFlight: snap.InFlight,
		Messages: msgs,
	}
}
