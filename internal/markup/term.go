// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/unicode/norm"
)

// Glamour standard style names.
const (
	StyleDark  = "dark"
	StyleLight = "light"
)

// minWrap is the narrowest wrap width handed to glamour.
const minWrap = 20

// =============================================================================
// TERMINAL RENDERER
// =============================================================================

type termKey struct {
	dark  bool
	width int
}

// TermRenderer renders Markdown to ANSI text for a terminal.
// Glamour renderers are built lazily and cached per theme and width.
type TermRenderer struct {
	mu        sync.Mutex
	renderers map[termKey]*glamour.TermRenderer
}

// NewTermRenderer creates an empty terminal renderer cache.
func NewTermRenderer() *TermRenderer {
	return &TermRenderer{renderers: make(map[termKey]*glamour.TermRenderer)}
}

// Render converts text to styled terminal output wrapped at width.
// Escape sequences in text are removed first. On glamour failure the
// stripped text is returned unstyled.
func (r *TermRenderer) Render(text string, width int, dark bool) string {
	clean := StripControl(text)

	renderer, err := r.renderer(dark, width)
	if err != nil {
		return clean
	}

	out, err := renderer.Render(clean)
	if err != nil {
		return clean
	}
	return strings.Trim(out, "\n")
}

func (r *TermRenderer) renderer(dark bool, width int) (*glamour.TermRenderer, error) {
	if width < minWrap {
		width = minWrap
	}
	key := termKey{dark: dark, width: width}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.renderers[key]; ok {
		return tr, nil
	}

	style := StyleLight
	if dark {
		style = StyleDark
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.renderers[key] = tr
	return tr, nil
}

// StripControl removes ANSI escape sequences and C0 control characters other
// than newline and tab, and composes the result to NFC so cell widths are
// measured on precomposed characters.
func StripControl(text string) string {
	stripped := norm.NFC.String(ansi.Strip(text))
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		case r >= 0x80 && r < 0xa0:
			return -1
		default:
			return r
		}
	}, stripped)
}
