// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// HTML TESTS
// =============================================================================

func TestHTMLRenderer_Markdown(t *testing.T) {
	r := NewHTMLRenderer()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"bold", "**Hi!**", []string{"<strong>Hi!</strong>"}},
		{"emphasis", "_soft_", []string{"<em>soft</em>"}},
		{"strikethrough", "~~old~~", []string{"<del>old</del>"}},
		{"heading", "# Title", []string{"<h1>Title</h1>"}},
		{"list", "- a\n- b", []string{"<ul>", "<li>a</li>", "<li>b</li>"}},
		{"code block", "```go\nfmt.Println()\n```", []string{`<code class="language-go">`, "fmt.Println()"}},
		{"hard wrap", "line one\nline two", []string{"line one<br"}},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"link", "[site](https://example.com)", []string{`href="https://example.com"`, `target="_blank"`, "nofollow"}},
		{"autolink", "see https://example.com", []string{`href="https://example.com"`}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := string(r.Render(tc.in))
			for _, want := range tc.want {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestHTMLRenderer_Sanitizes(t *testing.T) {
	r := NewHTMLRenderer()

	tests := []struct {
		name   string
		in     string
		banned []string
	}{
		{"script tag", "<script>alert(1)</script>", []string{"<script", "alert(1)</script>"}},
		{"img onerror", `<img src=x onerror="alert(1)">`, []string{"<img", "onerror"}},
		{"markdown image", "![x](https://example.com/x.png)", []string{"<img"}},
		{"javascript link", "[click](javascript:alert(1))", []string{"javascript:"}},
		{"inline handler", `<a href="https://x.test" onclick="steal()">x</a>`, []string{"onclick"}},
		{"style tag", "<style>body{display:none}</style>", []string{"<style"}},
		{"iframe", `<iframe src="https://evil.test"></iframe>`, []string{"<iframe"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := strings.ToLower(string(r.Render(tc.in)))
			for _, banned := range tc.banned {
				assert.NotContains(t, got, banned)
			}
		})
	}
}

func TestPlainHTML(t *testing.T) {
	got := string(PlainHTML("<b>hi</b> & **bye**\nnext"))

	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt; &amp; **bye**<br>next", got)
}

// =============================================================================
// TERMINAL TESTS
// =============================================================================

func TestStripControl(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"keeps newlines and tabs", "a\n\tb", "a\n\tb"},
		{"colour", "\x1b[31mred\x1b[0m", "red"},
		{"title sequence", "\x1b]0;pwned\x07text", "text"},
		{"clear screen", "\x1b[2Jafter", "after"},
		{"bell and backspace", "a\x07b\x08c", "abc"},
		{"unicode", "héllo 世界", "héllo 世界"},
		{"combining accent composed", "cafe\u0301", "caf\u00e9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripControl(tc.in))
		})
	}
}

func TestTermRenderer_RendersMarkdown(t *testing.T) {
	r := NewTermRenderer()

	out := r.Render("**Hi!**", 60, true)

	assert.Contains(t, out, "Hi!")
	assert.NotContains(t, out, "**")
}

func TestTermRenderer_StripsRemoteEscapes(t *testing.T) {
	r := NewTermRenderer()

	out := r.Render("\x1b]0;pwned\x07safe \x1b[2Jtext", 60, false)

	assert.NotContains(t, out, "pwned")
	assert.NotContains(t, out, "\x1b[2J")
	assert.NotContains(t, out, "\x07")
	assert.Contains(t, out, "safe")
}

func TestTermRenderer_CachesPerThemeAndWidth(t *testing.T) {
	r := NewTermRenderer()

	r.Render("a", 40, true)
	r.Render("b", 40, true)
	r.Render("c", 40, false)
	r.Render("d", 80, false)
	r.Render("e", 5, false) // clamped to minimum width
	r.Render("f", 10, false)

	assert.Len(t, r.renderers, 4)
}
