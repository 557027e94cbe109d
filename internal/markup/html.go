// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

// HTMLRenderer converts Markdown to sanitized HTML.
// It is safe for concurrent use.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLRenderer creates a renderer with GitHub-flavoured Markdown and the
// default sanitization policy.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: Policy(),
	}
}

// Render converts text to sanitized HTML. If Markdown conversion fails the
// text is returned escaped.
func (r *HTMLRenderer) Render(text string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return PlainHTML(text)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized above
}

// PlainHTML escapes text for literal display, preserving line breaks.
func PlainHTML(text string) template.HTML {
	escaped := html.EscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped) //nolint:gosec // escaped above
}

// =============================================================================
// SANITIZATION POLICY
// =============================================================================

var (
	codeClassPattern = regexp.MustCompile(`^language-[\w+#.-]+$`)
	checkboxPattern  = regexp.MustCompile(`^checkbox$`)
)

// Policy returns the allow-list applied to rendered bot replies: text
// formatting, lists, code, quotes, tables and task lists. Links are kept only
// for http, https and mailto and always open in a new tab. Images, scripts,
// styles, forms and event handler attributes are removed.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr", "span",
		"strong", "b", "em", "i", "del", "s",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("class").Matching(codeClassPattern).OnElements("code")
	p.AllowAttrs("align").Matching(bluemonday.CellAlign).OnElements("th", "td")

	// GFM task list items
	p.AllowAttrs("type").Matching(checkboxPattern).OnElements("input")
	p.AllowAttrs("checked", "disabled").Matching(bluemonday.Paragraph).OnElements("input")

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return p
}
