// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup turns bot reply text into something a renderer can display.
//
// Bot text is Markdown from an untrusted remote service. For the browser it
// is converted with goldmark and then passed through a bluemonday allow-list;
// only that sanitized output is ever marked as template.HTML. For terminals
// it is stripped of escape sequences and rendered with glamour.
//
// User text is never interpreted as markup.
package markup
