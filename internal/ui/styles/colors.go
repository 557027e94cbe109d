// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Colors are declared as light/dark pairs. The pair is resolved against the
// conversation's theme flag with Pick rather than the terminal background.

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Background - Page and transcript background
var Background = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"}

// Panel - Side panel background
var Panel = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1F2937"}

// InputBg - Input box background
var InputBg = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#374151"}

// Border - Input and panel borders
var Border = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

// TextSecondary - Panel items and labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#FFFFFF"}

// TextMuted - Placeholder and hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#9CA3AF"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - blue on light, slate on dark
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#374151"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

// Bot message bubble
var BotBubbleBg = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"}
var BotBubbleFg = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

// =============================================================================
// ACCENTS
// =============================================================================

// Accent - Send affordance and spinner
var Accent = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#FFFFFF"}

// SpinnerArc - Spinner highlight
var SpinnerArc = lipgloss.AdaptiveColor{Light: "#1C64F2", Dark: "#1C64F2"}

// Pick resolves a color pair for the given theme.
func Pick(c lipgloss.AdaptiveColor, dark bool) lipgloss.Color {
	if dark {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}
