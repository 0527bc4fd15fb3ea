// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// Theme defines the color palette for the triage dashboard. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Priority colors (indexed 0-3: low, medium, high, urgent).
	PriorityColors [4]lipgloss.Color

	// Triage status colors.
	StatusPending           lipgloss.Color
	StatusInProgress        lipgloss.Color
	StatusCompleted         lipgloss.Color
	StatusRequiresAttention lipgloss.Color
	StatusSpam              lipgloss.Color

	// Chatbot flow states and unrecognized statuses.
	StatusFlow lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Connection indicator in the status bar.
	ChannelLive lipgloss.Color
	ChannelDown lipgloss.Color

	// Chat bubbles in the detail pane.
	PatientBubble  lipgloss.Color
	BotBubble      lipgloss.Color
	OperatorBubble lipgloss.Color

	// Modal and dropdown overlays.
	OverlayBackground lipgloss.Color
}

// PriorityColor returns the color for a priority level. Out-of-range
// values return NormalText.
func (theme Theme) PriorityColor(priority conversation.Priority) lipgloss.Color {
	if priority < 0 || int(priority) >= len(theme.PriorityColors) {
		return theme.NormalText
	}
	return theme.PriorityColors[priority]
}

// PhaseColor returns the color for a conversation status. Flow states
// share one muted color since the bot, not an operator, is driving
// those conversations.
func (theme Theme) PhaseColor(phase conversation.Phase) lipgloss.Color {
	switch phase.Kind {
	case conversation.PhaseFlow:
		return theme.StatusFlow
	case conversation.PhaseUnknown:
		return theme.FaintText
	}
	switch phase.Raw {
	case string(conversation.StatusPending):
		return theme.StatusPending
	case string(conversation.StatusInProgress):
		return theme.StatusInProgress
	case string(conversation.StatusCompleted):
		return theme.StatusCompleted
	case string(conversation.StatusRequiresAttention):
		return theme.StatusRequiresAttention
	case string(conversation.StatusSpam):
		return theme.StatusSpam
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	PriorityColors: [4]lipgloss.Color{
		lipgloss.Color("245"), // low: gray
		lipgloss.Color("75"),  // medium: blue
		lipgloss.Color("208"), // high: orange
		lipgloss.Color("196"), // urgent: bright red
	},

	StatusPending:           lipgloss.Color("220"), // amber
	StatusInProgress:        lipgloss.Color("75"),  // blue
	StatusCompleted:         lipgloss.Color("114"), // green
	StatusRequiresAttention: lipgloss.Color("196"), // red
	StatusSpam:              lipgloss.Color("240"), // dim gray
	StatusFlow:              lipgloss.Color("141"), // light purple

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	ChannelLive: lipgloss.Color("114"),
	ChannelDown: lipgloss.Color("196"),

	PatientBubble:  lipgloss.Color("252"),
	BotBubble:      lipgloss.Color("245"),
	OperatorBubble: lipgloss.Color("75"),

	OverlayBackground: lipgloss.Color("237"),
}
