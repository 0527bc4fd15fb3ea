// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// Column widths for the conversation list. The name column fills
// remaining space; all others are fixed.
const (
	columnWidthPriority = 3  // "P2 "
	columnWidthStatus   = 13 // longest label "Em Atendimento" truncated + space
	columnWidthCount    = 5  // " 999+"
	columnWidthAge      = 6  // " 59min"
)

// listRenderer handles row rendering for the conversation list pane
// within a given width.
type listRenderer struct {
	theme Theme
	width int
	now   time.Time
}

func newListRenderer(theme Theme, width int, now time.Time) listRenderer {
	return listRenderer{theme: theme, width: width, now: now}
}

// renderRow renders one conversation as a table row:
//
//	P3 Atenção       Maria Silva [gestante]          🤖 14  5min
//	P1 Em Atendim…   +55 11 98765-4321                  3  1h
//
// The bot icon appears when the chatbot resolved the conversation
// without human intervention. The age column shows time since the
// last patient message.
func (renderer listRenderer) renderRow(summary conversation.Summary, selected bool) string {
	nameWidth := renderer.width - columnWidthPriority - columnWidthStatus - columnWidthCount - columnWidthAge
	if nameWidth < 10 {
		nameWidth = 10
	}

	phase := conversation.ParsePhase(summary.Status)

	priority := fmt.Sprintf("P%d ", summary.Priority)
	status := padOrTruncate(phase.Label(), columnWidthStatus)

	name := summary.DisplayName()
	if len(summary.Tags) > 0 {
		name += " [" + strings.Join(summary.Tags, ", ") + "]"
	}
	name = padOrTruncate(name, nameWidth)

	count := summary.MessageCount
	countText := fmt.Sprintf("%4d", count)
	if count > 999 {
		countText = "999+"
	}
	if summary.BotResolution && !summary.HumanIntervention {
		countText = "🤖" + countText[2:]
	}
	countText += " "

	age := padLeft(relativeAge(renderer.now, summary.LastMessageAt), columnWidthAge)

	if selected {
		style := lipgloss.NewStyle().
			Background(renderer.theme.SelectedBackground).
			Foreground(renderer.theme.SelectedForeground)
		return style.Render(priority + status + name + countText + age)
	}

	priorityStyle := lipgloss.NewStyle().
		Foreground(renderer.theme.PriorityColor(summary.Priority)).
		Bold(summary.Priority >= conversation.PriorityHigh)
	statusStyle := lipgloss.NewStyle().Foreground(renderer.theme.PhaseColor(phase))
	nameStyle := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	faintStyle := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)

	return priorityStyle.Render(priority) +
		statusStyle.Render(status) +
		nameStyle.Render(name) +
		faintStyle.Render(countText+age)
}

// relativeAge formats the time since a timestamp compactly: "agora",
// "5min", "3h", "2d". Zero timestamps render as a dash.
func relativeAge(now, timestamp time.Time) string {
	if timestamp.IsZero() {
		return "-"
	}
	elapsed := now.Sub(timestamp)
	switch {
	case elapsed < time.Minute:
		return "agora"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dmin", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd", int(elapsed.Hours()/24))
	}
}

// padOrTruncate fits text to exactly width columns (including one
// trailing space of separation when padded).
func padOrTruncate(text string, width int) string {
	textWidth := ansi.StringWidth(text)
	if textWidth >= width {
		return ansi.Truncate(text, width-2, "…") + " "
	}
	return text + strings.Repeat(" ", width-textWidth)
}

// padLeft right-aligns text within width columns.
func padLeft(text string, width int) string {
	textWidth := ansi.StringWidth(text)
	if textWidth >= width {
		return text
	}
	return strings.Repeat(" ", width-textWidth) + text
}
