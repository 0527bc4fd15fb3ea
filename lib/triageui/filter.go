// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nassif-clinic/triage/lib/dashboard"
	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// filterBar holds the operator's query state: free-text search plus
// status and priority narrowing. Unlike a client-side filter, every
// change round-trips to the service — the list the operator sees is
// always the server's answer for the current criteria.
type filterBar struct {
	// search is the current search input (patient name or phone).
	search string

	// active is true while the search input has keyboard focus.
	active bool

	// statusIndex indexes statusCycle; 0 means no status filter.
	statusIndex int

	// priorityIndex is -1 for no priority filter, otherwise a
	// conversation.Priority value.
	priorityIndex int
}

func newFilterBar() filterBar {
	return filterBar{priorityIndex: -1}
}

// statusCycle is the f-key rotation: all, then each triage status in
// workflow order.
var statusCycle = append([]string{""}, conversation.Statuses()...)

// criteria converts the bar state into request criteria.
func (bar *filterBar) criteria() dashboard.FilterCriteria {
	criteria := dashboard.FilterCriteria{Search: strings.TrimSpace(bar.search)}
	if bar.statusIndex > 0 && bar.statusIndex < len(statusCycle) {
		status := statusCycle[bar.statusIndex]
		criteria.Status = &status
	}
	if bar.priorityIndex >= 0 {
		priority := conversation.Priority(bar.priorityIndex)
		criteria.Priority = &priority
	}
	return criteria
}

// cycleStatus advances the status filter to the next value, wrapping
// back to "all".
func (bar *filterBar) cycleStatus() {
	bar.statusIndex = (bar.statusIndex + 1) % len(statusCycle)
}

// cyclePriority advances the priority filter: all, low, medium, high,
// urgent, back to all.
func (bar *filterBar) cyclePriority() {
	bar.priorityIndex++
	if bar.priorityIndex > int(conversation.PriorityUrgent) {
		bar.priorityIndex = -1
	}
}

// handleRune appends a typed character to the search input.
func (bar *filterBar) handleRune(character rune) {
	bar.search += string(character)
}

// handleBackspace removes the last character from the search input.
// Returns true if the input changed.
func (bar *filterBar) handleBackspace() bool {
	if len(bar.search) == 0 {
		return false
	}
	runes := []rune(bar.search)
	bar.search = string(runes[:len(runes)-1])
	return true
}

// clear resets everything: search text, status, and priority.
func (bar *filterBar) clear() {
	bar.search = ""
	bar.active = false
	bar.statusIndex = 0
	bar.priorityIndex = -1
}

// empty reports whether no filtering is in effect.
func (bar *filterBar) empty() bool {
	return bar.search == "" && bar.statusIndex == 0 && bar.priorityIndex < 0
}

// view renders the filter line. Hidden when inactive and empty.
func (bar *filterBar) view(theme Theme, width int) string {
	if !bar.active && bar.empty() {
		return ""
	}

	var parts []string
	if bar.active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		parts = append(parts, "/ "+bar.search+cursor)
	} else if bar.search != "" {
		parts = append(parts, "busca: "+bar.search)
	}
	if bar.statusIndex > 0 {
		parts = append(parts, "status: "+conversation.ParsePhase(statusCycle[bar.statusIndex]).Label())
	}
	if bar.priorityIndex >= 0 {
		parts = append(parts, "prioridade: "+conversation.Priority(bar.priorityIndex).Label())
	}

	style := lipgloss.NewStyle().Foreground(theme.NormalText).Width(width)
	if !bar.active {
		style = style.Foreground(theme.FaintText)
	}
	return style.Render(" " + strings.Join(parts, "  ·  "))
}
