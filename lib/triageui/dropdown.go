// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// dropdownOption is a single selectable item in the status dropdown.
type dropdownOption struct {
	Label string // Display text shown in the dropdown.
	Value string // Wire value sent to the service on selection.
}

// statusDropdown is a floating menu for changing a conversation's
// triage status. It captures all keyboard input while active (up/down
// to navigate, enter to select, escape to dismiss). Options are
// limited to operator-assignable statuses; chatbot flow states are
// machine-owned and never offered.
type statusDropdown struct {
	options        []dropdownOption
	cursor         int
	conversationID string
}

// newStatusDropdown creates a dropdown for the given conversation
// with the cursor on its current status, when assignable.
func newStatusDropdown(conversationID, currentStatus string) *statusDropdown {
	dropdown := &statusDropdown{conversationID: conversationID}
	for index, status := range conversation.Statuses() {
		dropdown.options = append(dropdown.options, dropdownOption{
			Label: conversation.ParsePhase(status).Label(),
			Value: status,
		})
		if status == currentStatus {
			dropdown.cursor = index
		}
	}
	return dropdown
}

// moveUp moves the cursor up by one, wrapping to the bottom.
func (dropdown *statusDropdown) moveUp() {
	dropdown.cursor--
	if dropdown.cursor < 0 {
		dropdown.cursor = len(dropdown.options) - 1
	}
}

// moveDown moves the cursor down by one, wrapping to the top.
func (dropdown *statusDropdown) moveDown() {
	dropdown.cursor++
	if dropdown.cursor >= len(dropdown.options) {
		dropdown.cursor = 0
	}
}

// selected returns the currently highlighted option.
func (dropdown *statusDropdown) selected() dropdownOption {
	return dropdown.options[dropdown.cursor]
}

// width returns the total visible width of the rendered dropdown.
func (dropdown *statusDropdown) width() int {
	maxLabelWidth := 0
	for _, option := range dropdown.options {
		labelWidth := ansi.StringWidth(option.Label)
		if labelWidth > maxLabelWidth {
			maxLabelWidth = labelWidth
		}
	}
	// " > LABEL " plus one column padding on each side.
	return 3 + maxLabelWidth + 2
}

// render produces the dropdown lines for overlay splicing. Each line
// has the same visible width and a solid background for separation
// from the underlying content.
func (dropdown *statusDropdown) render(theme Theme) []string {
	totalWidth := dropdown.width()
	innerWidth := totalWidth - 2

	backgroundStyle := lipgloss.NewStyle().
		Background(theme.OverlayBackground)
	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	var lines []string
	for index, option := range dropdown.options {
		marker := " "
		if index == dropdown.cursor {
			marker = ">"
		}

		content := marker + " " + option.Label
		rightPad := innerWidth - ansi.StringWidth(content)
		if rightPad < 0 {
			rightPad = 0
		}
		line := " " + content + strings.Repeat(" ", rightPad) + " "

		if index == dropdown.cursor {
			lines = append(lines, selectedStyle.Render(line))
		} else {
			lines = append(lines, backgroundStyle.Render(line))
		}
	}
	return lines
}
