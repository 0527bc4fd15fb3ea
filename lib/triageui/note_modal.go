// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// noteModal is a centered overlay with a small multi-line text editor
// for operator notes. The draft survives a failed submission: the
// modal stays open with the text intact so the operator can retry or
// copy it out.
type noteModal struct {
	// conversationID is the conversation the note attaches to, shown
	// in the modal title.
	conversationID string
	patientName    string

	lines   [][]rune
	cursorY int
	cursorX int
	theme   Theme

	// submitting is true while the note is in flight; input is
	// ignored until the result comes back.
	submitting bool
}

func newNoteModal(conversationID, patientName string, theme Theme) *noteModal {
	return &noteModal{
		conversationID: conversationID,
		patientName:    patientName,
		lines:          [][]rune{{}},
		theme:          theme,
	}
}

// value returns the current text content of the note.
func (modal *noteModal) value() string {
	parts := make([]string, len(modal.lines))
	for index, line := range modal.lines {
		parts[index] = string(line)
	}
	return strings.Join(parts, "\n")
}

// update processes a key message for the modal's text editor.
func (modal *noteModal) update(message tea.KeyMsg) {
	if modal.submitting {
		return
	}

	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		for _, character := range message.Runes {
			modal.insertRune(character)
		}

	case tea.KeyEnter:
		line := modal.lines[modal.cursorY]
		before := make([]rune, modal.cursorX)
		copy(before, line[:modal.cursorX])
		after := make([]rune, len(line)-modal.cursorX)
		copy(after, line[modal.cursorX:])

		modal.lines[modal.cursorY] = before
		updated := make([][]rune, len(modal.lines)+1)
		copy(updated, modal.lines[:modal.cursorY+1])
		updated[modal.cursorY+1] = after
		copy(updated[modal.cursorY+2:], modal.lines[modal.cursorY+1:])
		modal.lines = updated
		modal.cursorY++
		modal.cursorX = 0

	case tea.KeyBackspace:
		if modal.cursorX > 0 {
			line := modal.lines[modal.cursorY]
			modal.lines[modal.cursorY] = append(line[:modal.cursorX-1], line[modal.cursorX:]...)
			modal.cursorX--
		} else if modal.cursorY > 0 {
			previous := modal.lines[modal.cursorY-1]
			current := modal.lines[modal.cursorY]
			modal.cursorX = len(previous)
			modal.lines[modal.cursorY-1] = append(previous, current...)
			modal.lines = append(modal.lines[:modal.cursorY], modal.lines[modal.cursorY+1:]...)
			modal.cursorY--
		}

	case tea.KeyLeft:
		if modal.cursorX > 0 {
			modal.cursorX--
		} else if modal.cursorY > 0 {
			modal.cursorY--
			modal.cursorX = len(modal.lines[modal.cursorY])
		}

	case tea.KeyRight:
		if modal.cursorX < len(modal.lines[modal.cursorY]) {
			modal.cursorX++
		} else if modal.cursorY < len(modal.lines)-1 {
			modal.cursorY++
			modal.cursorX = 0
		}

	case tea.KeyUp:
		if modal.cursorY > 0 {
			modal.cursorY--
			modal.clampCursorX()
		}

	case tea.KeyDown:
		if modal.cursorY < len(modal.lines)-1 {
			modal.cursorY++
			modal.clampCursorX()
		}

	case tea.KeyHome, tea.KeyCtrlA:
		modal.cursorX = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		modal.cursorX = len(modal.lines[modal.cursorY])
	}
}

func (modal *noteModal) insertRune(character rune) {
	line := modal.lines[modal.cursorY]
	updated := make([]rune, len(line)+1)
	copy(updated, line[:modal.cursorX])
	updated[modal.cursorX] = character
	copy(updated[modal.cursorX+1:], line[modal.cursorX:])
	modal.lines[modal.cursorY] = updated
	modal.cursorX++
}

func (modal *noteModal) clampCursorX() {
	if modal.cursorX > len(modal.lines[modal.cursorY]) {
		modal.cursorX = len(modal.lines[modal.cursorY])
	}
}

// Modal chrome: 2 columns border + 2 padding horizontal; 2 lines
// border + 1 title + 1 footer vertical.
const (
	noteModalChromeWidth  = 4
	noteModalChromeHeight = 4
	noteModalMinInner     = 30
	noteModalInnerHeight  = 6
)

// render produces the modal overlay lines for splicing onto the view,
// plus the anchor position for centering.
func (modal *noteModal) render(screenWidth, screenHeight int) ([]string, int, int) {
	modalWidth := screenWidth / 2
	if modalWidth < noteModalMinInner+noteModalChromeWidth {
		modalWidth = noteModalMinInner + noteModalChromeWidth
	}
	if modalWidth > screenWidth {
		modalWidth = screenWidth
	}
	innerWidth := modalWidth - noteModalChromeWidth
	innerHeight := noteModalInnerHeight

	backgroundStyle := lipgloss.NewStyle().
		Background(modal.theme.OverlayBackground)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(modal.theme.HeaderForeground).
		Background(modal.theme.OverlayBackground)
	footerStyle := lipgloss.NewStyle().
		Foreground(modal.theme.FaintText).
		Background(modal.theme.OverlayBackground)
	textStyle := lipgloss.NewStyle().
		Foreground(modal.theme.NormalText).
		Background(modal.theme.OverlayBackground)
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	title := titleStyle.Render("Nota — " + modal.patientName)
	if pad := innerWidth - ansi.StringWidth(title); pad > 0 {
		title += backgroundStyle.Render(strings.Repeat(" ", pad))
	}

	footerText := "Ctrl+D enviar  Esc cancelar"
	if modal.submitting {
		footerText = "Enviando..."
	}
	footer := footerStyle.Render(footerText)
	if pad := innerWidth - ansi.StringWidth(footer); pad > 0 {
		footer += backgroundStyle.Render(strings.Repeat(" ", pad))
	}

	// Scroll the text area when the cursor is past the visible rows.
	scrollOffset := 0
	if modal.cursorY >= innerHeight {
		scrollOffset = modal.cursorY - innerHeight + 1
	}

	var textLines []string
	for lineIndex := scrollOffset; lineIndex < scrollOffset+innerHeight; lineIndex++ {
		var rendered string
		if lineIndex < len(modal.lines) {
			line := modal.lines[lineIndex]
			if lineIndex == modal.cursorY && !modal.submitting {
				if modal.cursorX >= len(line) {
					rendered = textStyle.Render(string(line)) + cursorStyle.Render(" ")
				} else {
					rendered = textStyle.Render(string(line[:modal.cursorX])) +
						cursorStyle.Render(string(line[modal.cursorX:modal.cursorX+1])) +
						textStyle.Render(string(line[modal.cursorX+1:]))
				}
			} else {
				rendered = textStyle.Render(string(line))
			}
		}
		if pad := innerWidth - ansi.StringWidth(rendered); pad > 0 {
			rendered += backgroundStyle.Render(strings.Repeat(" ", pad))
		}
		textLines = append(textLines, rendered)
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.theme.BorderColor).
		Background(modal.theme.OverlayBackground)

	inner := title + "\n" + strings.Join(textLines, "\n") + "\n" + footer
	resultLines := strings.Split(borderStyle.Render(inner), "\n")

	renderedWidth := 0
	if len(resultLines) > 0 {
		renderedWidth = ansi.StringWidth(resultLines[0])
	}
	anchorX := (screenWidth - renderedWidth) / 2
	anchorY := (screenHeight - len(resultLines)) / 2
	if anchorX < 0 {
		anchorX = 0
	}
	if anchorY < 0 {
		anchorY = 0
	}
	return resultLines, anchorX, anchorY
}
