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

// detailPane renders the full history of the selected conversation:
// a header with patient data and AI triage output, the message
// transcript as chat bubbles, and operator notes newest-first. The
// pane owns its scroll state; content is rebuilt into a line buffer
// on every data or size change and the viewport is a window into it.
type detailPane struct {
	theme  Theme
	width  int
	height int

	lines        []string
	scrollOffset int
}

func newDetailPane(theme Theme) detailPane {
	return detailPane{theme: theme}
}

// setSize updates the pane dimensions. The caller re-renders content
// afterwards; scroll position is clamped to the new range.
func (pane *detailPane) setSize(width, height int) {
	pane.width = width
	pane.height = height
	pane.clampScroll()
}

// scrollUp and scrollDown move the viewport by count lines.
func (pane *detailPane) scrollUp(count int) {
	pane.scrollOffset -= count
	pane.clampScroll()
}

func (pane *detailPane) scrollDown(count int) {
	pane.scrollOffset += count
	pane.clampScroll()
}

func (pane *detailPane) scrollToTop()    { pane.scrollOffset = 0 }
func (pane *detailPane) scrollToBottom() { pane.scrollOffset = len(pane.lines); pane.clampScroll() }

func (pane *detailPane) clampScroll() {
	maxOffset := len(pane.lines) - pane.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if pane.scrollOffset > maxOffset {
		pane.scrollOffset = maxOffset
	}
	if pane.scrollOffset < 0 {
		pane.scrollOffset = 0
	}
}

// setContent rebuilds the line buffer from a loaded detail. A nil
// detail with loading set shows a placeholder; a nil detail with an
// error shows the failure.
func (pane *detailPane) setContent(detail *conversation.Detail, loading bool, loadErr error) {
	faint := lipgloss.NewStyle().Foreground(pane.theme.FaintText)

	switch {
	case loadErr != nil:
		errorStyle := lipgloss.NewStyle().Foreground(pane.theme.StatusRequiresAttention)
		pane.lines = []string{
			"",
			errorStyle.Render("  Falha ao carregar a conversa:"),
			faint.Render("  " + loadErr.Error()),
			"",
			faint.Render("  r para tentar novamente"),
		}
	case loading:
		pane.lines = []string{"", faint.Render("  Carregando...")}
	case detail == nil:
		pane.lines = []string{"", faint.Render("  Selecione uma conversa")}
	default:
		pane.lines = pane.buildLines(detail)
	}
	pane.clampScroll()
}

// buildLines renders the full detail content into display lines.
func (pane *detailPane) buildLines(detail *conversation.Detail) []string {
	var lines []string
	lines = append(lines, pane.headerLines(&detail.Conversation)...)

	lines = append(lines, "")
	lines = append(lines, pane.sectionTitle(fmt.Sprintf("Mensagens (%d)", len(detail.Messages))))
	for _, message := range detail.Messages {
		lines = append(lines, pane.messageLines(message)...)
	}

	lines = append(lines, "")
	lines = append(lines, pane.sectionTitle(fmt.Sprintf("Notas (%d)", len(detail.Notes))))
	if len(detail.Notes) == 0 {
		faint := lipgloss.NewStyle().Foreground(pane.theme.FaintText)
		lines = append(lines, faint.Render("  Nenhuma nota. n para adicionar."))
	}
	// The server orders notes newest first; keep that order so the
	// latest annotation sits at the top of the section.
	for _, note := range detail.Notes {
		lines = append(lines, pane.noteLines(note)...)
	}
	return lines
}

// headerLines renders the patient block and the AI triage output.
func (pane *detailPane) headerLines(summary *conversation.Summary) []string {
	phase := conversation.ParsePhase(summary.Status)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(pane.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(pane.theme.FaintText)
	statusStyle := lipgloss.NewStyle().Foreground(pane.theme.PhaseColor(phase)).Bold(true)
	priorityStyle := lipgloss.NewStyle().Foreground(pane.theme.PriorityColor(summary.Priority))

	lines := []string{
		titleStyle.Render(" " + summary.DisplayName()),
		faint.Render(" " + summary.Phone),
	}
	if summary.PatientCPF != "" {
		lines = append(lines, faint.Render(" CPF "+summary.PatientCPF))
	}

	lines = append(lines,
		" "+statusStyle.Render(phase.Label())+
			faint.Render("  ·  ")+
			priorityStyle.Render(summary.Priority.Label()),
	)

	if summary.SentimentScore != nil {
		lines = append(lines, faint.Render(fmt.Sprintf(" Sentimento %+d", *summary.SentimentScore)))
	}
	if summary.ReviewedBy != "" {
		lines = append(lines, faint.Render(" Revisado por "+summary.ReviewedBy))
	}

	if summary.AISummary != "" {
		lines = append(lines, "", pane.sectionTitle("Resumo IA"))
		lines = append(lines, pane.wrapText(summary.AISummary, " ")...)
	}
	if summary.AISuggestedAction != "" {
		suggestionStyle := lipgloss.NewStyle().Foreground(pane.theme.StatusPending)
		lines = append(lines, suggestionStyle.Render(" → "+summary.AISuggestedAction))
	}
	return lines
}

// messageLines renders one transcript message as a bubble. Patient
// messages sit on the left; bot and operator messages are indented
// right, mirroring the chat the patient saw.
func (pane *detailPane) messageLines(message conversation.Message) []string {
	const bubbleIndent = 6

	var labelColor, bodyColor lipgloss.Color
	indent := " "
	label := "Paciente"
	switch {
	case message.FromPatient():
		labelColor = pane.theme.HeaderForeground
		bodyColor = pane.theme.PatientBubble
	case message.Sender == "bot":
		label = "Bot"
		labelColor = pane.theme.FaintText
		bodyColor = pane.theme.BotBubble
		indent = strings.Repeat(" ", bubbleIndent)
	default:
		label = message.Sender
		labelColor = pane.theme.OperatorBubble
		bodyColor = pane.theme.NormalText
		indent = strings.Repeat(" ", bubbleIndent)
	}

	labelStyle := lipgloss.NewStyle().Foreground(labelColor).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(bodyColor)
	faint := lipgloss.NewStyle().Foreground(pane.theme.FaintText)

	lines := []string{
		indent + labelStyle.Render(label) + faint.Render("  "+formatTimestamp(message.Timestamp)),
	}
	for _, bodyLine := range pane.wrapText(message.Body, indent) {
		lines = append(lines, bodyStyle.Render(bodyLine))
	}
	return lines
}

// noteLines renders one operator note.
func (pane *detailPane) noteLines(note conversation.Note) []string {
	authorStyle := lipgloss.NewStyle().Foreground(pane.theme.OperatorBubble).Bold(true)
	faint := lipgloss.NewStyle().Foreground(pane.theme.FaintText)

	lines := []string{
		" " + authorStyle.Render(note.CreatedBy) + faint.Render("  "+formatTimestamp(note.CreatedAt)),
	}
	lines = append(lines, pane.wrapText(note.Body, " ")...)
	return lines
}

func (pane *detailPane) sectionTitle(title string) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(pane.theme.HeaderForeground)
	rule := pane.width - ansi.StringWidth(title) - 3
	if rule < 0 {
		rule = 0
	}
	ruleStyle := lipgloss.NewStyle().Foreground(pane.theme.BorderColor)
	return " " + style.Render(title) + " " + ruleStyle.Render(strings.Repeat("─", rule))
}

// wrapText breaks text into lines that fit the pane width, each
// carrying the given indent prefix.
func (pane *detailPane) wrapText(text, indent string) []string {
	available := pane.width - ansi.StringWidth(indent) - 1
	if available < 10 {
		available = 10
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if ansi.StringWidth(current)+1+ansi.StringWidth(word) > available {
				lines = append(lines, indent+current)
				current = word
				continue
			}
			current += " " + word
		}
		lines = append(lines, indent+current)
	}
	return lines
}

// view renders the visible window of the line buffer, padded to the
// pane height.
func (pane *detailPane) view() string {
	var visible []string
	for index := pane.scrollOffset; index < pane.scrollOffset+pane.height && index < len(pane.lines); index++ {
		line := pane.lines[index]
		if ansi.StringWidth(line) > pane.width {
			line = ansi.Truncate(line, pane.width-1, "…")
		}
		visible = append(visible, line)
	}
	for len(visible) < pane.height {
		visible = append(visible, "")
	}
	return strings.Join(visible, "\n")
}

// formatTimestamp renders a message or note time in local clock time,
// including the date when not today.
func formatTimestamp(timestamp time.Time) string {
	if timestamp.IsZero() {
		return ""
	}
	local := timestamp.Local()
	if local.YearDay() == time.Now().YearDay() && local.Year() == time.Now().Year() {
		return local.Format("15:04")
	}
	return local.Format("02/01 15:04")
}
