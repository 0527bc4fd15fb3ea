// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nassif-clinic/triage/lib/dashboard"
	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// AnalyticsFetcher is the slice of the dashboard API the analytics
// tab consumes. *dashboard.Client implements it.
type AnalyticsFetcher interface {
	Analytics(ctx context.Context, from, to time.Time) (*dashboard.AnalyticsSummary, error)
}

// analyticsMsg delivers the result of an analytics fetch.
type analyticsMsg struct {
	summary *dashboard.AnalyticsSummary
	err     error
}

// analyticsPeriod is the default reporting window shown when the
// operator opens the Análise tab.
const analyticsPeriod = 7 * 24 * time.Hour

// fetchAnalytics returns a tea.Cmd issuing the analytics request.
func fetchAnalytics(ctx context.Context, fetcher AnalyticsFetcher) tea.Cmd {
	return func() tea.Msg {
		to := time.Now()
		summary, err := fetcher.Analytics(ctx, to.Add(-analyticsPeriod), to)
		return analyticsMsg{summary: summary, err: err}
	}
}

// renderAnalytics renders the Análise tab body: headline numbers and
// a status distribution bar chart.
func renderAnalytics(theme Theme, summary *dashboard.AnalyticsSummary, fetchErr error, width, height int) string {
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if fetchErr != nil {
		errorStyle := lipgloss.NewStyle().Foreground(theme.StatusRequiresAttention)
		return "\n" + errorStyle.Render("  Falha ao carregar métricas:") + "\n" +
			faint.Render("  "+fetchErr.Error())
	}
	if summary == nil {
		return "\n" + faint.Render("  Carregando métricas...")
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.StatusCompleted)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(" " + titleStyle.Render("Últimos 7 dias") +
		faint.Render(fmt.Sprintf("  %s a %s", summary.Period.From, summary.Period.To)) + "\n\n")

	b.WriteString(fmt.Sprintf(" Conversas        %s\n",
		valueStyle.Render(fmt.Sprintf("%d", summary.TotalConversations))))
	b.WriteString(fmt.Sprintf(" Resolvidas pelo bot  %s\n",
		valueStyle.Render(fmt.Sprintf("%.0f%%", summary.BotResolutionRate*100))))
	b.WriteString(fmt.Sprintf(" Tempo médio de resolução  %s\n\n",
		valueStyle.Render(fmt.Sprintf("%.0f min", summary.AvgResolutionTime))))

	b.WriteString(" " + titleStyle.Render("Por status") + "\n")
	b.WriteString(renderStatusDistribution(theme, summary.StatusDistribution, width))

	return b.String()
}

// renderStatusDistribution draws one bar per status, longest first,
// scaled to the widest count.
func renderStatusDistribution(theme Theme, distribution map[string]int, width int) string {
	if len(distribution) == 0 {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render(" sem dados\n")
	}

	type entry struct {
		status string
		count  int
	}
	entries := make([]entry, 0, len(distribution))
	maxCount := 0
	for status, count := range distribution {
		entries = append(entries, entry{status, count})
		if count > maxCount {
			maxCount = count
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].status < entries[j].status
	})

	const labelWidth = 16
	barWidth := width - labelWidth - 8
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	for _, entry := range entries {
		phase := conversation.ParsePhase(entry.status)
		barStyle := lipgloss.NewStyle().Foreground(theme.PhaseColor(phase))

		length := 0
		if maxCount > 0 {
			length = entry.count * barWidth / maxCount
		}
		if length < 1 && entry.count > 0 {
			length = 1
		}

		b.WriteString(fmt.Sprintf(" %-*s %s %d\n",
			labelWidth, phase.Label(),
			barStyle.Render(strings.Repeat("█", length)),
			entry.count))
	}
	return b.String()
}
