// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

func TestRelativeAge(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		timestamp time.Time
		want      string
	}{
		{time.Time{}, "-"},
		{now.Add(-30 * time.Second), "agora"},
		{now.Add(-5 * time.Minute), "5min"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-49 * time.Hour), "2d"},
	}
	for _, testCase := range cases {
		if got := relativeAge(now, testCase.timestamp); got != testCase.want {
			t.Errorf("relativeAge(%v) = %q, want %q", testCase.timestamp, got, testCase.want)
		}
	}
}

func TestRenderRowFitsWidth(t *testing.T) {
	renderer := newListRenderer(DefaultTheme, 60, time.Now())
	summary := conversation.Summary{
		ID:            "c1",
		PatientName:   "Um Nome De Paciente Extremamente Longo Que Não Cabe Na Linha",
		Phone:         "+5511987654321",
		Status:        "requires_attention",
		Priority:      conversation.PriorityUrgent,
		Tags:          []string{"gestante", "retorno"},
		MessageCount:  1234,
		LastMessageAt: time.Now().Add(-10 * time.Minute),
	}

	row := renderer.renderRow(summary, false)
	if width := ansi.StringWidth(row); width > 60 {
		t.Errorf("row width = %d, want <= 60", width)
	}
	if !strings.Contains(row, "P3") {
		t.Error("row missing priority badge")
	}
	if !strings.Contains(row, "999+") {
		t.Error("row missing clamped message count")
	}
}

func TestRenderRowBotResolutionIcon(t *testing.T) {
	renderer := newListRenderer(DefaultTheme, 80, time.Now())
	summary := conversation.Summary{
		ID:            "c2",
		Phone:         "+5511912341234",
		Status:        "completed",
		BotResolution: true,
		MessageCount:  6,
	}

	if row := renderer.renderRow(summary, false); !strings.Contains(row, "🤖") {
		t.Error("bot-resolved row missing the bot icon")
	}

	summary.HumanIntervention = true
	if row := renderer.renderRow(summary, false); strings.Contains(row, "🤖") {
		t.Error("human-handled row still shows the bot icon")
	}
}
