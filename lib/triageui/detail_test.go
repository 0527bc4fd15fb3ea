// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"strings"
	"testing"
	"time"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

func renderedDetail(detail *conversation.Detail) string {
	pane := newDetailPane(DefaultTheme)
	pane.setSize(80, 40)
	pane.setContent(detail, false, nil)
	return pane.view()
}

func TestDetailHeaderShowsSentimentWhenAnalyzed(t *testing.T) {
	score := -42
	detail := &conversation.Detail{
		Conversation: conversation.Summary{
			ID:             "c1",
			Phone:          "+5531999990001",
			PatientName:    "Maria Silva",
			Status:         "pending",
			SentimentScore: &score,
		},
	}

	view := renderedDetail(detail)
	if !strings.Contains(view, "Sentimento -42") {
		t.Errorf("sentiment score missing from header:\n%s", view)
	}

	detail.Conversation.SentimentScore = nil
	if view := renderedDetail(detail); strings.Contains(view, "Sentimento") {
		t.Errorf("unanalyzed conversation should not show a sentiment line:\n%s", view)
	}
}

func TestDetailMessageShowsTimestamp(t *testing.T) {
	sent := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	detail := &conversation.Detail{
		Conversation: conversation.Summary{ID: "c1", Phone: "+5531999990001", Status: "pending"},
		Messages: []conversation.Message{
			{Sender: "user", Body: "Bom dia", Timestamp: sent},
		},
	}

	view := renderedDetail(detail)
	if !strings.Contains(view, sent.Format("02/01 15:04")) {
		t.Errorf("message timestamp missing:\n%s", view)
	}
}

func TestDetailNotesKeepServerOrderNewestFirst(t *testing.T) {
	detail := &conversation.Detail{
		Conversation: conversation.Summary{ID: "c1", Phone: "+5531999990001", Status: "pending"},
		Notes: []conversation.Note{
			{Body: "nota mais recente", CreatedBy: "ana", CreatedAt: time.Now()},
			{Body: "nota antiga", CreatedBy: "ana", CreatedAt: time.Now().Add(-time.Hour)},
		},
	}

	view := renderedDetail(detail)
	newest := strings.Index(view, "nota mais recente")
	oldest := strings.Index(view, "nota antiga")
	if newest < 0 || oldest < 0 {
		t.Fatalf("notes missing from view:\n%s", view)
	}
	if newest > oldest {
		t.Errorf("newest note rendered below the older one:\n%s", view)
	}
}
