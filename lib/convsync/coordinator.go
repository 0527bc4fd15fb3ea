// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package convsync

import (
	"context"
	"log/slog"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// Mutator is the slice of the dashboard API the coordinator consumes.
// Implementations validate input locally (unknown status, blank note)
// before any network call; *dashboard.Client does.
type Mutator interface {
	UpdateStatus(ctx context.Context, conversationID, status string) error
	AddNote(ctx context.Context, conversationID, text, author string) (*conversation.Note, error)
}

// Coordinator issues operator mutations and invalidates the affected
// stores once the server acknowledges. There is no optimistic local
// mutation: the refetch after acknowledgment is the consistency
// mechanism, matching the push-event path.
type Coordinator struct {
	mutator Mutator
	list    *ListStore
	detail  *DetailLoader
	logger  *slog.Logger
}

// NewCoordinator creates a Coordinator wired to the given stores.
func NewCoordinator(mutator Mutator, list *ListStore, detail *DetailLoader, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		mutator: mutator,
		list:    list,
		detail:  detail,
		logger:  logger,
	}
}

// SetStatus transitions a conversation to a new triage status. On
// success both stores refresh: the record may no longer match the
// active list filter, and the detail pane (if showing this
// conversation) must reflect the new status. On failure nothing is
// invalidated and the error is returned for display — the operator's
// intent is never silently discarded.
func (coordinator *Coordinator) SetStatus(ctx context.Context, conversationID, status string) error {
	if err := coordinator.mutator.UpdateStatus(ctx, conversationID, status); err != nil {
		return err
	}

	coordinator.logger.Info("conversation status updated",
		"conversation_id", conversationID,
		"status", status,
	)
	coordinator.list.Refetch(ctx)
	coordinator.detail.Invalidate(ctx, conversationID)
	return nil
}

// AddNote appends an operator note. On success only the detail pane
// refreshes — notes do not affect list rows. On failure the error is
// returned so the UI can keep the draft text for retry.
func (coordinator *Coordinator) AddNote(ctx context.Context, conversationID, text, author string) error {
	if _, err := coordinator.mutator.AddNote(ctx, conversationID, text, author); err != nil {
		return err
	}

	coordinator.logger.Info("note added", "conversation_id", conversationID)
	coordinator.detail.Invalidate(ctx, conversationID)
	return nil
}
