// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package convsync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// DetailFetcher is the slice of the dashboard API the detail loader
// consumes.
type DetailFetcher interface {
	ConversationDetail(ctx context.Context, conversationID string) (*conversation.Detail, error)
}

// DetailState is a point-in-time snapshot of the detail loader.
type DetailState struct {
	// SelectedID is the conversation the operator has open. Empty
	// when nothing is selected.
	SelectedID string

	// Detail is the loaded history for SelectedID, nil while loading
	// or after a failure.
	Detail *conversation.Detail

	Loading bool
	Err     error
}

// DetailLoader owns the full message/notes history for the currently
// selected conversation. Selection changes cancel interest in any
// in-flight fetch for the previous selection — the same
// generation-stamp discipline as [ListStore], plus an ID check so a
// late response for a previously selected conversation can never
// appear under the new selection.
//
// Detail is not cached across selections; switching away discards the
// loaded history.
type DetailLoader struct {
	fetcher DetailFetcher
	logger  *slog.Logger

	mu          sync.Mutex
	selectedID  string
	generation  uint64
	detail      *conversation.Detail
	loading     bool
	err         error
	subscribers []chan struct{}
}

// NewDetailLoader creates a DetailLoader with no selection.
func NewDetailLoader(fetcher DetailFetcher, logger *slog.Logger) *DetailLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailLoader{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Select loads the full history for the given conversation. Selecting
// the empty ID clears the pane. Re-selecting the current ID reloads
// it.
func (loader *DetailLoader) Select(ctx context.Context, conversationID string) {
	loader.mu.Lock()
	loader.selectedID = conversationID
	loader.generation++
	generation := loader.generation
	loader.detail = nil
	loader.err = nil
	loader.loading = conversationID != ""
	loader.mu.Unlock()

	loader.notify()
	if conversationID == "" {
		return
	}
	go loader.fetch(ctx, generation, conversationID)
}

// Invalidate reloads the detail if conversationID is the current
// selection; otherwise it is a no-op. Called after mutations so the
// open pane reflects the acknowledged server state.
func (loader *DetailLoader) Invalidate(ctx context.Context, conversationID string) {
	loader.mu.Lock()
	if conversationID == "" || conversationID != loader.selectedID {
		loader.mu.Unlock()
		return
	}
	loader.generation++
	generation := loader.generation
	loader.loading = true
	loader.mu.Unlock()

	loader.notify()
	go loader.fetch(ctx, generation, conversationID)
}

// Clear drops the selection and any loaded detail. An in-flight fetch
// for the old selection resolves into the void.
func (loader *DetailLoader) Clear() {
	loader.Select(context.Background(), "")
}

// State returns a snapshot of the loader.
func (loader *DetailLoader) State() DetailState {
	loader.mu.Lock()
	defer loader.mu.Unlock()
	return DetailState{
		SelectedID: loader.selectedID,
		Detail:     loader.detail,
		Loading:    loader.loading,
		Err:        loader.err,
	}
}

// Subscribe returns a coalescing change-notification channel, as in
// [ListStore.Subscribe].
func (loader *DetailLoader) Subscribe() <-chan struct{} {
	loader.mu.Lock()
	defer loader.mu.Unlock()
	channel := make(chan struct{}, 1)
	loader.subscribers = append(loader.subscribers, channel)
	return channel
}

// fetch performs one detail request and commits the result if the
// generation is still current and the selection has not moved.
func (loader *DetailLoader) fetch(ctx context.Context, generation uint64, conversationID string) {
	detail, err := loader.fetcher.ConversationDetail(ctx, conversationID)

	loader.mu.Lock()
	if generation != loader.generation || conversationID != loader.selectedID {
		loader.mu.Unlock()
		loader.logger.Debug("discarding stale detail fetch",
			"conversation_id", conversationID,
			"generation", generation,
		)
		return
	}

	loader.loading = false
	if err != nil {
		loader.detail = nil
		loader.err = err
		loader.mu.Unlock()
		loader.logger.Warn("detail fetch failed",
			"conversation_id", conversationID,
			"error", err,
		)
		loader.notify()
		return
	}

	loader.detail = detail
	loader.err = nil
	loader.mu.Unlock()

	loader.notify()
}

func (loader *DetailLoader) notify() {
	loader.mu.Lock()
	subscribers := loader.subscribers
	loader.mu.Unlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- struct{}{}:
		default:
		}
	}
}
