// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package convsync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nassif-clinic/triage/lib/dashboard"
	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// Lister is the slice of the dashboard API the list store consumes.
// *dashboard.Client implements it; tests substitute fakes with
// controllable latency.
type Lister interface {
	ListConversations(ctx context.Context, criteria dashboard.FilterCriteria) (*dashboard.ListResult, error)
}

// ListState is a point-in-time snapshot of the list store, safe to
// read without further locking. Items must not be mutated by the
// caller — the next snapshot replaces the slice wholesale.
type ListState struct {
	Items      []conversation.Summary
	Pagination dashboard.Pagination

	// Loading is true from the issuance of the newest fetch until
	// that fetch resolves. A stale fetch resolving never clears it.
	Loading bool

	// Err is the normalized failure of the newest resolved fetch,
	// nil after any success. When Err is set, Items is empty — stale
	// data is never displayed as current.
	Err error
}

// ListStore owns the current page of conversation summaries and keeps
// it consistent across three independent sources of change: filter
// edits, realtime push events, and explicit refetches.
//
// Every SetFilter or Refetch starts a new fetch generation. Only the
// most recently issued generation may commit its result; anything
// older resolves into the void. This is the sole ordering guarantee —
// requests may complete in any order over the wire, and the
// generation stamp is what keeps the store correct regardless.
type ListStore struct {
	lister Lister
	logger *slog.Logger

	mu          sync.Mutex
	criteria    dashboard.FilterCriteria
	generation  uint64
	items       []conversation.Summary
	pagination  dashboard.Pagination
	loading     bool
	err         error
	subscribers []chan struct{}
}

// NewListStore creates a ListStore. No fetch is issued until SetFilter
// or Refetch is called.
func NewListStore(lister Lister, logger *slog.Logger) *ListStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListStore{
		lister: lister,
		logger: logger,
	}
}

// SetFilter replaces the filter criteria and issues a fetch for it.
// The criteria is a value object — the store keeps its own copy, so
// the caller may keep mutating its local criteria freely.
func (store *ListStore) SetFilter(ctx context.Context, criteria dashboard.FilterCriteria) {
	store.mu.Lock()
	store.criteria = criteria
	generation := store.beginFetchLocked()
	store.mu.Unlock()

	store.notify()
	go store.fetch(ctx, generation, criteria)
}

// Refetch issues a fetch using the current filter criteria. Called on
// every realtime event and available to the operator as a manual
// refresh; works whether or not the push channel is up.
func (store *ListStore) Refetch(ctx context.Context) {
	store.mu.Lock()
	criteria := store.criteria
	generation := store.beginFetchLocked()
	store.mu.Unlock()

	store.notify()
	go store.fetch(ctx, generation, criteria)
}

// beginFetchLocked starts a new fetch generation. Caller holds the
// lock.
func (store *ListStore) beginFetchLocked() uint64 {
	store.generation++
	store.loading = true
	return store.generation
}

// State returns a snapshot of the store.
func (store *ListStore) State() ListState {
	store.mu.Lock()
	defer store.mu.Unlock()
	return ListState{
		Items:      store.items,
		Pagination: store.pagination,
		Loading:    store.loading,
		Err:        store.err,
	}
}

// Criteria returns the current filter criteria.
func (store *ListStore) Criteria() dashboard.FilterCriteria {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.criteria
}

// Subscribe returns a channel that receives a signal whenever the
// store's state changes (fetch issued, committed, or failed).
// Signals are coalesced: a slow consumer sees at least one signal,
// not necessarily one per change.
func (store *ListStore) Subscribe() <-chan struct{} {
	store.mu.Lock()
	defer store.mu.Unlock()
	channel := make(chan struct{}, 1)
	store.subscribers = append(store.subscribers, channel)
	return channel
}

// fetch performs one list request and commits the result if its
// generation is still current.
func (store *ListStore) fetch(ctx context.Context, generation uint64, criteria dashboard.FilterCriteria) {
	result, err := store.lister.ListConversations(ctx, criteria)

	store.mu.Lock()
	if generation != store.generation {
		// A newer fetch superseded this one while it was in flight.
		// Its result — success or failure — is stale and must not
		// overwrite newer state, and loading stays owned by the
		// newest generation.
		current := store.generation
		store.mu.Unlock()
		store.logger.Debug("discarding stale list fetch",
			"generation", generation,
			"current", current,
		)
		return
	}

	store.loading = false
	if err != nil {
		// Fall back to an empty list rather than leaving data from
		// an older filter displayed as current.
		store.items = nil
		store.pagination = dashboard.Pagination{}
		store.err = err
		store.mu.Unlock()
		store.logger.Warn("list fetch failed", "error", err)
		store.notify()
		return
	}

	store.items = result.Conversations
	store.pagination = result.Pagination
	store.err = nil
	store.mu.Unlock()

	store.notify()
}

// notify signals all subscribers, dropping the signal for any whose
// buffer is full (they will read current state when they next wake).
func (store *ListStore) notify() {
	store.mu.Lock()
	subscribers := store.subscribers
	store.mu.Unlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- struct{}{}:
		default:
		}
	}
}
