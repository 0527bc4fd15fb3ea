// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package convsync

import (
	"context"
	"log/slog"

	"github.com/nassif-clinic/triage/lib/channel"
)

// API is the full dashboard API surface the controller needs.
// *dashboard.Client implements it.
type API interface {
	Lister
	DetailFetcher
	Mutator
}

// Controller bundles one dashboard session's mutable state: the list
// store, the detail loader, the mutation coordinator, and the
// realtime channel wiring. One instance exists per session, created
// on dashboard start and torn down on exit — state is passed by
// reference to the presentation layer, never held in globals.
type Controller struct {
	// List, Detail, and Mutations are the session's stores, exposed
	// directly: the presentation layer reads their State snapshots
	// and subscribes to their change channels.
	List      *ListStore
	Detail    *DetailLoader
	Mutations *Coordinator

	manager *channel.Manager
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewController creates a session controller. The channel manager may
// be nil, in which case the dashboard runs without realtime refresh
// (manual refetch still works — the transport client is independent
// of channel state).
func NewController(api API, manager *channel.Manager, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	list := NewListStore(api, logger)
	detail := NewDetailLoader(api, logger)
	return &Controller{
		List:      list,
		Detail:    detail,
		Mutations: NewCoordinator(api, list, detail, logger),
		manager:   manager,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start issues the initial list fetch and, when a channel manager is
// present, begins the realtime lifecycle. Every delivered push event
// triggers exactly one list refetch using the filter current at
// delivery time — the event payload itself is never trusted as a
// delta.
func (controller *Controller) Start() error {
	controller.List.Refetch(controller.ctx)

	if controller.manager == nil {
		return nil
	}
	return controller.manager.Start(func(event channel.Event) {
		controller.logger.Debug("refetching on channel event",
			"type", event.Type,
			"conversation_id", event.ConversationID,
		)
		controller.List.Refetch(controller.ctx)
	})
}

// Stop tears the session down: stops the channel (events delivered
// after Stop trigger nothing) and cancels any in-flight fetches.
func (controller *Controller) Stop() {
	if controller.manager != nil {
		controller.manager.Stop()
	}
	controller.cancel()
}

// Connected reports whether the realtime channel is live. Always
// false without a channel manager.
func (controller *Controller) Connected() bool {
	if controller.manager == nil {
		return false
	}
	return controller.manager.Connected()
}
