// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// Package convsync keeps the dashboard's local view of conversations
// consistent across three independent sources of change: filtered
// bulk fetches, realtime push events, and operator mutations.
//
// The consistency mechanism is deliberately simple: every change
// signal triggers a full refetch, and every fetch carries a
// monotonically increasing generation stamp. Only the newest
// generation may commit; late responses from superseded fetches are
// discarded regardless of wire-level completion order. No request is
// cancelled on the network — suppression is purely logical.
//
//	filter edit ──┐
//	push event  ──┼─> [ListStore]  ── generation check ──> items
//	mutation    ──┘        │
//	                       └─ [DetailLoader] per-selection, same rule
//
// [Controller] owns one session's worth of this state and wires the
// realtime channel to the stores.
package convsync
