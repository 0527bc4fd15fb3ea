// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel maintains the dashboard's realtime push connection.
//
// The dashboard API exposes a websocket that broadcasts a small JSON
// payload whenever a conversation changes. The payload carries no
// contract beyond "something changed" — the sync layer responds to
// every event with a full refetch rather than trusting it as a delta,
// which sidesteps client/server schema drift at the cost of extra
// refetch traffic (acceptable for a single-clinic dashboard).
//
// [Manager] owns the connection lifecycle: a warm-up delay before the
// first dial, automatic reconnection with bounded full-jitter backoff,
// and a clean close frame on Stop. Exactly one subscriber receives
// events per manager.
package channel
