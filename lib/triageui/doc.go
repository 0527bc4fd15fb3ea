// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// Package triageui implements the terminal user interface of the
// clinic triage dashboard. Built on bubbletea (Elm architecture), it
// provides a split-pane view with the conversation queue on the left
// and the selected conversation's transcript and notes on the right,
// plus an analytics tab with aggregate metrics.
//
// All data flows through a [convsync.Controller]: the model reads
// store snapshots and subscribes to their change channels, converting
// each signal into a bubbletea message. Mutations (status changes,
// notes) go through the controller's coordinator and the stores
// refresh from the server's acknowledged state; the UI never mutates
// its local copy optimistically.
//
// Data flow:
//
//	[triage service REST + websocket]
//	        | (convsync stores)
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
package triageui
