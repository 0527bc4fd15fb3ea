// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// Package conversation defines the wire types for the clinic's chatbot
// triage dashboard: conversation summaries, message and note history,
// triage statuses, chatbot flow states, and priorities.
//
// The status field is shared by two server-side enums — operator
// triage statuses and chatbot state-machine positions — and new
// members appear server-side without client coordination. [ParsePhase]
// decodes the field into a tagged [Phase] with an explicit unknown
// variant so display code never crashes on an unrecognized value.
package conversation
