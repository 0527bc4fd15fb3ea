// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard is the HTTP client for the clinic's triage
// dashboard API: conversation list and detail fetches, status and
// note mutations, and analytics summaries.
//
// Failures normalize into a single shape: server rejections become
// [*APIError] (inspectable with errors.As), network failures become
// wrapped transport errors, and invalid operator input (unknown
// status, blank note) is rejected locally with [ErrUnknownStatus] or
// [ErrEmptyNote] before any network call.
//
// [FilterCriteria] is the operator's filter state; its Query method
// derives the canonical list query, omitting unset fields rather than
// sending them empty.
package dashboard
