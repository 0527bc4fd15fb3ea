// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// Pagination is the server's paging envelope, stored verbatim
// alongside the summary list.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListResult is the decoded response of the conversation list
// endpoint.
type ListResult struct {
	Conversations []conversation.Summary `json:"conversations"`
	Pagination    Pagination             `json:"pagination"`
}

// UnmarshalJSON accepts both the current envelope shape
// ({conversations, pagination}) and the legacy bare-array shape the
// first dashboard deployments returned. Anything else — an object
// without a conversations array, a string, a number — is an error,
// not an empty result: a malformed response must surface as a failure
// rather than render as "no conversations".
func (result *ListResult) UnmarshalJSON(data []byte) error {
	type envelope ListResult
	var decoded envelope
	if err := json.Unmarshal(data, &decoded); err == nil && decoded.Conversations != nil {
		*result = ListResult(decoded)
		return nil
	}

	// Legacy fallback: a bare array of summaries with no pagination.
	var bare []conversation.Summary
	if err := json.Unmarshal(data, &bare); err == nil {
		result.Conversations = bare
		result.Pagination = Pagination{Total: len(bare), Page: 1, Limit: len(bare)}
		return nil
	}

	return fmt.Errorf("dashboard: list response is neither an envelope nor an array")
}

// UpdateRequest is the PATCH body for a conversation. All fields are
// optional; nil fields are omitted and left unchanged server-side.
//
// UpdateStatus covers the common status-only case with validation;
// Update exposes the full shape.
type UpdateRequest struct {
	Status     *string                `json:"status,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Priority   *conversation.Priority `json:"priority,omitempty"`
	ReviewedBy string                 `json:"reviewed_by,omitempty"`
}

// AnalyticsSummary is the aggregate metrics response of
// GET /dashboard/analytics/summary. Consumed by the Analytics tab
// only; it does not participate in list synchronization.
type AnalyticsSummary struct {
	Period struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"period"`
	TotalConversations int            `json:"total_conversations"`
	StatusDistribution map[string]int `json:"status_distribution"`
	BotResolutionRate  float64        `json:"bot_resolution_rate"`
	AvgResolutionTime  float64        `json:"avg_resolution_time_minutes"`
}
