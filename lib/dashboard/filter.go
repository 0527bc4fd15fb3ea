// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"net/url"
	"strconv"
	"time"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// FilterCriteria is the operator's current list filter. It is a value
// object: every change replaces the whole criteria, never patches it,
// so two snapshots of the criteria can be compared or held across an
// in-flight fetch without aliasing.
//
// Every field is independently optional. A nil enum and an empty
// search string both mean "no constraint" and are omitted from the
// derived query entirely — the server treats a present-but-empty
// parameter as a real constraint.
type FilterCriteria struct {
	// Status restricts to one triage status. Nil means any.
	Status *string

	// Priority restricts to one priority. Nil means any. Zero
	// (PriorityLow) is a valid constraint and is sent when set.
	Priority *conversation.Priority

	// Search is matched server-side against phone, patient name,
	// and CPF. Empty means no search.
	Search string

	// DateFrom and DateTo bound the conversation activity window.
	// Zero values mean unbounded.
	DateFrom time.Time
	DateTo   time.Time

	// Page and Limit select the result page. Zero values mean the
	// server defaults.
	Page  int
	Limit int
}

// Query derives the canonical query for the list request: key/value
// pairs in a fixed order, with unset fields omitted.
func (criteria FilterCriteria) Query() url.Values {
	query := url.Values{}
	if criteria.Status != nil {
		query.Set("status", *criteria.Status)
	}
	if criteria.Priority != nil {
		query.Set("priority", strconv.Itoa(int(*criteria.Priority)))
	}
	if criteria.Search != "" {
		query.Set("search", criteria.Search)
	}
	if !criteria.DateFrom.IsZero() {
		query.Set("date_from", criteria.DateFrom.UTC().Format(time.RFC3339))
	}
	if !criteria.DateTo.IsZero() {
		query.Set("date_to", criteria.DateTo.UTC().Format(time.RFC3339))
	}
	if criteria.Page > 0 {
		query.Set("page", strconv.Itoa(criteria.Page))
	}
	if criteria.Limit > 0 {
		query.Set("limit", strconv.Itoa(criteria.Limit))
	}
	return query
}
