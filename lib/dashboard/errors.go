// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"errors"
	"fmt"
)

// Validation errors returned before any network call is made.
var (
	// ErrUnknownStatus is returned by UpdateStatus when the value is
	// not a recognized triage status.
	ErrUnknownStatus = errors.New("dashboard: not a recognized triage status")

	// ErrEmptyNote is returned by AddNote when the note text is
	// empty or whitespace-only.
	ErrEmptyNote = errors.New("dashboard: note text is empty")
)

// APIError is a structured error response from the dashboard API. All
// transport failures — network errors excepted — normalize into this
// one shape. Callers can use errors.As to inspect the status code:
//
//	var apiErr *dashboard.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == 404 { ... }
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`

	// Detail is the human-readable error description from the
	// server's {"detail": ...} error body. When the server returns a
	// non-JSON body, Detail carries the raw text.
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("dashboard: server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("dashboard: %s (%d)", e.Detail, e.StatusCode)
}

// IsNotFound reports whether err is an APIError with status 404,
// meaning the conversation no longer exists (deleted or never
// created).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
