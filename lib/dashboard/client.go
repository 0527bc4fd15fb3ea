// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nassif-clinic/triage/lib/netutil"
	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// defaultTimeout bounds every dashboard API request. The API is a
// single-clinic deployment on a nearby host; anything slower than
// this is a failure the operator should see, not wait through.
const defaultTimeout = 15 * time.Second

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the dashboard API origin
	// (e.g., "http://127.0.0.1:8000"). Required.
	BaseURL string

	// HTTPClient is used for all requests. If nil, a client with a
	// 15-second timeout is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client issues request/response calls against the dashboard API:
// conversation list, detail, status updates, notes, and analytics.
// All failures normalize into *APIError (server rejections) or a
// wrapped transport error (network failures); callers never see raw
// HTTP plumbing.
//
// Client is stateless apart from the connection pool and is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	// sessionID identifies this dashboard session in server logs.
	// Sent as X-Client-Session on every request so one operator's
	// traffic can be correlated across list fetches and mutations.
	sessionID string
}

// NewClient creates a dashboard API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("dashboard: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("dashboard: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		sessionID:  uuid.NewString(),
	}, nil
}

// CloseIdleConnections drops pooled connections. Call after a network
// disruption so the next request opens a fresh socket instead of
// reusing a poisoned one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// ListConversations fetches the conversation list for the given
// filter. The returned summaries are in server order (priority
// descending, then last activity descending).
func (c *Client) ListConversations(ctx context.Context, criteria FilterCriteria) (*ListResult, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/dashboard/conversations", nil, criteria.Query())
	if err != nil {
		return nil, err
	}

	var result ListResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("dashboard: parsing list response: %w", err)
	}
	return &result, nil
}

// ConversationDetail fetches the full message and note history for
// one conversation.
func (c *Client) ConversationDetail(ctx context.Context, conversationID string) (*conversation.Detail, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("dashboard: conversation ID is required")
	}
	body, err := c.doRequest(ctx, http.MethodGet, "/dashboard/conversations/"+url.PathEscape(conversationID), nil, nil)
	if err != nil {
		return nil, err
	}

	var detail conversation.Detail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("dashboard: parsing detail response: %w", err)
	}
	return &detail, nil
}

// UpdateStatus transitions a conversation to a new triage status.
// Rejects unrecognized status values with ErrUnknownStatus before any
// network call — chatbot flow states are not settable by operators.
func (c *Client) UpdateStatus(ctx context.Context, conversationID, status string) error {
	if !conversation.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return c.Update(ctx, conversationID, UpdateRequest{Status: &status})
}

// Update patches a conversation record. Nil fields are left
// unchanged server-side. Prefer UpdateStatus for status changes —
// it validates the value first.
func (c *Client) Update(ctx context.Context, conversationID string, request UpdateRequest) error {
	if conversationID == "" {
		return fmt.Errorf("dashboard: conversation ID is required")
	}
	_, err := c.doRequest(ctx, http.MethodPatch, "/dashboard/conversations/"+url.PathEscape(conversationID), request, nil)
	return err
}

// AddNote appends an operator note to a conversation. Rejects empty
// or whitespace-only text with ErrEmptyNote before any network call,
// so a misfired submit never round-trips.
func (c *Client) AddNote(ctx context.Context, conversationID, text, author string) (*conversation.Note, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("dashboard: conversation ID is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyNote
	}

	request := map[string]string{
		"note":       text,
		"created_by": author,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/dashboard/conversations/"+url.PathEscape(conversationID)+"/notes", request, nil)
	if err != nil {
		return nil, err
	}

	var note conversation.Note
	if err := json.Unmarshal(body, &note); err != nil {
		return nil, fmt.Errorf("dashboard: parsing note response: %w", err)
	}
	return &note, nil
}

// Analytics fetches aggregate metrics for the given period. Zero
// times mean the server default (last seven days).
func (c *Client) Analytics(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("date_from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		query.Set("date_to", to.UTC().Format(time.RFC3339))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/dashboard/analytics/summary", nil, query)
	if err != nil {
		return nil, err
	}

	var summary AnalyticsSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("dashboard: parsing analytics response: %w", err)
	}
	return &summary, nil
}

// doRequest performs one HTTP round-trip and normalizes the outcome:
// 2xx returns the body, anything else returns *APIError, and network
// failures return a wrapped error. Every request carries the session
// ID and a fresh request ID for server-side correlation.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("dashboard: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("dashboard: creating request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("X-Client-Session", c.sessionID)
	request.Header.Set("X-Request-ID", uuid.NewString())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("dashboard: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("dashboard: reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// Error responses use {"detail": "..."}. A non-JSON error body
	// still becomes an APIError — the raw text is better than nothing
	// in the operator-visible message.
	apiErr := &APIError{StatusCode: response.StatusCode}
	if jsonErr := json.Unmarshal(responseBody, apiErr); jsonErr != nil || apiErr.Detail == "" {
		apiErr.Detail = strings.TrimSpace(string(responseBody))
	}
	c.logger.Warn("dashboard API request failed",
		"method", method,
		"path", path,
		"status", response.StatusCode,
	)
	return nil, apiErr
}
