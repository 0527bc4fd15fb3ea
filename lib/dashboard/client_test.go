// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:8000"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client == nil {
			t.Fatal("NewClient returned nil")
		}
	})

	t.Run("empty URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{}); err == nil {
			t.Fatal("expected error for empty BaseURL")
		}
	})
}

func TestListConversations(t *testing.T) {
	t.Run("envelope response", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/dashboard/conversations" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			if got := request.URL.Query().Get("status"); got != "pending" {
				t.Errorf("status query = %q, want \"pending\"", got)
			}
			json.NewEncoder(writer).Encode(map[string]any{
				"conversations": []map[string]any{
					{"id": "c1", "phone": "+5531999990000", "status": "pending"},
					{"id": "c2", "phone": "+5531999990001", "status": "aguardando_cpf"},
				},
				"pagination": map[string]int{"total": 2, "page": 1, "limit": 50},
			})
		}))

		status := conversation.StatusPending
		result, err := client.ListConversations(context.Background(), FilterCriteria{Status: &status})
		if err != nil {
			t.Fatalf("ListConversations failed: %v", err)
		}
		if len(result.Conversations) != 2 {
			t.Fatalf("got %d conversations, want 2", len(result.Conversations))
		}
		if result.Conversations[0].ID != "c1" {
			t.Errorf("first conversation ID = %q, want \"c1\"", result.Conversations[0].ID)
		}
		if result.Pagination.Total != 2 {
			t.Errorf("pagination total = %d, want 2", result.Pagination.Total)
		}
	})

	t.Run("legacy bare array", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			json.NewEncoder(writer).Encode([]map[string]any{
				{"id": "c1", "phone": "+5531999990000", "status": "pending"},
			})
		}))

		result, err := client.ListConversations(context.Background(), FilterCriteria{})
		if err != nil {
			t.Fatalf("ListConversations failed on legacy shape: %v", err)
		}
		if len(result.Conversations) != 1 {
			t.Fatalf("got %d conversations, want 1", len(result.Conversations))
		}
		if result.Pagination.Total != 1 {
			t.Errorf("synthesized pagination total = %d, want 1", result.Pagination.Total)
		}
	})

	t.Run("malformed response is an error", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Write([]byte(`"not a list"`))
		}))

		if _, err := client.ListConversations(context.Background(), FilterCriteria{}); err == nil {
			t.Fatal("expected error for non-list response")
		}
	})

	t.Run("server error normalizes to APIError", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
			writer.Write([]byte(`{"detail": "database unavailable"}`))
		}))

		_, err := client.ListConversations(context.Background(), FilterCriteria{})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.StatusCode != 500 {
			t.Errorf("status code = %d, want 500", apiErr.StatusCode)
		}
		if apiErr.Detail != "database unavailable" {
			t.Errorf("detail = %q, want \"database unavailable\"", apiErr.Detail)
		}
	})

	t.Run("non-JSON error body", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
			writer.Write([]byte("upstream timeout"))
		}))

		_, err := client.ListConversations(context.Background(), FilterCriteria{})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Detail != "upstream timeout" {
			t.Errorf("detail = %q, want raw body", apiErr.Detail)
		}
	})
}

func TestConversationDetail(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/dashboard/conversations/c1" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		json.NewEncoder(writer).Encode(map[string]any{
			"conversation": map[string]any{"id": "c1", "phone": "+5531999990000", "status": "completed"},
			"messages": []map[string]any{
				{"sender": "user", "message": "Oi, quero marcar uma consulta"},
				{"sender": "bot", "message": "Claro! Qual o seu CPF?"},
			},
			"notes": []map[string]any{
				{"note": "paciente retornou", "created_by": "Gabriela"},
			},
		})
	}))

	detail, err := client.ConversationDetail(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ConversationDetail failed: %v", err)
	}
	if detail.Conversation.ID != "c1" {
		t.Errorf("conversation ID = %q, want \"c1\"", detail.Conversation.ID)
	}
	if len(detail.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(detail.Messages))
	}
	if !detail.Messages[0].FromPatient() {
		t.Error("first message should be from the patient")
	}
	if detail.Messages[1].FromPatient() {
		t.Error("second message should be from the bot")
	}
	if len(detail.Notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(detail.Notes))
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	var requests atomic.Int64
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requests.Add(1)
	}))

	err := client.UpdateStatus(context.Background(), "c1", "aguardando_cpf")
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if requests.Load() != 0 {
		t.Errorf("made %d network calls, want 0", requests.Load())
	}
}

func TestUpdateStatusSendsPatch(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", request.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if body["status"] != "completed" {
			t.Errorf("status = %v, want \"completed\"", body["status"])
		}
		if _, present := body["priority"]; present {
			t.Error("priority should be omitted from a status-only patch")
		}
		json.NewEncoder(writer).Encode(map[string]any{"id": "c1", "status": "completed"})
	}))

	if err := client.UpdateStatus(context.Background(), "c1", conversation.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
}

func TestAddNote(t *testing.T) {
	t.Run("whitespace-only text makes no network call", func(t *testing.T) {
		var requests atomic.Int64
		client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requests.Add(1)
		}))

		_, err := client.AddNote(context.Background(), "c1", "   \n\t ", "Gabriela")
		if !errors.Is(err, ErrEmptyNote) {
			t.Fatalf("expected ErrEmptyNote, got %v", err)
		}
		if requests.Load() != 0 {
			t.Errorf("made %d network calls, want 0", requests.Load())
		}
	})

	t.Run("posts note and decodes response", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/dashboard/conversations/c1/notes" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			var body map[string]string
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("decoding request body: %v", err)
			}
			if body["note"] != "ligar amanhã" {
				t.Errorf("note = %q", body["note"])
			}
			if body["created_by"] != "Gabriela" {
				t.Errorf("created_by = %q", body["created_by"])
			}
			json.NewEncoder(writer).Encode(map[string]any{
				"id": "n1", "note": "ligar amanhã", "created_by": "Gabriela",
			})
		}))

		note, err := client.AddNote(context.Background(), "c1", "ligar amanhã", "Gabriela")
		if err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}
		if note.ID != "n1" {
			t.Errorf("note ID = %q, want \"n1\"", note.ID)
		}
	})
}

func TestRequestCarriesCorrelationHeaders(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("X-Client-Session") == "" {
			t.Error("missing X-Client-Session header")
		}
		if request.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		writer.Write([]byte(`{"conversations": [], "pagination": {"total": 0, "page": 1, "limit": 50}}`))
	}))

	if _, err := client.ListConversations(context.Background(), FilterCriteria{}); err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
}
