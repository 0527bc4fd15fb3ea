// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

import (
	"time"
)

// Summary is one row of the dashboard's conversation list, as returned
// by GET /dashboard/conversations. The dashboard API owns the ordering
// (priority descending, then last activity descending); clients
// preserve response order.
//
// Summaries are replaced wholesale on every successful list fetch. The
// sync layer never merges summaries from two different fetches, so a
// Summary is safe to hold by value.
type Summary struct {
	// ID is the dashboard record identifier (UUID string).
	ID string `json:"id"`

	// ConversationID links to the underlying chatbot conversation.
	ConversationID string `json:"conversation_id,omitempty"`

	// Phone is the patient's WhatsApp number. Always present; used
	// as the display identity when PatientName is empty.
	Phone string `json:"phone"`

	// PatientName is the resolved patient name, when known.
	PatientName string `json:"patient_name,omitempty"`

	// PatientCPF is the patient's CPF document number, when captured
	// by the chatbot flow.
	PatientCPF string `json:"patient_cpf,omitempty"`

	// Status is the triage status ("pending", "in_progress", ...) or
	// a chatbot flow state ("aguardando_cpf", ...). The two enums
	// coexist in this field; use ParsePhase for display decisions.
	Status string `json:"status"`

	// Tags are classifier-assigned labels ("agendamento_sucesso",
	// "reclamacao", ...).
	Tags []string `json:"tags,omitempty"`

	// Priority is 0-3: 0=low, 1=medium, 2=high, 3=urgent.
	Priority Priority `json:"priority"`

	// SentimentScore is the classifier's sentiment estimate in
	// [-100, 100]. Nil when the conversation has not been analyzed.
	SentimentScore *int `json:"sentiment_score,omitempty"`

	// AISummary is the classifier's free-text summary of the
	// conversation so far.
	AISummary string `json:"ai_summary,omitempty"`

	// AISuggestedAction is the classifier's recommended operator
	// action, when it has one.
	AISuggestedAction string `json:"ai_suggested_action,omitempty"`

	// MessageCount is the number of messages exchanged.
	MessageCount int `json:"message_count"`

	// BotResolution reports whether the chatbot resolved the
	// conversation without operator involvement.
	BotResolution bool `json:"bot_resolution,omitempty"`

	// HumanIntervention reports whether an operator stepped in.
	HumanIntervention bool `json:"human_intervention,omitempty"`

	// FirstMessageAt and LastMessageAt bound the conversation's
	// activity window.
	FirstMessageAt time.Time `json:"first_message_at"`
	LastMessageAt  time.Time `json:"last_message_at"`

	// ReviewedBy and ReviewedAt record the last operator review.
	ReviewedBy string    `json:"reviewed_by,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at,omitempty"`
}

// DisplayName returns the identity shown in the list pane: the patient
// name when known, otherwise the phone number.
func (s Summary) DisplayName() string {
	if s.PatientName != "" {
		return s.PatientName
	}
	return s.Phone
}

// Detail is the full view of one conversation: its summary row plus
// the ordered message history and operator notes, as returned by
// GET /dashboard/conversations/{id}.
type Detail struct {
	// Conversation is the summary record, possibly richer than the
	// list row (the server returns the full dashboard record).
	Conversation Summary `json:"conversation"`

	// Messages are ordered oldest to newest.
	Messages []Message `json:"messages"`

	// Notes are ordered newest first (server orders by created_at
	// descending).
	Notes []Note `json:"notes"`
}

// Message is one message in a conversation's history. Immutable once
// received.
type Message struct {
	ID string `json:"id,omitempty"`

	// Sender is "user" for the patient or "bot" for the chatbot and
	// operator side. Display code right-aligns bot messages and
	// left-aligns user messages.
	Sender string `json:"sender"`

	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`

	// Type is the media type: "text", "image", "audio". Empty means
	// text.
	Type string `json:"message_type,omitempty"`
}

// FromPatient reports whether the message was sent by the patient
// (the counterpart side of the conversation).
func (m Message) FromPatient() bool {
	return m.Sender == "user"
}

// Note is a free-text operator annotation on a conversation.
// Append-only: the dashboard API defines no edit or delete operation.
type Note struct {
	ID        string    `json:"id,omitempty"`
	Body      string    `json:"note"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
