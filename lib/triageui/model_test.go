// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nassif-clinic/triage/lib/convsync"
	"github.com/nassif-clinic/triage/lib/dashboard"
	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// stubAPI answers from a canned conversation set and records the
// criteria and mutations it receives.
type stubAPI struct {
	mu            sync.Mutex
	conversations []conversation.Summary
	lastCriteria  dashboard.FilterCriteria
	detailIDs     []string
	statusCalls   []string
	noteErr       error
	noteTexts     []string
}

func (api *stubAPI) ListConversations(ctx context.Context, criteria dashboard.FilterCriteria) (*dashboard.ListResult, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.lastCriteria = criteria
	return &dashboard.ListResult{
		Conversations: api.conversations,
		Pagination:    dashboard.Pagination{Total: len(api.conversations), Page: 1, Limit: 20},
	}, nil
}

func (api *stubAPI) ConversationDetail(ctx context.Context, conversationID string) (*conversation.Detail, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.detailIDs = append(api.detailIDs, conversationID)
	for _, summary := range api.conversations {
		if summary.ID == conversationID {
			return &conversation.Detail{
				Conversation: summary,
				Messages: []conversation.Message{
					{Sender: "user", Body: "preciso remarcar minha consulta"},
					{Sender: "bot", Body: "Claro! Qual a data desejada?"},
				},
			}, nil
		}
	}
	return &conversation.Detail{}, nil
}

func (api *stubAPI) UpdateStatus(ctx context.Context, conversationID, status string) error {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.statusCalls = append(api.statusCalls, conversationID+":"+status)
	return nil
}

func (api *stubAPI) AddNote(ctx context.Context, conversationID, text, author string) (*conversation.Note, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	if api.noteErr != nil {
		return nil, api.noteErr
	}
	api.noteTexts = append(api.noteTexts, text)
	return &conversation.Note{Body: text, CreatedBy: author}, nil
}

func (api *stubAPI) criteria() dashboard.FilterCriteria {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.lastCriteria
}

func testConversations() []conversation.Summary {
	return []conversation.Summary{
		{ID: "c1", PatientName: "Maria Silva", Phone: "+5511987654321", Status: "pending", Priority: conversation.PriorityUrgent, MessageCount: 8},
		{ID: "c2", PatientName: "João Souza", Phone: "+5511912345678", Status: "in_progress", Priority: conversation.PriorityMedium, MessageCount: 3},
		{ID: "c3", Phone: "+5521955554444", Status: "aguardando_data", Priority: conversation.PriorityLow, MessageCount: 12},
	}
}

// testModel builds a model over a controller with the stub API, runs
// the initial fetch, and delivers the resulting snapshot plus a
// window size so the model is ready for key input.
func testModel(t *testing.T, api *stubAPI) (Model, *convsync.Controller) {
	t.Helper()
	controller := convsync.NewController(api, nil, nil)
	controller.List.Refetch(context.Background())
	waitForItems(t, controller)

	model := NewModel(controller, nil)
	model = deliver(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
	model = deliver(t, model, listChangedMsg{})
	return model, controller
}

func waitForItems(t *testing.T, controller *convsync.Controller) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state := controller.List.State()
		if !state.Loading && len(state.Items) > 0 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for the list store; state: %+v", controller.List.State())
}

// deliver runs one Update cycle, asserting the model type back.
func deliver(t *testing.T, model Model, message tea.Msg) Model {
	t.Helper()
	updated, _ := model.Update(message)
	result, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return result
}

// deliverCmd runs one Update cycle and returns the command too.
func deliverCmd(t *testing.T, model Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := model.Update(message)
	result, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return result, cmd
}

func keyPress(character rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}}
}

func TestCursorMovementSelectsConversation(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, controller := testModel(t, api)

	model = deliver(t, model, keyPress('j'))
	if model.cursor != 1 {
		t.Fatalf("cursor = %d after j, want 1", model.cursor)
	}
	if model.selectedID != "c2" {
		t.Errorf("selectedID = %q, want \"c2\"", model.selectedID)
	}
	if got := controller.Detail.State().SelectedID; got != "c2" {
		t.Errorf("detail loader selection = %q, want \"c2\"", got)
	}

	model = deliver(t, model, keyPress('k'))
	if model.selectedID != "c1" {
		t.Errorf("selectedID = %q after k, want \"c1\"", model.selectedID)
	}
}

func TestSelectionSurvivesRefetch(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, controller := testModel(t, api)

	model = deliver(t, model, keyPress('j'))

	// A push-driven refetch reorders the list; the cursor must follow
	// the conversation, not the row index.
	api.mu.Lock()
	api.conversations = []conversation.Summary{
		api.conversations[2], api.conversations[0], api.conversations[1],
	}
	api.mu.Unlock()
	controller.List.Refetch(context.Background())
	waitForItems(t, controller)

	model = deliver(t, model, listChangedMsg{})
	if model.cursor != 2 || model.selectedID != "c2" {
		t.Errorf("cursor = %d selectedID = %q after reorder, want 2 / \"c2\"", model.cursor, model.selectedID)
	}
}

func TestStatusFilterCycleRoundTrips(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	model = deliver(t, model, keyPress('f'))
	time.Sleep(20 * time.Millisecond)

	criteria := api.criteria()
	if criteria.Status == nil || *criteria.Status != "pending" {
		t.Fatalf("criteria after one f = %+v, want status \"pending\"", criteria)
	}

	// A full cycle wraps back to no filter.
	for range len(statusCycle) - 1 {
		model = deliver(t, model, keyPress('f'))
	}
	time.Sleep(20 * time.Millisecond)
	if criteria := api.criteria(); criteria.Status != nil {
		t.Errorf("criteria after full cycle = %+v, want no status", criteria)
	}
}

func TestSearchDebounceDropsStaleSerials(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	model = deliver(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if model.focus != FocusSearch {
		t.Fatalf("focus = %v after /, want FocusSearch", model.focus)
	}
	for _, character := range "maria" {
		model = deliver(t, model, keyPress(character))
	}

	// Each keystroke bumped the serial; only the last may fire.
	model = deliver(t, model, searchDebounceMsg{serial: 1})
	time.Sleep(20 * time.Millisecond)
	if criteria := api.criteria(); criteria.Search != "" {
		t.Fatalf("stale debounce fired a fetch: %+v", criteria)
	}

	model = deliver(t, model, searchDebounceMsg{serial: model.searchSerial})
	time.Sleep(20 * time.Millisecond)
	if criteria := api.criteria(); criteria.Search != "maria" {
		t.Errorf("criteria.Search = %q, want \"maria\"", criteria.Search)
	}
}

func TestStatusDropdownOffersOnlyTriageStatuses(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	model = deliver(t, model, keyPress('s'))
	if model.focus != FocusDropdown || model.dropdown == nil {
		t.Fatal("s did not open the status dropdown")
	}

	statuses := conversation.Statuses()
	if len(model.dropdown.options) != len(statuses) {
		t.Fatalf("dropdown has %d options, want %d", len(model.dropdown.options), len(statuses))
	}
	for _, option := range model.dropdown.options {
		if !conversation.ValidStatus(option.Value) {
			t.Errorf("dropdown offers %q, which is not an assignable status", option.Value)
		}
	}
}

func TestDropdownSelectionMutatesStatus(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	model = deliver(t, model, keyPress('s'))
	model = deliver(t, model, tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := deliverCmd(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.dropdown != nil || model.focus != FocusList {
		t.Fatal("enter did not close the dropdown")
	}
	if cmd == nil {
		t.Fatal("enter produced no mutation command")
	}

	result, ok := cmd().(mutationResultMsg)
	if !ok || result.err != nil {
		t.Fatalf("mutation result = %+v", result)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.statusCalls) != 1 || api.statusCalls[0] != "c1:in_progress" {
		t.Errorf("status calls = %v, want [c1:in_progress]", api.statusCalls)
	}
}

func TestNoteModalKeepsDraftOnFailure(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	api.noteErr = &dashboard.APIError{StatusCode: 503, Detail: "service unavailable"}
	model, _ := testModel(t, api)

	model = deliver(t, model, keyPress('n'))
	if model.focus != FocusNoteModal || model.noteModal == nil {
		t.Fatal("n did not open the note modal")
	}
	for _, character := range "ligar amanhã" {
		model = deliver(t, model, keyPress(character))
	}

	model, cmd := deliverCmd(t, model, tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd == nil {
		t.Fatal("ctrl+d produced no submit command")
	}
	model = deliver(t, model, cmd())

	// The draft survives the failure for retry.
	if model.noteModal == nil {
		t.Fatal("failed submission closed the modal")
	}
	if got := model.noteModal.value(); got != "ligar amanhã" {
		t.Errorf("draft = %q after failure, want it intact", got)
	}
	if model.noteModal.submitting {
		t.Error("modal still marked submitting after failure")
	}
	if model.mutationError == "" {
		t.Error("failure produced no status bar notice")
	}
}

func TestNoteModalClosesOnSuccess(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	model = deliver(t, model, keyPress('n'))
	for _, character := range "confirmado" {
		model = deliver(t, model, keyPress(character))
	}
	model, cmd := deliverCmd(t, model, tea.KeyMsg{Type: tea.KeyCtrlD})
	model = deliver(t, model, cmd())

	if model.noteModal != nil || model.focus != FocusList {
		t.Error("successful submission did not close the modal")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.noteTexts) != 1 || api.noteTexts[0] != "confirmado" {
		t.Errorf("note texts = %v", api.noteTexts)
	}
}

func TestBlankNoteIsRejectedLocally(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	model = deliver(t, model, keyPress('n'))
	model = deliver(t, model, keyPress(' '))
	model, cmd := deliverCmd(t, model, tea.KeyMsg{Type: tea.KeyCtrlD})

	if model.mutationError == "" {
		t.Error("blank note produced no error notice")
	}
	if model.noteModal == nil {
		t.Error("blank note closed the modal")
	}
	// The fade timer command is fine; a mutation command is not.
	if cmd != nil {
		if _, isMutation := cmd().(mutationResultMsg); isMutation {
			t.Error("blank note reached the mutation path")
		}
	}
}

func TestViewShowsRowsAndStatusLabels(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	view := model.View()
	if !strings.Contains(view, "Maria Silva") {
		t.Error("view missing patient name")
	}
	if !strings.Contains(view, "Pendente") {
		t.Error("view missing translated status label")
	}
	// The flow-state conversation shows its Portuguese label too.
	if !strings.Contains(view, "Data") {
		t.Error("view missing flow state label")
	}
	// No name on record falls back to the phone number.
	if !strings.Contains(view, "+5521955554444") {
		t.Error("view missing phone fallback for unnamed patient")
	}
}

func TestViewShowsConnectionState(t *testing.T) {
	api := &stubAPI{conversations: testConversations()}
	model, _ := testModel(t, api)

	// No channel manager: the indicator reports offline.
	if view := model.View(); !strings.Contains(view, "offline") {
		t.Error("view missing offline indicator without a channel")
	}
}
