// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nassif-clinic/triage/lib/convsync"
	"github.com/nassif-clinic/triage/lib/dashboard"
	"github.com/nassif-clinic/triage/lib/schema/conversation"
)

// Tab identifies the top-level view.
type Tab int

const (
	// TabConversations is the triage queue with the split list/detail
	// view. The primary use case.
	TabConversations Tab = iota
	// TabAnalytics shows aggregate metrics for the last week.
	TabAnalytics
)

// FocusRegion identifies where keyboard input routes.
type FocusRegion int

const (
	// FocusList means navigation keys move the conversation cursor.
	FocusList FocusRegion = iota
	// FocusDetail means navigation keys scroll the detail pane.
	FocusDetail
	// FocusSearch means keystrokes go to the search input.
	FocusSearch
	// FocusDropdown means the status dropdown captures all input.
	FocusDropdown
	// FocusNoteModal means the note editor captures all input.
	FocusNoteModal
)

// searchDebounceDelay is how long after the last search keystroke the
// query is sent to the service. Status and priority cycling apply
// immediately; only free text is debounced.
const searchDebounceDelay = 400 * time.Millisecond

// mutationErrorFadeDelay is how long a failed mutation stays visible
// in the status bar.
const mutationErrorFadeDelay = 5 * time.Second

// listChangedMsg and detailChangedMsg wake the model when a store
// publishes a new snapshot.
type listChangedMsg struct{}
type detailChangedMsg struct{}

// searchDebounceMsg fires after the debounce delay; stale serials are
// ignored so only the final keystroke of a burst triggers a fetch.
type searchDebounceMsg struct {
	serial int
}

// mutationResultMsg delivers the outcome of an asynchronous mutation.
type mutationResultMsg struct {
	err  error
	note bool // True when the mutation was a note submission.
}

// mutationErrorFadeMsg clears the mutation error notice.
type mutationErrorFadeMsg struct{}

// Model is the top-level bubbletea model for the triage dashboard.
type Model struct {
	controller *convsync.Controller
	analytics  AnalyticsFetcher
	theme      Theme
	keys       KeyMap
	ctx        context.Context

	// Store change subscriptions, created once in NewModel and
	// re-armed after each delivery.
	listChanges   <-chan struct{}
	detailChanges <-chan struct{}

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	activeTab Tab
	filter    filterBar

	// List state snapshot from the list store, plus cursor tracking.
	// selectedID gives stable focus across refetches: after new data
	// lands the cursor follows the conversation, not the row index.
	items        []conversation.Summary
	pagination   dashboard.Pagination
	listLoading  bool
	listErr      error
	cursor       int
	scrollOffset int
	selectedID   string

	// Two-pane layout.
	focus      FocusRegion
	priorFocus FocusRegion // Saved focus when entering search mode.
	splitRatio float64
	detailPane detailPane

	// Overlays.
	dropdown  *statusDropdown
	noteModal *noteModal

	// Operator identity, attached to notes and status reviews.
	operator string

	// Search debounce serial; incremented on every keystroke.
	searchSerial int

	// Analytics tab state.
	analyticsSummary *dashboard.AnalyticsSummary
	analyticsErr     error

	// Status bar notices.
	mutationError string
	logNotice     string
	logLevel      slog.Level
}

// NewModel creates a Model over a running session controller. The
// analytics fetcher may be nil, which hides the Análise tab's data
// (the tab shows a placeholder).
func NewModel(controller *convsync.Controller, analytics AnalyticsFetcher) Model {
	model := Model{
		controller:    controller,
		analytics:     analytics,
		theme:         DefaultTheme,
		keys:          DefaultKeyMap,
		ctx:           context.Background(),
		listChanges:   controller.List.Subscribe(),
		detailChanges: controller.Detail.Subscribe(),
		filter:        newFilterBar(),
		splitRatio:    0.45,
		detailPane:    newDetailPane(DefaultTheme),
	}
	model.snapshotList()
	model.detailPane.setContent(nil, false, nil)
	return model
}

// SetOperator records who is using the dashboard. The name is sent as
// the author of notes and reviews.
func (model *Model) SetOperator(name string) {
	model.operator = name
}

// Init implements tea.Model: starts the store subscriptions.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		listenForChange(model.listChanges, func() tea.Msg { return listChangedMsg{} }),
		listenForChange(model.detailChanges, func() tea.Msg { return detailChangedMsg{} }),
	)
}

// listenForChange blocks until the store signals, then delivers the
// given message. Re-armed by Update after each delivery.
func listenForChange(channel <-chan struct{}, message func() tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-channel
		return message()
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updatePaneSizes()
		model.syncDetailPane()
		return model, nil

	case listChangedMsg:
		model.snapshotList()
		return model, listenForChange(model.listChanges, func() tea.Msg { return listChangedMsg{} })

	case detailChangedMsg:
		model.syncDetailPane()
		return model, listenForChange(model.detailChanges, func() tea.Msg { return detailChangedMsg{} })

	case searchDebounceMsg:
		if message.serial == model.searchSerial {
			model.applyFilter()
		}
		return model, nil

	case mutationResultMsg:
		return model.handleMutationResult(message)

	case mutationErrorFadeMsg:
		model.mutationError = ""
		return model, nil

	case logRecordMsg:
		model.logNotice = message.Summary
		model.logLevel = message.Level
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg { return logRecordFadeMsg{} })

	case logRecordFadeMsg:
		model.logNotice = ""
		return model, nil

	case analyticsMsg:
		model.analyticsSummary = message.summary
		model.analyticsErr = message.err
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)
	}

	return model, nil
}

// handleKey routes keyboard input by focus region.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.focus {
	case FocusDropdown:
		return model.handleDropdownKeys(message)
	case FocusNoteModal:
		return model.handleNoteModalKeys(message)
	case FocusSearch:
		return model.handleSearchKeys(message)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.TabConversations):
		model.activeTab = TabConversations
		return model, nil

	case key.Matches(message, model.keys.TabAnalytics):
		model.activeTab = TabAnalytics
		if model.analytics != nil {
			model.analyticsSummary = nil
			model.analyticsErr = nil
			return model, fetchAnalytics(model.ctx, model.analytics)
		}
		return model, nil

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusList {
			model.focus = FocusDetail
		} else {
			model.focus = FocusList
		}
		return model, nil

	case key.Matches(message, model.keys.FilterActivate):
		model.priorFocus = model.focus
		model.filter.active = true
		model.focus = FocusSearch
		return model, nil

	case key.Matches(message, model.keys.FilterClear):
		if !model.filter.empty() {
			model.filter.clear()
			model.applyFilter()
		}
		return model, nil

	case key.Matches(message, model.keys.CycleStatus):
		model.filter.cycleStatus()
		model.applyFilter()
		return model, nil

	case key.Matches(message, model.keys.CyclePriority):
		model.filter.cyclePriority()
		model.applyFilter()
		return model, nil

	case key.Matches(message, model.keys.Refresh):
		model.controller.List.Refetch(model.ctx)
		if model.selectedID != "" {
			model.controller.Detail.Invalidate(model.ctx, model.selectedID)
		}
		return model, nil

	case key.Matches(message, model.keys.ChangeStatus):
		if summary := model.selectedSummary(); summary != nil {
			model.dropdown = newStatusDropdown(summary.ID, summary.Status)
			model.focus = FocusDropdown
		}
		return model, nil

	case key.Matches(message, model.keys.AddNote):
		if summary := model.selectedSummary(); summary != nil {
			model.noteModal = newNoteModal(summary.ID, summary.DisplayName(), model.theme)
			model.focus = FocusNoteModal
		}
		return model, nil
	}

	if model.focus == FocusDetail {
		model.handleDetailKeys(message)
	} else {
		model.handleListKeys(message)
	}
	return model, nil
}

// handleListKeys moves the cursor; the selection follows it, driving
// the detail loader.
func (model *Model) handleListKeys(message tea.KeyMsg) {
	previous := model.cursor

	switch {
	case key.Matches(message, model.keys.Up):
		model.cursor--
	case key.Matches(message, model.keys.Down):
		model.cursor++
	case key.Matches(message, model.keys.PageUp):
		model.cursor -= model.visibleListHeight()
	case key.Matches(message, model.keys.PageDown):
		model.cursor += model.visibleListHeight()
	case key.Matches(message, model.keys.Home):
		model.cursor = 0
	case key.Matches(message, model.keys.End):
		model.cursor = len(model.items) - 1
	default:
		return
	}

	model.clampCursor()
	if model.cursor != previous {
		model.selectCursorRow()
	}
	model.ensureCursorVisible()
}

func (model *Model) handleDetailKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.detailPane.scrollUp(1)
	case key.Matches(message, model.keys.Down):
		model.detailPane.scrollDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.detailPane.scrollUp(model.visibleListHeight())
	case key.Matches(message, model.keys.PageDown):
		model.detailPane.scrollDown(model.visibleListHeight())
	case key.Matches(message, model.keys.Home):
		model.detailPane.scrollToTop()
	case key.Matches(message, model.keys.End):
		model.detailPane.scrollToBottom()
	}
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEscape:
		model.filter.clear()
		model.focus = model.priorFocus
		model.applyFilter()
		return model, nil

	case tea.KeyEnter:
		model.filter.active = false
		model.focus = model.priorFocus
		model.applyFilter()
		return model, nil

	case tea.KeyBackspace:
		if model.filter.handleBackspace() {
			return model.debounceSearch()
		}
		return model, nil

	case tea.KeyRunes, tea.KeySpace:
		for _, character := range message.Runes {
			model.filter.handleRune(character)
		}
		return model.debounceSearch()
	}
	return model, nil
}

// debounceSearch schedules the fetch for the current search text.
func (model Model) debounceSearch() (tea.Model, tea.Cmd) {
	model.searchSerial++
	serial := model.searchSerial
	return model, tea.Tick(searchDebounceDelay, func(time.Time) tea.Msg {
		return searchDebounceMsg{serial: serial}
	})
}

func (model Model) handleDropdownKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEscape:
		model.dropdown = nil
		model.focus = FocusList
		return model, nil

	case tea.KeyUp:
		model.dropdown.moveUp()
		return model, nil

	case tea.KeyDown:
		model.dropdown.moveDown()
		return model, nil

	case tea.KeyEnter:
		option := model.dropdown.selected()
		conversationID := model.dropdown.conversationID
		model.dropdown = nil
		model.focus = FocusList
		return model, func() tea.Msg {
			err := model.controller.Mutations.SetStatus(model.ctx, conversationID, option.Value)
			return mutationResultMsg{err: err}
		}
	}

	switch message.String() {
	case "k":
		model.dropdown.moveUp()
	case "j":
		model.dropdown.moveDown()
	}
	return model, nil
}

func (model Model) handleNoteModalKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEscape:
		// Abandoning the draft is explicit; failures never discard it.
		model.noteModal = nil
		model.focus = FocusList
		return model, nil

	case tea.KeyCtrlD:
		if model.noteModal.submitting {
			return model, nil
		}
		text := model.noteModal.value()
		if strings.TrimSpace(text) == "" {
			model.mutationError = "a nota não pode ser vazia"
			return model, scheduleMutationErrorFade()
		}
		model.noteModal.submitting = true
		conversationID := model.noteModal.conversationID
		return model, func() tea.Msg {
			err := model.controller.Mutations.AddNote(model.ctx, conversationID, text, model.operator)
			return mutationResultMsg{err: err, note: true}
		}
	}

	model.noteModal.update(message)
	return model, nil
}

// handleMutationResult closes overlays on success; on failure the
// note modal stays open with the draft intact so the operator can
// retry.
func (model Model) handleMutationResult(message mutationResultMsg) (tea.Model, tea.Cmd) {
	if message.err == nil {
		if message.note {
			model.noteModal = nil
			model.focus = FocusList
		}
		return model, nil
	}

	if message.note && model.noteModal != nil {
		model.noteModal.submitting = false
	}
	model.mutationError = message.err.Error()
	return model, scheduleMutationErrorFade()
}

func scheduleMutationErrorFade() tea.Cmd {
	return tea.Tick(mutationErrorFadeDelay, func(time.Time) tea.Msg {
		return mutationErrorFadeMsg{}
	})
}

// snapshotList copies the current list store state into the model and
// restores cursor focus on the previously selected conversation.
func (model *Model) snapshotList() {
	state := model.controller.List.State()
	model.items = state.Items
	model.pagination = state.Pagination
	model.listLoading = state.Loading
	model.listErr = state.Err

	model.restoreSelection()
	model.ensureCursorVisible()
}

// restoreSelection finds the selected conversation in the new items
// and moves the cursor to it. When it is gone (closed, filtered out),
// the cursor clamps and the nearest row becomes selected.
func (model *Model) restoreSelection() {
	if model.selectedID != "" {
		for index, summary := range model.items {
			if summary.ID == model.selectedID {
				model.cursor = index
				return
			}
		}
	}
	model.clampCursor()
	if model.selectedID != "" && len(model.items) > 0 {
		model.selectCursorRow()
	}
}

func (model *Model) clampCursor() {
	if model.cursor >= len(model.items) {
		model.cursor = len(model.items) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

// selectCursorRow points the detail loader at the conversation under
// the cursor.
func (model *Model) selectCursorRow() {
	if model.cursor < 0 || model.cursor >= len(model.items) {
		return
	}
	id := model.items[model.cursor].ID
	if id == model.selectedID {
		return
	}
	model.selectedID = id
	model.controller.Detail.Select(model.ctx, id)
}

// selectedSummary returns the conversation under the cursor, nil when
// the list is empty.
func (model *Model) selectedSummary() *conversation.Summary {
	if model.cursor < 0 || model.cursor >= len(model.items) {
		return nil
	}
	return &model.items[model.cursor]
}

// syncDetailPane pushes the detail loader state into the pane.
func (model *Model) syncDetailPane() {
	state := model.controller.Detail.State()
	model.detailPane.setContent(state.Detail, state.Loading, state.Err)
}

// applyFilter sends the current criteria to the list store.
func (model *Model) applyFilter() {
	model.controller.List.SetFilter(model.ctx, model.filter.criteria())
}

func (model *Model) ensureCursorVisible() {
	visible := model.visibleListHeight()
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
	if model.scrollOffset < 0 {
		model.scrollOffset = 0
	}
}

func (model *Model) updatePaneSizes() {
	model.detailPane.setSize(model.detailWidth(), model.visibleListHeight())
}

// Layout: header (1) + filter line (0 or 1) + body + status bar (1).
func (model Model) visibleListHeight() int {
	height := model.height - 2
	if model.filter.view(model.theme, model.width) != "" {
		height--
	}
	if height < 1 {
		height = 1
	}
	return height
}

func (model Model) listWidth() int {
	// One column for each scrollbar and one for the divider.
	width := int(float64(model.width)*model.splitRatio) - 2
	if width < 20 {
		width = 20
	}
	return width
}

func (model Model) detailWidth() int {
	width := model.width - model.listWidth() - 3
	if width < 20 {
		width = 20
	}
	return width
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "carregando..."
	}

	sections := []string{model.renderHeader()}
	if filterLine := model.filter.view(model.theme, model.width); filterLine != "" {
		sections = append(sections, filterLine)
	}

	if model.activeTab == TabAnalytics {
		body := renderAnalytics(model.theme, model.analyticsSummary, model.analyticsErr, model.width, model.visibleListHeight())
		sections = append(sections, padToHeight(body, model.visibleListHeight()))
	} else {
		sections = append(sections, model.renderSplitView())
	}

	sections = append(sections, model.renderStatusBar())
	view := strings.Join(sections, "\n")

	if model.dropdown != nil {
		anchorY := model.contentStartY() + model.cursor - model.scrollOffset + 1
		view = spliceOverlay(view, model.dropdown.render(model.theme), 4, anchorY)
	}
	if model.noteModal != nil {
		lines, anchorX, anchorY := model.noteModal.render(model.width, model.height)
		view = spliceOverlay(view, lines, anchorX, anchorY)
	}
	return view
}

// contentStartY is the screen row where the list body begins.
func (model Model) contentStartY() int {
	y := 1
	if model.filter.view(model.theme, model.width) != "" {
		y++
	}
	return y
}

func (model Model) renderHeader() string {
	tabStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)

	conversas := tabStyle.Render(" 1 Conversas ")
	analise := tabStyle.Render(" 2 Análise ")
	if model.activeTab == TabConversations {
		conversas = activeStyle.Render(" 1 Conversas ")
	} else {
		analise = activeStyle.Render(" 2 Análise ")
	}

	total := ""
	if model.pagination.Total > 0 {
		total = lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render(fmt.Sprintf("%d conversas", model.pagination.Total))
	}

	indicator := model.renderConnectionIndicator()
	left := conversas + analise + " " + total

	gap := model.width - ansi.StringWidth(left) - ansi.StringWidth(indicator) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + indicator
}

// renderConnectionIndicator shows realtime channel health: a green
// dot when live, red when reconnecting or absent.
func (model Model) renderConnectionIndicator() string {
	if model.controller.Connected() {
		return lipgloss.NewStyle().Foreground(model.theme.ChannelLive).Render("● ao vivo")
	}
	return lipgloss.NewStyle().Foreground(model.theme.ChannelDown).Render("○ offline")
}

func (model Model) renderSplitView() string {
	listPane := model.renderListPane()
	height := model.visibleListHeight()

	divider := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.TrimRight(strings.Repeat("│\n", height), "\n"))

	listBar := renderScrollbar(model.theme, height, len(model.items), height, model.scrollOffset, model.focus == FocusList)
	detailBar := renderScrollbar(model.theme, height, len(model.detailPane.lines), height, model.detailPane.scrollOffset, model.focus == FocusDetail)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		listPane, listBar, divider, model.detailPane.view(), detailBar)
}

func (model Model) renderListPane() string {
	height := model.visibleListHeight()
	width := model.listWidth()
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	if model.listErr != nil {
		errorStyle := lipgloss.NewStyle().Foreground(model.theme.StatusRequiresAttention)
		lines := []string{
			"",
			errorStyle.Render(" Falha ao carregar conversas"),
			faint.Render(" " + ansi.Truncate(model.listErr.Error(), width-2, "…")),
			"",
			faint.Render(" r para tentar novamente"),
		}
		return padToHeight(strings.Join(lines, "\n"), height)
	}

	if len(model.items) == 0 {
		notice := " Nenhuma conversa"
		if model.listLoading {
			notice = " Carregando..."
		} else if !model.filter.empty() {
			notice = " Nenhuma conversa para o filtro atual"
		}
		return padToHeight("\n"+faint.Render(notice), height)
	}

	renderer := newListRenderer(model.theme, width, time.Now())
	var rows []string
	for index := model.scrollOffset; index < model.scrollOffset+height && index < len(model.items); index++ {
		selected := index == model.cursor && model.focus != FocusDetail
		rows = append(rows, renderer.renderRow(model.items[index], selected))
	}
	return padToHeight(strings.Join(rows, "\n"), height)
}

func (model Model) renderStatusBar() string {
	switch {
	case model.mutationError != "":
		style := lipgloss.NewStyle().Foreground(model.theme.StatusRequiresAttention)
		return style.Render(ansi.Truncate(" ✗ "+model.mutationError, model.width, "…"))

	case model.logNotice != "":
		color := model.theme.StatusPending
		if model.logLevel >= slog.LevelError {
			color = model.theme.StatusRequiresAttention
		}
		style := lipgloss.NewStyle().Foreground(color)
		return style.Render(ansi.Truncate(" "+model.logNotice, model.width, "…"))
	}

	help := " j/k navegar  Tab painel  / buscar  f status  p prioridade  s mudar  n nota  r atualizar  q sair"
	if model.listLoading {
		help = " atualizando..." + help
	}
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	return style.Render(ansi.Truncate(help, model.width, "…"))
}

// padToHeight appends blank lines until content spans the height.
func padToHeight(content string, height int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
