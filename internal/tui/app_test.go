package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/onelouder/autoplex/internal/api"
	"github.com/onelouder/autoplex/internal/api/apitest"
	"github.com/onelouder/autoplex/internal/applog"
	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"
	"github.com/onelouder/autoplex/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, dir string) (appModel, *apitest.Backend) {
	t.Helper()
	b := apitest.NewBackend(t)
	m := newTestModelFor(t, b, dir)
	return m, b
}

func newTestModelFor(t *testing.T, b *apitest.Backend, dir string) appModel {
	t.Helper()
	c, err := api.New(b.APIURL())
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	m := newAppModel(context.Background(), Config{
		Runner:      state.NewRunner(c, state.WithLogger(applog.Discard())),
		Store:       store.Store{Dir: dir},
		RunNowDelay: 2 * time.Second,
		Quota:       100,
		DocumentURL: c.DocumentURL,
		Logger:      applog.Discard(),
	})
	m.apply(state.Init{})
	return settle(t, m)
}

// settle runs queued effects synchronously, delayed ones included, until
// none remain.
func settle(t *testing.T, m appModel) appModel {
	t.Helper()
	for i := 0; len(m.pending) > 0; i++ {
		if i > 50 {
			t.Fatalf("effects did not settle: %#v", m.pending)
		}
		effs := m.pending
		m.pending = nil
		for _, eff := range effs {
			m.apply(m.runner.Run(m.ctx, state.Immediate(eff)))
		}
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys without settling.
func press(m appModel, keys ...string) appModel {
	for _, k := range keys {
		m, _ = m.update(keyMsg(k))
	}
	return m
}

func typeText(m appModel, s string) appModel {
	for _, r := range s {
		m, _ = m.update(keyMsg(string(r)))
	}
	return m
}

func TestInit_LoadsEveryResource(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddTopic("AI Safety", "alignment research", "ai")
	b.AddTopic("Fusion", "tokamak confinement")
	b.AddJournalEntry(model.JournalEntry{Filename: "ai-safety-new.html", TopicName: "AI Safety", Updated: "2026-10-01"}, "<p>x</p>")

	m := newTestModelFor(t, b, t.TempDir())

	for _, r := range []state.Resource{state.ResourceTopics, state.ResourceJournal, state.ResourceStatus, state.ResourceSchedule} {
		if !m.st.Loaded(r) {
			t.Fatalf("expected %s loaded", r)
		}
	}
	if got := len(m.topicsList.Items()); got != 2 {
		t.Fatalf("expected 2 topic rows, got %d", got)
	}
	if got := len(m.journalList.Items()); got != 1 {
		t.Fatalf("expected 1 journal row, got %d", got)
	}
	out := m.View()
	if !strings.Contains(out, "AI Safety") || !strings.Contains(out, "Fusion") {
		t.Fatalf("expected topic names in view; got:\n%s", out)
	}
}

func TestTopics_EmptyStateMessage(t *testing.T) {
	m, _ := newTestModel(t, t.TempDir())
	if out := m.View(); !strings.Contains(out, "No research topics yet") {
		t.Fatalf("expected empty state; got:\n%s", out)
	}
}

func TestQuickAdd_OpensPrefilledFormThenCreates(t *testing.T) {
	m, b := newTestModel(t, t.TempDir())

	m = press(m, "a")
	if !m.quickAddOpen {
		t.Fatalf("expected quick add line to open")
	}
	m = typeText(m, "Fusion")
	m = press(m, "enter")

	if m.modal != modalTopicForm || m.st.Editing == nil {
		t.Fatalf("expected topic form; modal=%v editing=%#v", m.modal, m.st.Editing)
	}
	if got := m.nameInput.Value(); got != "Fusion" {
		t.Fatalf("expected name prefilled, got %q", got)
	}
	if m.formFocus != formFocusQuery {
		t.Fatalf("expected focus on query, got %v", m.formFocus)
	}

	m = typeText(m, "tokamak")
	m = settle(t, press(m, "enter"))

	if m.modal != modalNone || m.st.Editing != nil {
		t.Fatalf("expected form closed after save")
	}
	if got := b.Topics(); len(got) != 1 || got[0].Name != "Fusion" || got[0].Query != "tokamak" {
		t.Fatalf("unexpected backend topics %#v", got)
	}
	if len(m.st.Topics) != 1 {
		t.Fatalf("expected re-fetched list, got %#v", m.st.Topics)
	}
	if !strings.Contains(m.minibufferText, `"Fusion" created`) {
		t.Fatalf("expected success notice, got %q", m.minibufferText)
	}
}

func TestTopicForm_RequiredFieldsKeepFormOpen(t *testing.T) {
	m, b := newTestModel(t, t.TempDir())

	m = press(m, "n")
	m = typeText(m, "Only a name")
	m = settle(t, press(m, "enter", "enter"))

	if m.modal != modalTopicForm || m.st.Editing == nil {
		t.Fatalf("expected form to stay open")
	}
	if m.st.Editing.Err != state.MsgRequiredFields {
		t.Fatalf("expected validation message, got %q", m.st.Editing.Err)
	}
	if m.minibufferLevel != state.NoticeError {
		t.Fatalf("expected error notice, got %q", m.minibufferLevel)
	}
	if b.Calls("POST /api/topics") != 0 {
		t.Fatalf("invalid form must not reach the server")
	}
	if out := m.View(); !strings.Contains(out, "Add Research Topic") {
		t.Fatalf("expected form title in view; got:\n%s", out)
	}

	m = press(m, "esc")
	if m.modal != modalNone || m.st.Editing != nil {
		t.Fatalf("expected esc to close the form")
	}
}

func TestTopicForm_EditUpdatesSelectedTopic(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddTopic("First", "one")
	second := b.AddTopic("Second", "two")
	m := newTestModelFor(t, b, t.TempDir())

	m = press(m, "down", "e")
	if m.st.Editing == nil || !m.st.Editing.ID.Equal(second.ID) {
		t.Fatalf("expected editing second topic, got %#v", m.st.Editing)
	}
	if got := m.queryInput.Value(); got != "two" {
		t.Fatalf("expected query prefilled, got %q", got)
	}

	m = press(m, "tab")
	m = typeText(m, " more")
	m = settle(t, press(m, "ctrl+s"))

	if m.st.Editing != nil {
		t.Fatalf("expected form closed")
	}
	got, _ := model.FindTopic(b.Topics(), second.ID)
	if got.Query != "two more" {
		t.Fatalf("unexpected query %q", got.Query)
	}
}

func TestDelete_AsksBeforeDeleting(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddTopic("Keep", "k")
	b.AddTopic("Gone", "g")
	m := newTestModelFor(t, b, t.TempDir())

	m = press(m, "down", "d")
	if m.modal != modalConfirmDelete {
		t.Fatalf("expected confirm modal, got %v", m.modal)
	}
	if out := m.View(); !strings.Contains(out, `"Gone"`) {
		t.Fatalf("expected prompt naming the topic; got:\n%s", out)
	}

	m = settle(t, press(m, "n"))
	if m.modal != modalNone || len(b.Topics()) != 2 {
		t.Fatalf("cancel must keep both topics")
	}

	m = settle(t, press(m, "d", "y"))
	if got := b.Topics(); len(got) != 1 || got[0].Name != "Keep" {
		t.Fatalf("unexpected backend topics %#v", got)
	}
	if len(m.st.Topics) != 1 || m.st.Topics[0].Name != "Keep" {
		t.Fatalf("unexpected local topics %#v", m.st.Topics)
	}
	if m.minibufferText != state.MsgTopicDeleted {
		t.Fatalf("unexpected notice %q", m.minibufferText)
	}
}

func TestDelete_EnterDefaultsToCancel(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddTopic("Keep", "k")
	m := newTestModelFor(t, b, t.TempDir())

	m = settle(t, press(m, "d", "enter"))
	if len(b.Topics()) != 1 {
		t.Fatalf("enter on the default focus must not delete")
	}
}

func TestRunNow_DefersStatusRefresh(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddTopic("AI Safety", "alignment")
	m := newTestModelFor(t, b, t.TempDir())

	m = press(m, "r")
	if len(m.pending) != 1 {
		t.Fatalf("expected one run effect, got %#v", m.pending)
	}
	eff := m.pending[0]
	m.pending = nil
	m.apply(m.runner.Run(m.ctx, eff))

	if len(m.pending) != 1 || state.Delay(m.pending[0]) != 2*time.Second {
		t.Fatalf("expected delayed status refresh, got %#v", m.pending)
	}
	if !strings.Contains(m.minibufferText, "Started search") {
		t.Fatalf("unexpected notice %q", m.minibufferText)
	}

	m = settle(t, m)
	if m.st.Status == nil || m.st.Status.Status.APICallsThisMonth != 1 {
		t.Fatalf("expected refreshed status, got %#v", m.st.Status)
	}
}

func TestFetchFailure_KeepsListAndShowsError(t *testing.T) {
	b := apitest.NewBackend(t)
	b.AddTopic("AI Safety", "alignment")
	m := newTestModelFor(t, b, t.TempDir())

	b.Fail("GET /api/topics", 500)
	m = settle(t, press(m, "R"))

	if len(m.st.Topics) != 1 {
		t.Fatalf("failed fetch must keep the previous list")
	}
	if m.minibufferText != state.MsgFetchTopicsFailed || m.minibufferLevel != state.NoticeError {
		t.Fatalf("unexpected notice %q (%s)", m.minibufferText, m.minibufferLevel)
	}
}

func addEntries(b *apitest.Backend) {
	b.AddJournalEntry(model.JournalEntry{Filename: "ai-safety-new.html", TopicName: "AI Safety", Updated: "2026-10-01", Tags: []string{"alignment"}}, "<h1>Findings</h1><p>Interpretability results.</p>")
	b.AddJournalEntry(model.JournalEntry{Filename: "fusion-updated.html", TopicName: "Fusion", Updated: "2026-10-02", Tags: []string{"energy"}}, "<p>Tokamak</p>")
}

func TestJournal_FilterNarrowsAndPersists(t *testing.T) {
	dir := t.TempDir()
	b := apitest.NewBackend(t)
	addEntries(b)
	m := newTestModelFor(t, b, dir)

	m = press(m, "2", "/")
	if m.tab != tabJournal || !m.filterActive {
		t.Fatalf("expected journal search; tab=%v active=%v", m.tab, m.filterActive)
	}
	m = typeText(m, "ENERGY")
	if got := m.st.VisibleJournal(); len(got) != 1 || got[0].TopicName != "Fusion" {
		t.Fatalf("expected tag match, got %#v", got)
	}
	if got := len(m.journalList.Items()); got != 1 {
		t.Fatalf("expected list narrowed, got %d rows", got)
	}
	m = press(m, "enter")

	restored := newTestModelFor(t, b, dir)
	if restored.tab != tabJournal {
		t.Fatalf("expected journal tab restored, got %v", restored.tab)
	}
	if restored.st.Filter != "energy" || len(restored.st.VisibleJournal()) != 1 {
		t.Fatalf("expected filter restored, got %q", restored.st.Filter)
	}

	restored = press(restored, "esc")
	if restored.st.Filter != "" || len(restored.journalList.Items()) != 2 {
		t.Fatalf("expected esc to clear the filter")
	}
}

func TestJournal_NoMatchMessage(t *testing.T) {
	b := apitest.NewBackend(t)
	addEntries(b)
	m := newTestModelFor(t, b, t.TempDir())

	m = press(m, "2", "/")
	m = typeText(m, "zzz")
	if out := m.View(); !strings.Contains(out, `No entries match "zzz"`) {
		t.Fatalf("expected no-match message; got:\n%s", out)
	}
}

func TestJournal_ViewEntryOpensDocument(t *testing.T) {
	b := apitest.NewBackend(t)
	addEntries(b)
	m := newTestModelFor(t, b, t.TempDir())

	m = press(m, "2", "enter")
	if m.modal != modalDocument || m.st.Document == nil || !m.st.Document.Loading {
		t.Fatalf("expected loading document, got %#v", m.st.Document)
	}
	m = settle(t, m)
	if m.st.Document == nil || !strings.Contains(m.st.Document.Markdown, "Interpretability") {
		t.Fatalf("expected converted markdown, got %#v", m.st.Document)
	}
	if out := m.View(); !strings.Contains(out, "ai-safety-new.html") {
		t.Fatalf("expected filename header; got:\n%s", out)
	}

	m = press(m, "esc")
	if m.modal != modalNone || m.st.Document != nil {
		t.Fatalf("expected esc to close the document")
	}
}

func TestSchedule_ValidatesThenSaves(t *testing.T) {
	m, b := newTestModel(t, t.TempDir())

	m = press(m, "4", "down")
	if m.schedFocus != scheduleFocusTime || !m.timeInput.Focused() {
		t.Fatalf("expected time field focused")
	}
	m = press(m, "backspace", "backspace", "backspace", "backspace", "backspace")
	m = typeText(m, "25:00")
	m = settle(t, press(m, "ctrl+s"))

	if m.minibufferText != msgInvalidTime {
		t.Fatalf("expected validation error, got %q", m.minibufferText)
	}
	if b.Calls("POST /api/schedule") != 0 {
		t.Fatalf("invalid time must not reach the server")
	}

	m = press(m, "backspace", "backspace", "backspace", "backspace", "backspace")
	m = typeText(m, "7:30")
	m = press(m, "up", "right")
	if m.sched.Frequency != model.FrequencyWeekly {
		t.Fatalf("expected weekly, got %q", m.sched.Frequency)
	}
	m = press(m, "down", "down", " ")
	if !m.sched.EmailNotifications {
		t.Fatalf("expected email toggled on")
	}
	m = settle(t, press(m, "ctrl+s"))

	got := b.Schedule()
	if got.Frequency != model.FrequencyWeekly || got.TimeOfDay != "07:30" || !got.EmailNotifications {
		t.Fatalf("unexpected saved schedule %#v", got)
	}
	if m.minibufferText != state.MsgScheduleUpdated {
		t.Fatalf("unexpected notice %q", m.minibufferText)
	}
	if m.schedDirty {
		t.Fatalf("expected draft to follow the saved schedule")
	}
}

func TestStatus_RendersUsageAndActivity(t *testing.T) {
	b := apitest.NewBackend(t)
	name := "AI Safety"
	b.SetStatus(model.StatusSnapshot{
		Status: model.AppStatus{Status: "idle", APICallsThisMonth: 85},
		RecentActivity: []model.Activity{{
			Timestamp: model.Timestamp{Time: time.Now().Add(-5 * time.Minute)},
			TopicName: &name,
			Status:    model.ActivitySuccess,
			Message:   "Found 3 new papers",
		}},
	})
	m := newTestModelFor(t, b, t.TempDir())
	m = press(m, "3")

	out := m.View()
	for _, want := range []string{"Idle", "85/100", "Found 3 new papers", "No updates scheduled"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status view; got:\n%s", want, out)
		}
	}
}

func TestPollTick_RefreshesStatus(t *testing.T) {
	m, b := newTestModel(t, t.TempDir())
	before := b.Calls("GET /api/status")

	m, cmd := m.update(pollTickMsg{})
	if cmd == nil {
		t.Fatalf("expected the next poll to be scheduled")
	}
	settle(t, m)
	if got := b.Calls("GET /api/status"); got != before+1 {
		t.Fatalf("expected one status fetch, got %d", got-before)
	}
}

func TestTabs_CycleAndQuitSavesTab(t *testing.T) {
	dir := t.TempDir()
	m, _ := newTestModel(t, dir)

	m = press(m, "tab", "tab")
	if m.tab != tabStatus {
		t.Fatalf("expected status tab, got %v", m.tab)
	}
	m = press(m, "shift+tab")
	if m.tab != tabJournal {
		t.Fatalf("expected journal tab, got %v", m.tab)
	}

	_, cmd := m.update(keyMsg("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	ui, err := store.Store{Dir: dir}.LoadUIState()
	if err != nil || ui.Tab != "journal" {
		t.Fatalf("expected saved tab, got %#v (%v)", ui, err)
	}
}

func TestRenderBody_SameCacheRendersIdentically(t *testing.T) {
	m, _ := newTestModel(t, t.TempDir())
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	updated := model.Timestamp{Time: fixed.Add(-2 * time.Hour)}
	topics := state.TopicsFetched{Topics: []model.Topic{
		{ID: "1", Name: "AI Safety", Query: "alignment", Tags: []string{"ml"}, LastUpdated: &updated},
		{ID: "2", Name: "Fusion", Query: "tokamak"},
	}}
	m.apply(topics)
	m.apply(state.JournalFetched{Entries: []model.JournalEntry{
		{Filename: "ai-new.html", TopicName: "AI Safety", Tags: []string{"ml"}},
		{Filename: "fusion.html", TopicName: "Fusion"},
	}})

	first := m.renderBody()
	if !strings.Contains(first, "AI Safety") || !strings.Contains(first, "2 hours ago") {
		t.Fatalf("expected topic rows; got:\n%s", first)
	}
	if again := m.renderBody(); again != first {
		t.Fatalf("second render differs:\n%s\n---\n%s", first, again)
	}
	m.apply(topics)
	if again := m.renderBody(); again != first {
		t.Fatalf("re-applying the same list changed the render:\n%s\n---\n%s", first, again)
	}

	m.tab = tabJournal
	journal := m.renderBody()
	if !strings.Contains(journal, "ai-new.html") && !strings.Contains(journal, "AI Safety") {
		t.Fatalf("expected journal rows; got:\n%s", journal)
	}
	if again := m.renderBody(); again != journal {
		t.Fatalf("second journal render differs:\n%s\n---\n%s", journal, again)
	}
}
