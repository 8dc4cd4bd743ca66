package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/onelouder/autoplex/internal/model"
)

var errBoom = errors.New("boom")

func seeded() State {
	s := New()
	s, _ = Update(s, TopicsFetched{Topics: []model.Topic{
		{ID: "1", Name: "AI Safety", Query: "alignment research"},
		{ID: "2", Name: "Quantum", Query: "qubits"},
	}})
	return s
}

func TestUpdate_InitFetchesEverything(t *testing.T) {
	t.Parallel()

	_, effs := Update(New(), Init{})
	want := []Effect{FetchTopics{}, FetchJournal{}, FetchStatus{}, FetchSchedule{}}
	if !reflect.DeepEqual(effs, want) {
		t.Fatalf("Init effects:\n got: %#v\nwant: %#v", effs, want)
	}
}

func TestUpdate_FetchFailureKeepsLastGoodList(t *testing.T) {
	t.Parallel()

	s := seeded()
	good := s.Topics

	s, _ = Update(s, TopicsFetched{Err: errBoom})
	s, _ = Update(s, TopicsFetched{Err: errBoom})

	if !reflect.DeepEqual(s.Topics, good) {
		t.Fatalf("expected stale list to survive failures, got %#v", s.Topics)
	}
	if len(s.Notices) != 2 || s.Notices[0].Text != MsgFetchTopicsFailed || s.Notices[0].Level != NoticeError {
		t.Fatalf("unexpected notices: %#v", s.Notices)
	}
	if !s.Loaded(ResourceTopics) {
		t.Fatalf("topics should still count as loaded")
	}
}

func TestUpdate_FetchReplacesWholesale(t *testing.T) {
	t.Parallel()

	s := seeded()
	s, _ = Update(s, TopicsFetched{Topics: []model.Topic{{ID: "9", Name: "Only", Query: "q"}}})
	if len(s.Topics) != 1 || s.Topics[0].ID != "9" {
		t.Fatalf("expected full replacement, got %#v", s.Topics)
	}
	s, _ = Update(s, TopicsFetched{Topics: nil})
	if s.Topics == nil || len(s.Topics) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", s.Topics)
	}
}

func TestUpdate_SubmitValidation(t *testing.T) {
	t.Parallel()

	s, _ := Update(New(), OpenNewTopic{})
	s, effs := Update(s, SubmitTopic{Name: "  ", Query: "x"})
	if len(effs) != 0 {
		t.Fatalf("invalid submit must not contact the server, got %#v", effs)
	}
	if s.Editing == nil || s.Editing.Err != MsgRequiredFields {
		t.Fatalf("form should stay open with error, got %#v", s.Editing)
	}
	if n, ok := s.LastError(); !ok || n.Text != MsgRequiredFields {
		t.Fatalf("expected required-fields notice, got %#v", s.Notices)
	}
}

func TestUpdate_CreateLifecycle(t *testing.T) {
	t.Parallel()

	s, _ := Update(New(), OpenNewTopic{Name: "AI"})
	if s.Editing == nil || !s.Editing.IsNew() || s.Editing.Name != "AI" {
		t.Fatalf("expected new-topic form prefilled, got %#v", s.Editing)
	}

	s, effs := Update(s, SubmitTopic{Name: " AI Safety ", Query: "alignment research"})
	want := []Effect{CreateTopic{Input: model.TopicInput{Name: "AI Safety", Query: "alignment research"}}}
	if !reflect.DeepEqual(effs, want) {
		t.Fatalf("submit effects:\n got: %#v\nwant: %#v", effs, want)
	}

	s, effs = Update(s, TopicSaved{Input: model.TopicInput{Name: "AI Safety", Query: "alignment research"}, Topic: model.Topic{ID: "5"}})
	if s.Editing != nil {
		t.Fatalf("form should close on success")
	}
	if !reflect.DeepEqual(effs, []Effect{FetchTopics{}}) {
		t.Fatalf("expected full re-fetch, got %#v", effs)
	}
	if got := s.Notices[len(s.Notices)-1]; got.Text != `Topic "AI Safety" created successfully.` || got.Level != NoticeSuccess {
		t.Fatalf("unexpected notice %#v", got)
	}
}

func TestUpdate_SaveFailureKeepsFormOpen(t *testing.T) {
	t.Parallel()

	s := seeded()
	s, _ = Update(s, OpenEditTopic{ID: "2"})
	s, effs := Update(s, SubmitTopic{Name: "Quantum 2", Query: "qubits"})
	if !reflect.DeepEqual(effs, []Effect{UpdateTopic{ID: "2", Input: model.TopicInput{Name: "Quantum 2", Query: "qubits"}}}) {
		t.Fatalf("unexpected effects %#v", effs)
	}

	s, effs = Update(s, TopicSaved{ID: "2", Input: model.TopicInput{Name: "Quantum 2", Query: "qubits"}, Err: errBoom})
	if len(effs) != 0 {
		t.Fatalf("failure must not re-fetch, got %#v", effs)
	}
	if s.Editing == nil || s.Editing.Name != "Quantum 2" || s.Editing.Err != MsgUpdateTopicFailed {
		t.Fatalf("form should keep user values and show error, got %#v", s.Editing)
	}
	if s.Topics[1].Name != "Quantum" {
		t.Fatalf("cache must not be patched locally")
	}
}

func TestUpdate_CreateFailureMessage(t *testing.T) {
	t.Parallel()

	s, _ := Update(New(), OpenNewTopic{})
	s, _ = Update(s, SubmitTopic{Name: "n", Query: "q"})
	s, _ = Update(s, TopicSaved{Input: model.TopicInput{Name: "n", Query: "q"}, Err: errBoom})
	if n, _ := s.LastError(); n.Text != MsgCreateTopicFailed {
		t.Fatalf("expected create failure notice, got %#v", s.Notices)
	}
}

func TestUpdate_LateSaveDoesNotCloseOtherForm(t *testing.T) {
	t.Parallel()

	s := seeded()
	s, _ = Update(s, OpenEditTopic{ID: "1"})
	s, _ = Update(s, SubmitTopic{Name: "AI", Query: "q"})
	s, _ = Update(s, OpenEditTopic{ID: "2"})

	s, _ = Update(s, TopicSaved{ID: "1", Input: model.TopicInput{Name: "AI", Query: "q"}})
	if s.Editing == nil || s.Editing.ID != "2" {
		t.Fatalf("form for another topic should stay open, got %#v", s.Editing)
	}
}

func TestUpdate_EditUnknownTopic(t *testing.T) {
	t.Parallel()

	s, effs := Update(seeded(), OpenEditTopic{ID: "404"})
	if s.Editing != nil || len(effs) != 0 {
		t.Fatalf("unexpected form/effects: %#v %#v", s.Editing, effs)
	}
	if n, _ := s.LastError(); n.Text != MsgTopicNotFound {
		t.Fatalf("expected not-found notice")
	}
}

func TestUpdate_EditUsesLooseIDEquality(t *testing.T) {
	t.Parallel()

	s, _ := Update(seeded(), OpenEditTopic{ID: " 2 "})
	if s.Editing == nil || s.Editing.Name != "Quantum" {
		t.Fatalf("expected form for topic 2, got %#v", s.Editing)
	}
}

func TestUpdate_DeleteFlow(t *testing.T) {
	t.Parallel()

	s := seeded()
	s, effs := Update(s, RequestDeleteTopic{ID: "1"})
	if len(effs) != 0 || s.Confirm == nil {
		t.Fatalf("delete must ask first")
	}
	if got := s.Confirm.Prompt(); got != `Are you sure you want to delete the topic "AI Safety"?` {
		t.Fatalf("prompt %q", got)
	}

	declined, effs := Update(s, CancelConfirm{})
	if declined.Confirm != nil || len(effs) != 0 {
		t.Fatalf("cancel should only close the prompt")
	}

	s, effs = Update(s, ConfirmDelete{})
	if !reflect.DeepEqual(effs, []Effect{DeleteTopic{ID: "1"}}) {
		t.Fatalf("unexpected effects %#v", effs)
	}

	s, effs = Update(s, TopicDeleted{ID: "1", Message: "Topic deleted successfully"})
	if !reflect.DeepEqual(effs, []Effect{FetchTopics{}}) {
		t.Fatalf("expected re-fetch after delete, got %#v", effs)
	}
	if got := s.Notices[len(s.Notices)-1].Text; got != "Topic deleted successfully" {
		t.Fatalf("expected server message, got %q", got)
	}

	s, _ = Update(s, TopicDeleted{ID: "2", Err: errBoom})
	if len(s.Topics) != 2 {
		t.Fatalf("failed delete must leave cache untouched")
	}
}

func TestUpdate_RequestDeleteUnknownIsNoop(t *testing.T) {
	t.Parallel()

	before := seeded()
	after, effs := Update(before, RequestDeleteTopic{ID: "77"})
	if after.Confirm != nil || len(effs) != 0 || len(after.Notices) != 0 {
		t.Fatalf("expected no-op")
	}
}

func TestUpdate_RunNowSchedulesDelayedStatus(t *testing.T) {
	t.Parallel()

	s := seeded()
	topicsBefore := s.Topics
	s, effs := Update(s, RunNow{ID: "1"})
	if !reflect.DeepEqual(effs, []Effect{RunTopic{ID: "1"}}) {
		t.Fatalf("unexpected %#v", effs)
	}
	s, effs = Update(s, RunStarted{ID: "1", Message: "Started search for topic: AI Safety"})
	if !reflect.DeepEqual(effs, []Effect{FetchStatus{After: DefaultRunRefreshDelay}}) {
		t.Fatalf("expected delayed status refresh, got %#v", effs)
	}
	if !reflect.DeepEqual(s.Topics, topicsBefore) {
		t.Fatalf("run-now must not touch topics")
	}

	custom := New(WithRunRefreshDelay(5 * time.Second))
	_, effs = Update(custom, RunStarted{Message: "ok"})
	if Delay(effs[0]) != 5*time.Second {
		t.Fatalf("custom delay not honored: %#v", effs)
	}

	s, effs = Update(s, RunStarted{ID: "1", Err: errBoom})
	if len(effs) != 0 {
		t.Fatalf("failed run must not refresh status")
	}
	if n, _ := s.LastError(); n.Text != MsgRunTopicFailed {
		t.Fatalf("unexpected notices %#v", s.Notices)
	}
}

func TestVisibleJournal(t *testing.T) {
	t.Parallel()

	s := New()
	s, _ = Update(s, JournalFetched{Entries: []model.JournalEntry{
		{Filename: "ai-safety.html", TopicName: "Ai Safety", Tags: []string{"ml"}},
		{Filename: "quantum.html", TopicName: "Quantum", Tags: []string{"Physics"}},
		{Filename: "fusion.html", TopicName: "Fusion", Tags: []string{"physics", "energy"}},
	}})
	full := s.VisibleJournal()

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"ai-safety.html", "quantum.html", "fusion.html"}},
		{"   ", []string{"ai-safety.html", "quantum.html", "fusion.html"}},
		{"PHYSICS", []string{"quantum.html", "fusion.html"}},
		{"safe", []string{"ai-safety.html"}},
		{"nothing", []string{}},
	}
	for _, tt := range tests {
		fs, effs := Update(s, SetJournalFilter{Term: tt.term})
		if len(effs) != 0 {
			t.Fatalf("filtering must not fetch")
		}
		got := []string{}
		for _, e := range fs.VisibleJournal() {
			got = append(got, e.Filename)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("filter %q: got %v want %v", tt.term, got, tt.want)
		}
		if !reflect.DeepEqual(fs.Journal, full) {
			t.Fatalf("filter %q mutated the cache", tt.term)
		}
	}
}

func TestUpdate_StatusAndSchedule(t *testing.T) {
	t.Parallel()

	s := New()
	s, _ = Update(s, StatusFetched{Snapshot: model.StatusSnapshot{Status: model.AppStatus{APICallsThisMonth: 3}}})
	if s.Status == nil || s.Status.RecentActivity == nil {
		t.Fatalf("expected snapshot with non-nil activity, got %#v", s.Status)
	}
	prev := s.Status
	s, _ = Update(s, StatusFetched{Err: errBoom})
	if s.Status != prev {
		t.Fatalf("failed status fetch must keep the old snapshot")
	}

	sched := model.Schedule{Frequency: model.FrequencyMonthly, TimeOfDay: "06:00", EmailNotifications: true}
	s, effs := Update(s, SaveSchedule{Schedule: sched})
	if !reflect.DeepEqual(effs, []Effect{PersistSchedule{Schedule: sched}}) {
		t.Fatalf("unexpected %#v", effs)
	}
	s, effs = Update(s, ScheduleSaved{Schedule: sched})
	if !reflect.DeepEqual(effs, []Effect{FetchStatus{}}) {
		t.Fatalf("schedule save should refresh status, got %#v", effs)
	}
	if got := s.Notices[len(s.Notices)-1].Text; got != MsgScheduleUpdated {
		t.Fatalf("notice %q", got)
	}
	if *s.Schedule != sched {
		t.Fatalf("schedule not stored: %#v", s.Schedule)
	}
}

func TestUpdate_DocumentLifecycle(t *testing.T) {
	t.Parallel()

	s, effs := Update(New(), ViewEntry{Filename: "a.html"})
	if s.Document == nil || !s.Document.Loading || !reflect.DeepEqual(effs, []Effect{FetchDocument{Filename: "a.html"}}) {
		t.Fatalf("unexpected %#v %#v", s.Document, effs)
	}
	stale, _ := Update(s, DocumentFetched{Filename: "b.html", Markdown: "# b"})
	if stale.Document.Markdown != "" {
		t.Fatalf("response for another document must be ignored")
	}
	s, _ = Update(s, DocumentFetched{Filename: "a.html", Markdown: "# a"})
	if s.Document.Loading || s.Document.Markdown != "# a" {
		t.Fatalf("unexpected document %#v", s.Document)
	}
	s, _ = Update(s, CloseDocument{})
	if s.Document != nil {
		t.Fatalf("document should close")
	}
}

func TestTakeNotices(t *testing.T) {
	t.Parallel()

	s, _ := Update(New(), TopicsFetched{Err: errBoom})
	s, got := s.TakeNotices()
	if len(got) != 1 || len(s.Notices) != 0 {
		t.Fatalf("TakeNotices: %#v / %#v", got, s.Notices)
	}
}

func TestUpdate_NoticesDoNotAlias(t *testing.T) {
	t.Parallel()

	base, _ := Update(New(), TopicsFetched{Err: errBoom})
	a, _ := Update(base, JournalFetched{Err: errBoom})
	b, _ := Update(base, StatusFetched{Err: errBoom})
	if a.Notices[1].Text == b.Notices[1].Text {
		t.Fatalf("derived states share notice storage")
	}
}

func TestUpdate_SaveTopicIgnoresOpenForm(t *testing.T) {
	t.Parallel()

	s := seeded()
	s, _ = Update(s, OpenNewTopic{Name: "other"})

	next, effs := Update(s, SaveTopic{ID: "1", Name: " Edited ", Query: "q2"})
	want := []Effect{UpdateTopic{ID: "1", Input: model.TopicInput{Name: "Edited", Query: "q2"}}}
	if !reflect.DeepEqual(effs, want) {
		t.Fatalf("effects:\n got: %#v\nwant: %#v", effs, want)
	}
	if next.Editing == nil || next.Editing.Name != "other" {
		t.Fatalf("open form must be left alone, got %#v", next.Editing)
	}

	_, effs = Update(s, SaveTopic{Name: "New", Query: "q"})
	if !reflect.DeepEqual(effs, []Effect{CreateTopic{Input: model.TopicInput{Name: "New", Query: "q"}}}) {
		t.Fatalf("zero id should create, got %#v", effs)
	}

	bad, effs := Update(s, SaveTopic{ID: "1", Name: "x", Query: " "})
	if len(effs) != 0 || bad.Notices[len(bad.Notices)-1].Text != MsgRequiredFields {
		t.Fatalf("expected validation notice, got %#v / %#v", effs, bad.Notices)
	}

	missing, effs := Update(s, SaveTopic{ID: "9", Name: "x", Query: "y"})
	if len(effs) != 0 || missing.Notices[len(missing.Notices)-1].Text != MsgTopicNotFound {
		t.Fatalf("expected not-found notice, got %#v / %#v", effs, missing.Notices)
	}
}

func TestUpdate_ConfirmDeleteByIDIgnoresOtherPrompt(t *testing.T) {
	t.Parallel()

	s := seeded()
	s, _ = Update(s, RequestDeleteTopic{ID: "2"})

	next, effs := Update(s, ConfirmDelete{ID: "1"})
	if !reflect.DeepEqual(effs, []Effect{DeleteTopic{ID: "1"}}) {
		t.Fatalf("unexpected effects %#v", effs)
	}
	if next.Confirm == nil || !next.Confirm.ID.Equal("2") {
		t.Fatalf("prompt for another topic must stay open, got %#v", next.Confirm)
	}

	next, _ = Update(s, ConfirmDelete{ID: "2"})
	if next.Confirm != nil {
		t.Fatalf("confirming the prompted topic closes the prompt")
	}

	if _, effs := Update(s, ConfirmDelete{ID: "9"}); len(effs) != 0 {
		t.Fatalf("unknown id must be a no-op, got %#v", effs)
	}
}
