// Package state owns the client-side view of the tracker: cached lists, the
// topic form, the delete confirmation, the journal filter and pending
// notices. User actions and server responses are both Events; Update is the
// only place state changes, and it reports follow-up work as Effects.
package state

import (
	"slices"
	"strings"
	"time"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/model"
)

type Resource string

const (
	ResourceTopics   Resource = "topics"
	ResourceJournal  Resource = "journal"
	ResourceStatus   Resource = "status"
	ResourceSchedule Resource = "schedule"
)

var Resources = []Resource{ResourceTopics, ResourceJournal, ResourceStatus, ResourceSchedule}

func ParseResource(s string) (Resource, bool) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	return r, slices.Contains(Resources, r)
}

// DefaultRunRefreshDelay is how long after a run-now the status is re-read.
const DefaultRunRefreshDelay = 2 * time.Second

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// Form is the topic form while it is open. A zero ID means a new topic.
type Form struct {
	ID    model.TopicID
	Name  string
	Query string
	Err   string
}

func (f Form) IsNew() bool { return f.ID.IsZero() }

func (f Form) Title() string {
	if f.IsNew() {
		return "Add Research Topic"
	}
	return "Edit Research Topic"
}

// Confirm is a pending delete awaiting a yes/no answer.
type Confirm struct {
	ID   model.TopicID
	Name string
}

func (c Confirm) Prompt() string { return display.DeletePrompt(c.Name) }

// Document is an opened journal entry, converted to Markdown.
type Document struct {
	Filename string
	Markdown string
	Loading  bool
}

type State struct {
	Topics   []model.Topic
	Journal  []model.JournalEntry
	Status   *model.StatusSnapshot
	Schedule *model.Schedule

	Editing  *Form
	Confirm  *Confirm
	Document *Document

	// Filter is the trimmed, lower-cased journal search term.
	Filter  string
	Notices []Notice

	loaded   map[Resource]bool
	runDelay time.Duration
}

type Option func(*State)

// WithRunRefreshDelay overrides DefaultRunRefreshDelay.
func WithRunRefreshDelay(d time.Duration) Option {
	return func(s *State) { s.runDelay = d }
}

func New(opts ...Option) State {
	s := State{
		Topics:   []model.Topic{},
		Journal:  []model.JournalEntry{},
		runDelay: DefaultRunRefreshDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.runDelay <= 0 {
		s.runDelay = DefaultRunRefreshDelay
	}
	return s
}

func (s State) RunRefreshDelay() time.Duration {
	if s.runDelay <= 0 {
		return DefaultRunRefreshDelay
	}
	return s.runDelay
}

// Loaded reports whether r has been fetched successfully at least once.
func (s State) Loaded(r Resource) bool { return s.loaded[r] }

func (s State) withLoaded(r Resource) State {
	next := make(map[Resource]bool, len(s.loaded)+1)
	for k, v := range s.loaded {
		next[k] = v
	}
	next[r] = true
	s.loaded = next
	return s
}

func (s State) notify(level NoticeLevel, text string) State {
	s.Notices = append(slices.Clip(s.Notices), Notice{Level: level, Text: text})
	return s
}

// TakeNotices returns the queued notices and a state without them.
func (s State) TakeNotices() (State, []Notice) {
	out := s.Notices
	s.Notices = nil
	return s, out
}

// LastError is the most recent error notice, if any.
func (s State) LastError() (Notice, bool) {
	for i := len(s.Notices) - 1; i >= 0; i-- {
		if s.Notices[i].Level == NoticeError {
			return s.Notices[i], true
		}
	}
	return Notice{}, false
}

// VisibleJournal derives the filtered journal view from the full cache.
func (s State) VisibleJournal() []model.JournalEntry {
	if s.Filter == "" {
		return s.Journal
	}
	out := make([]model.JournalEntry, 0, len(s.Journal))
	for _, e := range s.Journal {
		if e.Matches(s.Filter) {
			out = append(out, e)
		}
	}
	return out
}

func (s State) FindTopic(id model.TopicID) (model.Topic, bool) {
	return model.FindTopic(s.Topics, id)
}
