package state

import (
	"time"

	"github.com/onelouder/autoplex/internal/model"
)

type Event interface{ isEvent() }

// User intents.
type (
	// Init loads every resource.
	Init    struct{}
	Refresh struct{ Resource Resource }
	// Tick is the status poll.
	Tick struct{}

	OpenNewTopic   struct{ Name string }
	OpenEditTopic  struct{ ID model.TopicID }
	CloseTopicForm struct{}
	SubmitTopic    struct{ Name, Query string }

	// SaveTopic creates (zero ID) or updates a topic without going through
	// the open form.
	SaveTopic struct {
		ID          model.TopicID
		Name, Query string
	}

	RequestDeleteTopic struct{ ID model.TopicID }
	CancelConfirm      struct{}

	// ConfirmDelete deletes ID, or the pending confirmation when ID is zero.
	ConfirmDelete struct{ ID model.TopicID }

	RunNow struct{ ID model.TopicID }

	SetJournalFilter struct{ Term string }
	ViewEntry        struct{ Filename string }
	CloseDocument    struct{}

	SaveSchedule struct{ Schedule model.Schedule }

	DismissNotices struct{}
)

// Server responses.
type (
	TopicsFetched struct {
		Topics []model.Topic
		Err    error
	}
	// TopicSaved answers CreateTopic (zero ID) and UpdateTopic.
	TopicSaved struct {
		ID    model.TopicID
		Input model.TopicInput
		Topic model.Topic
		Err   error
	}
	TopicDeleted struct {
		ID      model.TopicID
		Message string
		Err     error
	}
	RunStarted struct {
		ID      model.TopicID
		Message string
		Err     error
	}
	JournalFetched struct {
		Entries []model.JournalEntry
		Err     error
	}
	StatusFetched struct {
		Snapshot model.StatusSnapshot
		Err      error
	}
	ScheduleFetched struct {
		Schedule model.Schedule
		Err      error
	}
	ScheduleSaved struct {
		Schedule model.Schedule
		Err      error
	}
	DocumentFetched struct {
		Filename string
		Markdown string
		Err      error
	}
)

func (Init) isEvent()               {}
func (Refresh) isEvent()            {}
func (Tick) isEvent()               {}
func (OpenNewTopic) isEvent()       {}
func (OpenEditTopic) isEvent()      {}
func (CloseTopicForm) isEvent()     {}
func (SubmitTopic) isEvent()        {}
func (SaveTopic) isEvent()          {}
func (RequestDeleteTopic) isEvent() {}
func (ConfirmDelete) isEvent()      {}
func (CancelConfirm) isEvent()      {}
func (RunNow) isEvent()             {}
func (SetJournalFilter) isEvent()   {}
func (ViewEntry) isEvent()          {}
func (CloseDocument) isEvent()      {}
func (SaveSchedule) isEvent()       {}
func (DismissNotices) isEvent()     {}
func (TopicsFetched) isEvent()      {}
func (TopicSaved) isEvent()         {}
func (TopicDeleted) isEvent()       {}
func (RunStarted) isEvent()         {}
func (JournalFetched) isEvent()     {}
func (StatusFetched) isEvent()      {}
func (ScheduleFetched) isEvent()    {}
func (ScheduleSaved) isEvent()      {}
func (DocumentFetched) isEvent()    {}

type Effect interface{ isEffect() }

type (
	FetchTopics   struct{}
	FetchJournal  struct{}
	FetchSchedule struct{}
	// FetchStatus runs after After has elapsed when non-zero.
	FetchStatus struct{ After time.Duration }

	CreateTopic struct{ Input model.TopicInput }
	UpdateTopic struct {
		ID    model.TopicID
		Input model.TopicInput
	}
	DeleteTopic     struct{ ID model.TopicID }
	RunTopic        struct{ ID model.TopicID }
	PersistSchedule struct{ Schedule model.Schedule }
	FetchDocument   struct{ Filename string }
)

func (FetchTopics) isEffect()     {}
func (FetchJournal) isEffect()    {}
func (FetchSchedule) isEffect()   {}
func (FetchStatus) isEffect()     {}
func (CreateTopic) isEffect()     {}
func (UpdateTopic) isEffect()     {}
func (DeleteTopic) isEffect()     {}
func (RunTopic) isEffect()        {}
func (PersistSchedule) isEffect() {}
func (FetchDocument) isEffect()   {}

// Delay returns how long eff should wait before running.
func Delay(eff Effect) time.Duration {
	if fs, ok := eff.(FetchStatus); ok {
		return fs.After
	}
	return 0
}

// Immediate strips any delay from eff.
func Immediate(eff Effect) Effect {
	if _, ok := eff.(FetchStatus); ok {
		return FetchStatus{}
	}
	return eff
}

func fetchFor(r Resource) Effect {
	switch r {
	case ResourceTopics:
		return FetchTopics{}
	case ResourceJournal:
		return FetchJournal{}
	case ResourceStatus:
		return FetchStatus{}
	case ResourceSchedule:
		return FetchSchedule{}
	default:
		return nil
	}
}
