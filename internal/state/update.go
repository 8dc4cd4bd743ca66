package state

import (
	"strings"

	"github.com/onelouder/autoplex/internal/model"
)

// Update applies ev to s. It performs no I/O; network work is returned as
// effects whose results come back as events.
//
// Successful mutations always re-fetch the affected list instead of patching
// the cache, and failed fetches leave the previous cache in place.
func Update(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Init:
		return s, []Effect{FetchTopics{}, FetchJournal{}, FetchStatus{}, FetchSchedule{}}

	case Refresh:
		if eff := fetchFor(ev.Resource); eff != nil {
			return s, []Effect{eff}
		}
		return s, nil

	case Tick:
		return s, []Effect{FetchStatus{}}

	case DismissNotices:
		s.Notices = nil
		return s, nil

	// Topics.
	case TopicsFetched:
		if ev.Err != nil {
			return s.notify(NoticeError, MsgFetchTopicsFailed), nil
		}
		s.Topics = nonNil(ev.Topics)
		return s.withLoaded(ResourceTopics), nil

	case OpenNewTopic:
		s.Confirm = nil
		s.Editing = &Form{Name: strings.TrimSpace(ev.Name)}
		return s, nil

	case OpenEditTopic:
		t, ok := s.FindTopic(ev.ID)
		if !ok {
			return s.notify(NoticeError, MsgTopicNotFound), nil
		}
		s.Confirm = nil
		s.Editing = &Form{ID: t.ID, Name: t.Name, Query: t.Query}
		return s, nil

	case CloseTopicForm:
		s.Editing = nil
		return s, nil

	case SubmitTopic:
		form := Form{}
		if s.Editing != nil {
			form = *s.Editing
		}
		form.Name, form.Query, form.Err = ev.Name, ev.Query, ""
		in := model.TopicInput{Name: ev.Name, Query: ev.Query}.Normalize()
		if !in.Valid() {
			form.Err = MsgRequiredFields
			s.Editing = &form
			return s.notify(NoticeError, MsgRequiredFields), nil
		}
		s.Editing = &form
		if form.IsNew() {
			return s, []Effect{CreateTopic{Input: in}}
		}
		return s, []Effect{UpdateTopic{ID: form.ID, Input: in}}

	case SaveTopic:
		if !ev.ID.IsZero() {
			if _, ok := s.FindTopic(ev.ID); !ok {
				return s.notify(NoticeError, MsgTopicNotFound), nil
			}
		}
		in := model.TopicInput{Name: ev.Name, Query: ev.Query}.Normalize()
		if !in.Valid() {
			return s.notify(NoticeError, MsgRequiredFields), nil
		}
		if ev.ID.IsZero() {
			return s, []Effect{CreateTopic{Input: in}}
		}
		return s, []Effect{UpdateTopic{ID: ev.ID, Input: in}}

	case TopicSaved:
		sameForm := s.Editing != nil && s.Editing.ID.Equal(ev.ID)
		if ev.Err != nil {
			msg := MsgUpdateTopicFailed
			if ev.ID.IsZero() {
				msg = MsgCreateTopicFailed
			}
			if sameForm {
				form := *s.Editing
				form.Err = msg
				s.Editing = &form
			}
			return s.notify(NoticeError, msg), nil
		}
		if sameForm {
			s.Editing = nil
		}
		msg := msgTopicUpdated(ev.Input.Name)
		if ev.ID.IsZero() {
			msg = msgTopicCreated(ev.Input.Name)
		}
		return s.notify(NoticeSuccess, msg), []Effect{FetchTopics{}}

	case RequestDeleteTopic:
		t, ok := s.FindTopic(ev.ID)
		if !ok {
			return s, nil
		}
		s.Confirm = &Confirm{ID: t.ID, Name: t.Name}
		return s, nil

	case CancelConfirm:
		s.Confirm = nil
		return s, nil

	case ConfirmDelete:
		id := ev.ID
		if id.IsZero() {
			if s.Confirm == nil {
				return s, nil
			}
			id = s.Confirm.ID
		} else if _, ok := s.FindTopic(id); !ok {
			return s, nil
		}
		if s.Confirm != nil && s.Confirm.ID.Equal(id) {
			s.Confirm = nil
		}
		return s, []Effect{DeleteTopic{ID: id}}

	case TopicDeleted:
		if ev.Err != nil {
			return s.notify(NoticeError, MsgDeleteTopicFailed), nil
		}
		msg := strings.TrimSpace(ev.Message)
		if msg == "" {
			msg = MsgTopicDeleted
		}
		return s.notify(NoticeSuccess, msg), []Effect{FetchTopics{}}

	case RunNow:
		return s, []Effect{RunTopic{ID: ev.ID}}

	case RunStarted:
		if ev.Err != nil {
			return s.notify(NoticeError, MsgRunTopicFailed), nil
		}
		return s.notify(NoticeSuccess, ev.Message), []Effect{FetchStatus{After: s.RunRefreshDelay()}}

	// Journal.
	case JournalFetched:
		if ev.Err != nil {
			return s.notify(NoticeError, MsgFetchJournalFailed), nil
		}
		s.Journal = nonNil(ev.Entries)
		return s.withLoaded(ResourceJournal), nil

	case SetJournalFilter:
		s.Filter = strings.ToLower(strings.TrimSpace(ev.Term))
		return s, nil

	case ViewEntry:
		name := strings.TrimSpace(ev.Filename)
		if name == "" {
			return s, nil
		}
		s.Document = &Document{Filename: name, Loading: true}
		return s, []Effect{FetchDocument{Filename: name}}

	case DocumentFetched:
		if s.Document == nil || s.Document.Filename != ev.Filename {
			return s, nil
		}
		if ev.Err != nil {
			s.Document = nil
			return s.notify(NoticeError, MsgOpenDocumentFailed), nil
		}
		s.Document = &Document{Filename: ev.Filename, Markdown: ev.Markdown}
		return s, nil

	case CloseDocument:
		s.Document = nil
		return s, nil

	// Status.
	case StatusFetched:
		if ev.Err != nil {
			return s.notify(NoticeError, MsgFetchStatusFailed), nil
		}
		snap := ev.Snapshot
		snap.RecentActivity = nonNil(snap.RecentActivity)
		s.Status = &snap
		return s.withLoaded(ResourceStatus), nil

	// Schedule.
	case ScheduleFetched:
		if ev.Err != nil {
			return s.notify(NoticeError, MsgFetchScheduleFailed), nil
		}
		sched := ev.Schedule
		s.Schedule = &sched
		return s.withLoaded(ResourceSchedule), nil

	case SaveSchedule:
		return s, []Effect{PersistSchedule{Schedule: ev.Schedule}}

	case ScheduleSaved:
		if ev.Err != nil {
			return s.notify(NoticeError, MsgSaveScheduleFailed), nil
		}
		sched := ev.Schedule
		s.Schedule = &sched
		return s.notify(NoticeSuccess, MsgScheduleUpdated), []Effect{FetchStatus{}}
	}
	return s, nil
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
