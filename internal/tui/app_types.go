package tui

import (
	"strings"

	"github.com/onelouder/autoplex/internal/state"
)

type tab int

const (
	tabTopics tab = iota
	tabJournal
	tabStatus
	tabSchedule
)

var tabs = []tab{tabTopics, tabJournal, tabStatus, tabSchedule}

func (t tab) String() string {
	switch t {
	case tabJournal:
		return "journal"
	case tabStatus:
		return "status"
	case tabSchedule:
		return "schedule"
	default:
		return "topics"
	}
}

func (t tab) Title() string {
	switch t {
	case tabJournal:
		return "Journal"
	case tabStatus:
		return "Status"
	case tabSchedule:
		return "Schedule"
	default:
		return "Research Topics"
	}
}

func parseTab(s string) tab {
	for _, t := range tabs {
		if t.String() == strings.ToLower(strings.TrimSpace(s)) {
			return t
		}
	}
	return tabTopics
}

// resultMsg carries a finished effect back into the update loop.
type resultMsg struct{ ev state.Event }

// delayedMsg fires when a delayed effect is due.
type delayedMsg struct{ eff state.Effect }

// pollTickMsg is the periodic status refresh.
type pollTickMsg struct{}

// clockTickMsg keeps relative times fresh and expires the minibuffer.
type clockTickMsg struct{}

type modalKind int

const (
	modalNone modalKind = iota
	modalTopicForm
	modalConfirmDelete
	modalDocument
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type formFocus int

const (
	formFocusName formFocus = iota
	formFocusQuery
	formFocusSave
	formFocusCancel
)

type scheduleFocus int

const (
	scheduleFocusFrequency scheduleFocus = iota
	scheduleFocusTime
	scheduleFocusEmail
	scheduleFocusSave
)
