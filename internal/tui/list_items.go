package tui

import (
	"strings"
	"time"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, newRowDelegate(), 0, 0)
	l.Title = title
	// The app renders its own tab bar, footer and search line.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	// Emacs-style navigation aliases.
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	return l
}

type topicItem struct {
	topic model.Topic
	now   time.Time
}

func (i topicItem) FilterValue() string { return i.topic.Name }

func (i topicItem) Title() string {
	if name := strings.TrimSpace(i.topic.Name); name != "" {
		return name
	}
	return "(unnamed)"
}

func (i topicItem) Detail() string {
	parts := []string{i.topic.Query}
	if tags := display.Tags(i.topic.Tags); tags != "" {
		parts = append(parts, "["+tags+"]")
	}
	if t := i.topic.LastUpdated.TimeOrNil(); t != nil {
		parts = append(parts, "updated "+strings.ToLower(display.TimeAgo(*t, i.now)))
	}
	return strings.Join(parts, "  ")
}

type journalItem struct {
	entry model.JournalEntry
}

func (i journalItem) FilterValue() string { return i.entry.TopicName }

func (i journalItem) Title() string {
	return display.EntryStatusLabel(i.entry.Status()) + "  " + i.entry.TopicName
}

func (i journalItem) Detail() string {
	parts := []string{i.entry.Updated}
	if tags := display.Tags(i.entry.Tags); tags != "" {
		parts = append(parts, "["+tags+"]")
	}
	parts = append(parts, i.entry.Filename)
	return strings.Join(parts, "  ")
}

func topicItems(topics []model.Topic, now time.Time) []list.Item {
	out := make([]list.Item, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicItem{topic: t, now: now})
	}
	return out
}

func journalItems(entries []model.JournalEntry) []list.Item {
	out := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		out = append(out, journalItem{entry: e})
	}
	return out
}

// clampIndex keeps the cursor on a real row after the items shrink.
func clampIndex(l *list.Model) {
	n := len(l.Items())
	if n > 0 && l.Index() >= n {
		l.Select(n - 1)
	}
}
