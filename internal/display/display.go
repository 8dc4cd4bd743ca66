// Package display holds the formatting rules shared by the terminal UI, the
// web UI and CLI table output.
package display

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/onelouder/autoplex/internal/model"
)

const (
	EmptyTopics        = "No research topics yet. Add your first topic to get started."
	EmptyJournal       = "No journal entries yet. Add research topics and run searches to generate entries."
	NoRecentActivity   = "No recent activity"
	NoUpdatesScheduled = "No updates scheduled"
)

// DefaultQuota is the monthly API call allowance shown on the usage gauge.
const DefaultQuota = 100

func DeletePrompt(name string) string {
	return `Are you sure you want to delete the topic "` + name + `"?`
}

// Capitalize upper-cases the first letter and leaves the rest alone.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// FormatNextRun describes t relative to now's calendar day, in now's zone:
// "Today at 3:04 PM", "Tomorrow at 9:00 AM" or "Jan 5 at 9:00 AM".
func FormatNextRun(t, now time.Time) string {
	t = t.In(now.Location())
	clock := t.Format("3:04 PM")
	switch {
	case sameDay(t, now):
		return "Today at " + clock
	case sameDay(t, now.AddDate(0, 0, 1)):
		return "Tomorrow at " + clock
	default:
		return t.Format("Jan 2") + " at " + clock
	}
}

// NextRunLine is the full status line for the next scheduled run.
func NextRunLine(next *time.Time, now time.Time) string {
	if next == nil {
		return NoUpdatesScheduled
	}
	return "Next update scheduled for: " + FormatNextRun(*next, now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TimeAgo renders an activity timestamp relative to now.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return t.In(now.Location()).Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

type UsageLevel string

const (
	UsageNormal  UsageLevel = "normal"
	UsageWarning UsageLevel = "warning"
	UsageHigh    UsageLevel = "high"
)

// UsagePercent is calls/quota as a percentage, capped at 100.
func UsagePercent(calls, quota int) float64 {
	if quota <= 0 {
		quota = DefaultQuota
	}
	if calls < 0 {
		calls = 0
	}
	return math.Min(float64(calls)*100/float64(quota), 100)
}

func Usage(calls, quota int) UsageLevel {
	p := UsagePercent(calls, quota)
	switch {
	case p > 80:
		return UsageHigh
	case p > 60:
		return UsageWarning
	default:
		return UsageNormal
	}
}

func UsageLabel(calls, quota int) string {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return fmt.Sprintf("%d/%d", calls, quota)
}

func ActivityIcon(level model.ActivityLevel) string {
	switch level.Normalize() {
	case model.ActivitySuccess:
		return "✓"
	case model.ActivityError:
		return "✗"
	case model.ActivityWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

func EntryStatusLabel(s model.EntryStatus) string {
	switch s {
	case model.EntryNew:
		return "New"
	case model.EntryScheduled:
		return "Scheduled"
	default:
		return "Updated"
	}
}

func FormatFrequency(f model.Frequency) string {
	switch f {
	case model.FrequencyDaily:
		return "Daily"
	case model.FrequencyWeekly:
		return "Weekly (Monday)"
	case model.FrequencyMonthly:
		return "Monthly (1st day)"
	default:
		return Capitalize(string(f))
	}
}

// StatusLabel capitalizes the scheduler status, "Unknown" when empty.
func StatusLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	return Capitalize(s)
}

func Tags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ", ")
}
