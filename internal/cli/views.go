package cli

import (
	"fmt"
	"time"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/model"
)

// Output shapes. Each marshals as its plain JSON payload and also knows how
// to lay itself out for --format table.

type topicRows []model.Topic

func (t topicRows) TableHeader() []string {
	return []string{"ID", "NAME", "QUERY", "TAGS", "UPDATED"}
}

func (t topicRows) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, x := range t {
		updated := "-"
		if ts := x.LastUpdated.TimeOrNil(); ts != nil {
			updated = display.TimeAgo(*ts, time.Now())
		}
		out = append(out, []string{x.ID.String(), x.Name, x.Query, display.Tags(x.Tags), updated})
	}
	return out
}

type journalRows []model.JournalEntry

func (j journalRows) TableHeader() []string {
	return []string{"FILENAME", "TOPIC", "UPDATED", "STATUS", "TAGS"}
}

func (j journalRows) TableRows() [][]string {
	out := make([][]string, 0, len(j))
	for _, e := range j {
		out = append(out, []string{e.Filename, e.TopicName, e.Updated, display.EntryStatusLabel(e.Status()), display.Tags(e.Tags)})
	}
	return out
}

// statusReport is the raw snapshot plus the derived display values.
type statusReport struct {
	model.StatusSnapshot
	Summary statusSummary `json:"summary"`
}

type statusSummary struct {
	Label        string             `json:"label"`
	NextRun      string             `json:"nextRun"`
	Usage        string             `json:"usage"`
	UsageLevel   display.UsageLevel `json:"usageLevel"`
	UsagePercent float64            `json:"usagePercent"`
}

func newStatusReport(s model.StatusSnapshot, quota int, now time.Time) statusReport {
	calls := s.Status.APICallsThisMonth
	return statusReport{
		StatusSnapshot: s,
		Summary: statusSummary{
			Label:        display.StatusLabel(s.Status.Status),
			NextRun:      display.NextRunLine(s.Status.NextRunTime.TimeOrNil(), now),
			Usage:        display.UsageLabel(calls, quota),
			UsageLevel:   display.Usage(calls, quota),
			UsagePercent: display.UsagePercent(calls, quota),
		},
	}
}

func (r statusReport) TableHeader() []string { return []string{"", ""} }

func (r statusReport) TableRows() [][]string {
	now := time.Now()
	lastRun := "-"
	if t := r.Status.LastRunTime.TimeOrNil(); t != nil {
		lastRun = display.TimeAgo(*t, now)
	}
	rows := [][]string{
		{"Status", r.Summary.Label},
		{"Next run", r.Summary.NextRun},
		{"Last run", lastRun},
		{"API usage", fmt.Sprintf("%s (%s)", r.Summary.Usage, r.Summary.UsageLevel)},
		{"", ""},
	}
	if len(r.RecentActivity) == 0 {
		return append(rows, []string{"", display.NoRecentActivity})
	}
	for _, a := range r.RecentActivity {
		when := "-"
		if t := a.Timestamp.TimeOrNil(); t != nil {
			when = display.TimeAgo(*t, now)
		}
		msg := a.Message
		if a.TopicName != nil && *a.TopicName != "" {
			msg = *a.TopicName + ": " + msg
		}
		rows = append(rows, []string{display.ActivityIcon(a.Status) + " " + when, msg})
	}
	return rows
}

type scheduleView model.Schedule

func (s scheduleView) TableHeader() []string { return []string{"SETTING", "VALUE"} }

func (s scheduleView) TableRows() [][]string {
	email := "off"
	if s.EmailNotifications {
		email = "on"
	}
	return [][]string{
		{"Frequency", display.FormatFrequency(s.Frequency)},
		{"Time of day", s.TimeOfDay},
		{"Email notifications", email},
	}
}
