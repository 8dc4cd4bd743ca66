package display

import (
	"testing"
	"time"

	"github.com/onelouder/autoplex/internal/model"
)

func TestFormatNextRun(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, loc)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"today", time.Date(2026, 10, 19, 15, 4, 0, 0, loc), "Today at 3:04 PM"},
		{"tomorrow morning", time.Date(2026, 10, 20, 9, 0, 0, 0, loc), "Tomorrow at 9:00 AM"},
		{"later", time.Date(2026, 11, 5, 9, 0, 0, 0, loc), "Nov 5 at 9:00 AM"},
		{"earlier today", time.Date(2026, 10, 19, 0, 30, 0, 0, loc), "Today at 12:30 AM"},
		{"other zone same instant", time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC), "Tomorrow at 9:00 AM"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatNextRun(tt.at, now); got != tt.want {
				t.Fatalf("FormatNextRun=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextRunLine(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	if got := NextRunLine(nil, now); got != "No updates scheduled" {
		t.Fatalf("nil next run: %q", got)
	}
	next := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	if got := NextRunLine(&next, now); got != "Next update scheduled for: Tomorrow at 9:00 AM" {
		t.Fatalf("got %q", got)
	}
}

func TestTimeAgo(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Second, "Just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{8 * 24 * time.Hour, "Oct 11, 2026"},
	}
	for _, tt := range tests {
		if got := TimeAgo(now.Add(-tt.ago), now); got != tt.want {
			t.Fatalf("TimeAgo(-%v)=%q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		calls int
		level UsageLevel
		pct   float64
	}{
		{0, UsageNormal, 0},
		{50, UsageNormal, 50},
		{60, UsageNormal, 60},
		{61, UsageWarning, 61},
		{80, UsageWarning, 80},
		{85, UsageHigh, 85},
		{250, UsageHigh, 100},
	}
	for _, tt := range tests {
		if got := Usage(tt.calls, 100); got != tt.level {
			t.Fatalf("Usage(%d)=%q, want %q", tt.calls, got, tt.level)
		}
		if got := UsagePercent(tt.calls, 100); got != tt.pct {
			t.Fatalf("UsagePercent(%d)=%v, want %v", tt.calls, got, tt.pct)
		}
	}
	if got := UsageLabel(85, 0); got != "85/100" {
		t.Fatalf("UsageLabel default quota: %q", got)
	}
}

func TestActivityIcon(t *testing.T) {
	t.Parallel()

	tests := map[model.ActivityLevel]string{
		model.ActivitySuccess: "✓",
		model.ActivityError:   "✗",
		model.ActivityWarning: "⚠",
		model.ActivityInfo:    "ℹ",
		"something-else":      "ℹ",
	}
	for level, want := range tests {
		if got := ActivityIcon(level); got != want {
			t.Fatalf("ActivityIcon(%q)=%q, want %q", level, got, want)
		}
	}
}

func TestFormatFrequency(t *testing.T) {
	t.Parallel()

	tests := map[model.Frequency]string{
		model.FrequencyDaily:   "Daily",
		model.FrequencyWeekly:  "Weekly (Monday)",
		model.FrequencyMonthly: "Monthly (1st day)",
		"hourly":               "Hourly",
	}
	for f, want := range tests {
		if got := FormatFrequency(f); got != want {
			t.Fatalf("FormatFrequency(%q)=%q, want %q", f, got, want)
		}
	}
}

func TestSmallHelpers(t *testing.T) {
	t.Parallel()

	if got := DeletePrompt("AI Safety"); got != `Are you sure you want to delete the topic "AI Safety"?` {
		t.Fatalf("DeletePrompt: %q", got)
	}
	if got := StatusLabel("running"); got != "Running" {
		t.Fatalf("StatusLabel: %q", got)
	}
	if got := StatusLabel(" "); got != "Unknown" {
		t.Fatalf("StatusLabel empty: %q", got)
	}
	if got := EntryStatusLabel(model.EntryScheduled); got != "Scheduled" {
		t.Fatalf("EntryStatusLabel: %q", got)
	}
	if got := Tags([]string{"a", " ", "b "}); got != "a, b" {
		t.Fatalf("Tags: %q", got)
	}
}
