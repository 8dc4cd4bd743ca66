package tui

import (
	"fmt"
	"strings"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/charmbracelet/lipgloss"
)

var usageBarColors = map[display.UsageLevel]string{
	display.UsageNormal:  "#22c55e",
	display.UsageWarning: "#f59e0b",
	display.UsageHigh:    "#ef4444",
}

func (m appModel) renderStatus(height int) string {
	snap := m.st.Status
	if snap == nil {
		if m.st.Loaded(state.ResourceStatus) {
			return styleMuted().Render("No status available.")
		}
		return m.spinner.View() + " Loading status…"
	}

	now := m.now()
	s := snap.Status
	label := lipgloss.NewStyle().Width(12).Foreground(colorChromeMutedFg)

	lastRun := "Never"
	if t := s.LastRunTime.TimeOrNil(); t != nil {
		lastRun = display.TimeAgo(*t, now)
	}

	level := display.Usage(s.APICallsThisMonth, m.quota)
	bar := m.usageBar
	bar.FullColor = usageBarColors[level]
	usage := bar.ViewAs(display.UsagePercent(s.APICallsThisMonth, m.quota)/100) + "  " +
		lipgloss.NewStyle().Foreground(levelColor(string(level))).Render(display.UsageLabel(s.APICallsThisMonth, m.quota))

	lines := []string{
		label.Render("Status") + lipgloss.NewStyle().Bold(true).Render(display.StatusLabel(s.Status)),
		label.Render("Next run") + display.NextRunLine(s.NextRunTime.TimeOrNil(), now),
		label.Render("Last run") + lastRun,
		label.Render("API usage") + usage,
		"",
		lipgloss.NewStyle().Bold(true).Render("Recent activity"),
	}
	if len(snap.RecentActivity) == 0 {
		return strings.Join(append(lines, styleMuted().Render(display.NoRecentActivity)), "\n")
	}

	room := height - len(lines)
	for i, a := range snap.RecentActivity {
		if room > 0 && i >= room {
			lines = append(lines, styleMuted().Render(fmt.Sprintf("… %d more", len(snap.RecentActivity)-i)))
			break
		}
		lines = append(lines, m.renderActivity(a))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderActivity(a model.Activity) string {
	icon := lipgloss.NewStyle().Foreground(levelColor(string(a.Status.Normalize()))).Render(display.ActivityIcon(a.Status))
	when := "-"
	if t := a.Timestamp.TimeOrNil(); t != nil {
		when = display.TimeAgo(*t, m.now())
	}
	msg := a.Message
	if a.TopicName != nil && *a.TopicName != "" {
		msg = lipgloss.NewStyle().Bold(true).Render(*a.TopicName) + ": " + msg
	}
	return icon + " " + styleMeta().Width(16).Render(when) + msg
}
