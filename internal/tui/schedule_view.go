package tui

import (
	"fmt"
	"strings"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const msgInvalidTime = "Time of day must be HH:MM (24-hour)."

func isScheduleNavKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "down", "enter", "esc", "tab", "shift+tab", "ctrl+s":
		return true
	}
	return false
}

func stepFrequency(f model.Frequency, delta int) model.Frequency {
	n := len(model.Frequencies)
	for i, known := range model.Frequencies {
		if f == known {
			return model.Frequencies[((i+delta)%n+n)%n]
		}
	}
	return model.FrequencyDaily
}

func (m *appModel) focusSchedule() {
	if m.tab == tabSchedule && m.schedFocus == scheduleFocusTime {
		m.timeInput.Focus()
		m.timeInput.CursorEnd()
		return
	}
	m.timeInput.Blur()
}

func (m *appModel) moveScheduleFocus(delta int) {
	n := int(scheduleFocusSave) + 1
	m.schedFocus = scheduleFocus(((int(m.schedFocus)+delta)%n + n) % n)
	m.focusSchedule()
}

func (m *appModel) saveSchedule() {
	tod, err := model.ParseTimeOfDay(m.timeInput.Value())
	if err != nil {
		m.showMinibuffer(state.NoticeError, msgInvalidTime)
		m.schedFocus = scheduleFocusTime
		m.focusSchedule()
		return
	}
	m.sched.TimeOfDay = tod
	m.timeInput.SetValue(tod)
	m.schedDirty = false
	m.apply(state.SaveSchedule{Schedule: m.sched})
}

func (m appModel) updateScheduleKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch {
	case msg.String() == "up" || msg.String() == "k":
		m.moveScheduleFocus(-1)
		return m, nil
	case msg.String() == "down" || msg.String() == "j":
		m.moveScheduleFocus(1)
		return m, nil
	case msg.String() == "ctrl+s":
		m.saveSchedule()
		return m, nil
	case msg.String() == "esc":
		m.clearMinibuffer()
		return m, nil
	}

	switch m.schedFocus {
	case scheduleFocusFrequency:
		switch msg.String() {
		case "left", "h":
			m.sched.Frequency = stepFrequency(m.sched.Frequency, -1)
			m.schedDirty = true
		case "right", "l", "enter", " ":
			m.sched.Frequency = stepFrequency(m.sched.Frequency, 1)
			m.schedDirty = true
		}
	case scheduleFocusEmail:
		switch msg.String() {
		case " ", "x", "enter":
			m.sched.EmailNotifications = !m.sched.EmailNotifications
			m.schedDirty = true
		}
	case scheduleFocusSave:
		if msg.String() == "enter" {
			m.saveSchedule()
		}
	}
	return m, nil
}

// updateTimeInput routes typing to the time field; navigation keys are
// handled by updateScheduleKey.
func (m appModel) updateTimeInput(msg tea.KeyMsg) (appModel, tea.Cmd) {
	before := m.timeInput.Value()
	var cmd tea.Cmd
	m.timeInput, cmd = m.timeInput.Update(msg)
	if v := m.timeInput.Value(); v != before {
		m.sched.TimeOfDay = v
		m.schedDirty = true
	}
	return m, cmd
}

func (m appModel) renderSchedule() string {
	if !m.st.Loaded(state.ResourceSchedule) && m.st.Schedule == nil {
		return m.spinner.View() + " Loading schedule…"
	}

	labelW := 16
	row := func(f scheduleFocus, label, value string) string {
		marker := "  "
		st := lipgloss.NewStyle()
		if m.schedFocus == f {
			marker = "› "
			st = st.Bold(true).Foreground(colorAccent)
		}
		return marker + st.Render(fmt.Sprintf("%-*s", labelW, label)) + value
	}

	email := "[ ] Send email notifications"
	if m.sched.EmailNotifications {
		email = "[x] Send email notifications"
	}
	timeField := lipgloss.NewStyle().Background(colorInputBg).Render(" " + m.timeInput.View() + " ")

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Update schedule"),
		"",
		row(scheduleFocusFrequency, "Frequency", "‹ "+display.FormatFrequency(m.sched.Frequency)+" ›"),
		row(scheduleFocusTime, "Time of day", timeField),
		row(scheduleFocusEmail, "Email", email),
		"",
		"  " + strings.Repeat(" ", labelW) + renderButtons(button{label: "Save Schedule", focused: m.schedFocus == scheduleFocusSave}),
	}
	if m.schedDirty {
		lines = append(lines, "", styleMuted().Render("  Unsaved changes (ctrl+s to save, R to discard)"))
	}
	return strings.Join(lines, "\n")
}
