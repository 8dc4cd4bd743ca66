package tui

import (
	"strings"

	"github.com/onelouder/autoplex/internal/state"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *appModel) openForm(f state.Form) {
	m.nameInput.SetValue(f.Name)
	m.queryInput.SetValue(f.Query)
	m.nameInput.CursorEnd()
	m.queryInput.CursorEnd()
	m.formFocus = formFocusName
	// Quick add already supplied the name.
	if f.IsNew() && strings.TrimSpace(f.Name) != "" {
		m.formFocus = formFocusQuery
	}
	m.focusForm()
}

func (m *appModel) focusForm() {
	m.nameInput.Blur()
	m.queryInput.Blur()
	switch m.formFocus {
	case formFocusName:
		m.nameInput.Focus()
	case formFocusQuery:
		m.queryInput.Focus()
	}
}

func (m *appModel) submitForm() {
	m.apply(state.SubmitTopic{Name: m.nameInput.Value(), Query: m.queryInput.Value()})
}

func (m appModel) updateTopicForm(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.apply(state.CloseTopicForm{})
		return m, nil
	case "tab", "down":
		m.formFocus = (m.formFocus + 1) % 4
		m.focusForm()
		return m, nil
	case "shift+tab", "up":
		m.formFocus = (m.formFocus + 3) % 4
		m.focusForm()
		return m, nil
	case "ctrl+s":
		m.submitForm()
		return m, nil
	case "enter":
		switch m.formFocus {
		case formFocusName:
			m.formFocus = formFocusQuery
			m.focusForm()
		case formFocusCancel:
			m.apply(state.CloseTopicForm{})
		default:
			m.submitForm()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.formFocus {
	case formFocusName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case formFocusQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) renderTopicForm() string {
	f := m.st.Editing
	if f == nil {
		return ""
	}
	bodyW := modalBodyWidth(m.width)

	label := func(s string, focused bool) string {
		st := lipgloss.NewStyle().Foreground(colorModalSurfaceFg)
		if focused {
			st = st.Bold(true).Foreground(colorAccent)
		}
		return st.Render(s)
	}

	lines := []string{
		label("Topic name *", m.formFocus == formFocusName),
		renderInputLine(bodyW, m.nameInput.View()),
		"",
		label("Search query *", m.formFocus == formFocusQuery),
		renderInputLine(bodyW, m.queryInput.View()),
	}
	if f.Err != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorError).Width(bodyW).Render(f.Err))
	}

	saveLabel := "Add Topic"
	if !f.IsNew() {
		saveLabel = "Update Topic"
	}
	lines = append(lines,
		"",
		renderButtons(
			button{label: saveLabel, focused: m.formFocus == formFocusSave},
			button{label: "Cancel", focused: m.formFocus == formFocusCancel},
		),
		"",
		styleMuted().Width(bodyW).Render("tab: next field   enter/ctrl+s: save   esc: cancel"),
	)
	return renderModalBox(m.width, f.Title(), strings.Join(lines, "\n"))
}
