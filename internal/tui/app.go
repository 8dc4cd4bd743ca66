package tui

import (
	"fmt"
	"strings"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	body := ""
	switch m.modal {
	case modalTopicForm:
		body = placeOverlay(m.width, m.bodyHeight(), m.renderTopicForm())
	case modalConfirmDelete:
		body = placeOverlay(m.width, m.bodyHeight(), m.renderDeleteConfirm())
	case modalDocument:
		body = normalizePane(m.renderDocumentView(), m.width, m.bodyHeight())
	default:
		body = normalizePane(indent(m.renderBody(), 1), m.width, m.bodyHeight())
	}
	return strings.Join([]string{
		m.renderTabBar(),
		"",
		body,
		m.renderFooter(),
	}, "\n")
}

func (m appModel) renderTabBar() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1).Render("Autoplex")
	parts := []string{title}
	for i, t := range tabs {
		st := lipgloss.NewStyle().Padding(0, 1).Foreground(colorChromeMutedFg)
		if t == m.tab {
			st = st.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
		}
		parts = append(parts, st.Render(fmt.Sprintf("%d %s", i+1, t.Title())))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if snap := m.st.Status; snap != nil {
		bar += "  " + styleMuted().Render("● "+display.StatusLabel(snap.Status.Status))
	}
	return normalizePane(bar, m.width, 1)
}

func (m appModel) renderBody() string {
	switch m.tab {
	case tabJournal:
		return m.renderJournal()
	case tabStatus:
		return m.renderStatus(m.bodyHeight())
	case tabSchedule:
		return m.renderSchedule()
	default:
		return m.renderTopics()
	}
}

func (m appModel) renderTopics() string {
	top := styleMuted().Render(fmt.Sprintf("%d topics", len(m.st.Topics)))
	if m.quickAddOpen {
		top = lipgloss.NewStyle().Bold(true).Render("New topic: ") + m.quickAdd.View()
	}
	switch {
	case !m.st.Loaded(state.ResourceTopics) && len(m.st.Topics) == 0:
		return top + "\n" + m.spinner.View() + " Loading research topics…"
	case len(m.st.Topics) == 0:
		return top + "\n" + styleMuted().Render(display.EmptyTopics)
	}
	return top + "\n" + m.topicsList.View()
}

func (m appModel) renderJournal() string {
	var top string
	switch {
	case m.filterActive:
		top = lipgloss.NewStyle().Bold(true).Render("/ ") + m.filterInput.View()
	case m.st.Filter != "":
		top = fmt.Sprintf("Filter: %q  ", m.st.Filter) + styleMuted().Render("(/ to edit, esc to clear)")
	default:
		top = styleMuted().Render(fmt.Sprintf("%d entries  / to search", len(m.st.Journal)))
	}

	visible := m.st.VisibleJournal()
	switch {
	case !m.st.Loaded(state.ResourceJournal) && len(m.st.Journal) == 0:
		return top + "\n" + m.spinner.View() + " Loading journal…"
	case len(m.st.Journal) == 0:
		return top + "\n" + styleMuted().Render(display.EmptyJournal)
	case len(visible) == 0:
		return top + "\n" + styleMuted().Render(fmt.Sprintf("No entries match %q.", m.st.Filter))
	}
	return top + "\n" + m.journalList.View()
}

func (m appModel) renderDocumentView() string {
	d := m.st.Document
	if d == nil {
		return ""
	}
	header := lipgloss.NewStyle().Bold(true).Render(d.Filename)
	if m.documentURL != nil {
		header += "  " + styleMuted().Render(m.documentURL(d.Filename))
	}
	if d.Loading {
		return indent(header+"\n\n"+m.spinner.View()+" Loading entry…", 1)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Render(m.doc.View())
	footer := styleMuted().Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll   esc: close", m.doc.ScrollPercent()*100))
	return indent(header+"\n"+box+"\n"+footer, 1)
}

func (m appModel) renderFooter() string {
	help := m.help
	help.Width = m.width
	keys := tabKeys{keys: m.keys, tab: m.tab}
	hv := help.ShortHelpView(keys.ShortHelp())
	if m.showHelp {
		hv = help.FullHelpView(keys.FullHelp())
	}
	return normalizePane(m.renderMinibuffer(), m.width, 1) + "\n" + hv
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
