package tui

import (
	"strings"
	"time"

	"github.com/onelouder/autoplex/internal/journaldoc"
	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd {
	_, effs := state.Update(m.st, state.Init{})
	cmds := []tea.Cmd{m.spinner.Tick, m.clockTick(), m.pollTick()}
	for _, eff := range effs {
		cmds = append(cmds, m.effectCmd(eff))
	}
	return tea.Batch(cmds...)
}

func (m appModel) clockTick() tea.Cmd {
	return tea.Tick(clockInterval, func(time.Time) tea.Msg { return clockTickMsg{} })
}

func (m appModel) pollTick() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg { return pollTickMsg{} })
}

// effectCmd runs eff off the update loop. Delayed effects come back as a
// delayedMsg first so the wait never blocks a goroutine on the network.
func (m appModel) effectCmd(eff state.Effect) tea.Cmd {
	if d := state.Delay(eff); d > 0 {
		eff = state.Immediate(eff)
		return tea.Tick(d, func(time.Time) tea.Msg { return delayedMsg{eff: eff} })
	}
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg { return resultMsg{ev: runner.Run(ctx, eff)} }
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	return m.flush(cmd)
}

func (m appModel) flush(cmd tea.Cmd) (appModel, tea.Cmd) {
	if len(m.pending) == 0 {
		return m, cmd
	}
	cmds := []tea.Cmd{cmd}
	for _, eff := range m.pending {
		cmds = append(cmds, m.effectCmd(eff))
	}
	m.pending = nil
	return m, tea.Batch(cmds...)
}

func (m appModel) update(msg tea.Msg) (appModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case resultMsg:
		m.apply(msg.ev)
		return m, nil

	case delayedMsg:
		m.pending = append(m.pending, msg.eff)
		return m, nil

	case pollTickMsg:
		m.apply(state.Tick{})
		return m, m.pollTick()

	case clockTickMsg:
		m.expireMinibuffer()
		m.refreshLists()
		return m, m.clockTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

// apply feeds ev through the state machine, queues its effects and brings
// the widgets in line with the new state.
func (m *appModel) apply(ev state.Event) {
	prev := m.st
	var effs []state.Effect
	m.st, effs = state.Update(m.st, ev)
	m.pending = append(m.pending, effs...)

	var notices []state.Notice
	m.st, notices = m.st.TakeNotices()
	if n := len(notices); n > 0 {
		m.showMinibuffer(notices[n-1].Level, notices[n-1].Text)
	}
	m.sync(prev)
}

func (m *appModel) sync(prev state.State) {
	m.refreshLists()

	if f := m.st.Editing; f != nil && (prev.Editing == nil || !prev.Editing.ID.Equal(f.ID)) {
		m.openForm(*f)
	}
	if m.st.Confirm != nil && prev.Confirm == nil {
		m.confirmFocus = confirmFocusCancel
	}
	if d := m.st.Document; d != nil {
		if p := prev.Document; p == nil || p.Filename != d.Filename || p.Markdown != d.Markdown {
			m.renderDocument()
			m.doc.GotoTop()
		}
	}
	m.syncSchedule(prev.Schedule)
	m.modal = m.modalFor()
}

func (m appModel) modalFor() modalKind {
	switch {
	case m.st.Editing != nil:
		return modalTopicForm
	case m.st.Confirm != nil:
		return modalConfirmDelete
	case m.st.Document != nil:
		return modalDocument
	default:
		return modalNone
	}
}

func (m *appModel) refreshLists() {
	m.topicsList.SetItems(topicItems(m.st.Topics, m.now()))
	clampIndex(&m.topicsList)
	m.journalList.SetItems(journalItems(m.st.VisibleJournal()))
	clampIndex(&m.journalList)
}

func (m *appModel) syncSchedule(prev *model.Schedule) {
	cur := m.st.Schedule
	if cur == nil || cur == prev || m.schedDirty {
		return
	}
	m.sched = *cur
	m.timeInput.SetValue(cur.TimeOfDay)
}

func (m *appModel) renderDocument() {
	d := m.st.Document
	if d == nil {
		return
	}
	if d.Loading {
		m.doc.SetContent("")
		return
	}
	m.doc.SetContent(journaldoc.RenderTerminal(d.Markdown, m.doc.Width-2))
}

func (m *appModel) switchTab(t tab) {
	if m.tab == t {
		return
	}
	m.tab = t
	m.quickAddOpen = false
	m.quickAdd.Blur()
	m.filterActive = false
	m.filterInput.Blur()
	m.focusSchedule()
	m.saveUIState()
}

func (m *appModel) refreshCurrent() {
	switch m.tab {
	case tabJournal:
		m.apply(state.Refresh{Resource: state.ResourceJournal})
	case tabStatus:
		m.apply(state.Refresh{Resource: state.ResourceStatus})
	case tabSchedule:
		m.schedDirty = false
		m.apply(state.Refresh{Resource: state.ResourceSchedule})
	default:
		m.apply(state.Refresh{Resource: state.ResourceTopics})
	}
}

func (m appModel) updateKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.saveUIState()
		return m, tea.Quit
	}

	switch m.modal {
	case modalTopicForm:
		return m.updateTopicForm(msg)
	case modalConfirmDelete:
		return m.updateConfirm(msg), nil
	case modalDocument:
		return m.updateDocument(msg)
	}
	if m.quickAddOpen {
		return m.updateQuickAdd(msg)
	}
	if m.filterActive {
		return m.updateFilter(msg)
	}
	if m.tab == tabSchedule && m.schedFocus == scheduleFocusTime && !isScheduleNavKey(msg) {
		return m.updateTimeInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveUIState()
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(tabs[(int(m.tab)+1)%len(tabs)])
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(tabs[(int(m.tab)+len(tabs)-1)%len(tabs)])
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.refreshCurrent()
		return m, nil
	}
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(tabs) {
		m.switchTab(tabs[s[0]-'1'])
		return m, nil
	}

	switch m.tab {
	case tabTopics:
		return m.updateTopicsKey(msg)
	case tabJournal:
		return m.updateJournalKey(msg)
	case tabStatus:
		return m.updateStatusKey(msg)
	case tabSchedule:
		return m.updateScheduleKey(msg)
	}
	return m, nil
}

func (m appModel) updateTopicsKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.New):
		m.apply(state.OpenNewTopic{})
		return m, nil
	case key.Matches(msg, m.keys.QuickAdd):
		m.quickAddOpen = true
		m.quickAdd.SetValue("")
		return m, m.quickAdd.Focus()
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selectedTopic(); ok {
			m.apply(state.OpenEditTopic{ID: t.ID})
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selectedTopic(); ok {
			m.apply(state.RequestDeleteTopic{ID: t.ID})
		}
		return m, nil
	case key.Matches(msg, m.keys.Run):
		if t, ok := m.selectedTopic(); ok {
			m.apply(state.RunNow{ID: t.ID})
		}
		return m, nil
	case msg.String() == "esc":
		m.clearMinibuffer()
		return m, nil
	}
	var cmd tea.Cmd
	m.topicsList, cmd = m.topicsList.Update(msg)
	return m, cmd
}

func (m appModel) updateQuickAdd(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.quickAddOpen = false
		m.quickAdd.Blur()
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.quickAdd.Value())
		m.quickAddOpen = false
		m.quickAdd.Blur()
		m.quickAdd.SetValue("")
		if name != "" {
			m.apply(state.OpenNewTopic{Name: name})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.quickAdd, cmd = m.quickAdd.Update(msg)
	return m, cmd
}

func (m appModel) updateJournalKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.filterActive = true
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.Open):
		if it, ok := m.journalList.SelectedItem().(journalItem); ok {
			m.apply(state.ViewEntry{Filename: it.entry.Filename})
		}
		return m, nil
	case msg.String() == "esc":
		if m.st.Filter != "" {
			m.setFilter("")
			m.saveUIState()
			return m, nil
		}
		m.clearMinibuffer()
		return m, nil
	}
	var cmd tea.Cmd
	m.journalList, cmd = m.journalList.Update(msg)
	return m, cmd
}

func (m appModel) updateFilter(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterActive = false
		m.filterInput.Blur()
		m.saveUIState()
		return m, nil
	case "esc", "ctrl+g":
		m.filterActive = false
		m.filterInput.Blur()
		m.setFilter("")
		m.saveUIState()
		return m, nil
	}
	var cmd tea.Cmd
	before := m.filterInput.Value()
	m.filterInput, cmd = m.filterInput.Update(msg)
	if v := m.filterInput.Value(); v != before {
		m.apply(state.SetJournalFilter{Term: v})
		m.journalList.Select(0)
	}
	return m, cmd
}

func (m *appModel) setFilter(term string) {
	m.filterInput.SetValue(term)
	m.apply(state.SetJournalFilter{Term: term})
	m.journalList.Select(0)
}

func (m appModel) updateStatusKey(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.apply(state.Refresh{Resource: state.ResourceStatus})
	case "esc":
		m.clearMinibuffer()
	}
	return m, nil
}

func (m appModel) updateDocument(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "ctrl+g", "backspace":
		m.apply(state.CloseDocument{})
		return m, nil
	}
	var cmd tea.Cmd
	m.doc, cmd = m.doc.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) appModel {
	switch msg.String() {
	case "y", "Y":
		m.apply(state.ConfirmDelete{})
	case "n", "N", "esc", "ctrl+g":
		m.apply(state.CancelConfirm{})
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			m.apply(state.ConfirmDelete{})
		} else {
			m.apply(state.CancelConfirm{})
		}
	}
	return m
}

func (m appModel) selectedTopic() (model.Topic, bool) {
	it, ok := m.topicsList.SelectedItem().(topicItem)
	if !ok {
		return model.Topic{}, false
	}
	return it.topic, true
}
