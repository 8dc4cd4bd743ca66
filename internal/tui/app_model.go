package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"
	"github.com/onelouder/autoplex/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

const (
	defaultPollInterval = 60 * time.Second
	defaultQuota        = 100
	clockInterval       = time.Second
)

type appModel struct {
	ctx    context.Context
	runner *state.Runner
	store  store.Store
	log    *slog.Logger
	now    func() time.Time

	pollInterval time.Duration
	quota        int
	documentURL  func(string) string

	// st is the shared state machine; pending holds effects produced by
	// the current Update that have not been handed to Bubble Tea yet.
	st      state.State
	pending []state.Effect

	width  int
	height int
	tab    tab

	topicsList  list.Model
	journalList list.Model

	quickAdd     textinput.Model
	quickAddOpen bool

	filterInput  textinput.Model
	filterActive bool

	modal        modalKind
	nameInput    textinput.Model
	queryInput   textinput.Model
	formFocus    formFocus
	confirmFocus confirmModalFocus

	doc viewport.Model

	// sched is the schedule draft being edited. It follows the server copy
	// until the user changes a field.
	sched      model.Schedule
	schedDirty bool
	schedFocus scheduleFocus
	timeInput  textinput.Model

	usageBar progress.Model
	spinner  spinner.Model

	keys     keyMap
	help     help.Model
	showHelp bool

	minibufferText  string
	minibufferLevel state.NoticeLevel
	minibufferSetAt time.Time
}

func newAppModel(ctx context.Context, cfg Config) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	m := appModel{
		ctx:          ctx,
		runner:       cfg.Runner,
		store:        cfg.Store,
		log:          cfg.Logger,
		now:          time.Now,
		pollInterval: cfg.PollInterval,
		quota:        cfg.Quota,
		documentURL:  cfg.DocumentURL,
		st:           state.New(state.WithRunRefreshDelay(cfg.RunNowDelay)),
		width:        100,
		height:       30,
		keys:         defaultKeyMap(),
		help:         help.New(),
		sched:        model.DefaultSchedule(),
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.pollInterval <= 0 {
		m.pollInterval = defaultPollInterval
	}
	if m.quota <= 0 {
		m.quota = defaultQuota
	}

	m.topicsList = newList("Research Topics", nil)
	m.journalList = newList("Journal", nil)

	m.quickAdd = newTextInput("Topic name, then enter", 120)
	m.filterInput = newTextInput("Search by topic or tag", 120)
	m.nameInput = newTextInput("e.g. AI Safety", 200)
	m.queryInput = newTextInput("e.g. alignment research", 500)
	m.timeInput = newTextInput("HH:MM", 5)

	m.doc = viewport.New(0, 0)
	m.usageBar = progress.New(progress.WithSolidFill("#22c55e"), progress.WithoutPercentage())
	m.spinner = spinner.New(spinner.WithSpinner(spinner.MiniDot))

	if ui, err := m.store.LoadUIState(); err != nil {
		m.log.Warn("load ui state", "err", err)
	} else {
		m.tab = parseTab(ui.Tab)
		if ui.Filter != "" {
			m.filterInput.SetValue(ui.Filter)
			m.st, _ = state.Update(m.st, state.SetJournalFilter{Term: ui.Filter})
		}
	}

	m.timeInput.SetValue(m.sched.TimeOfDay)
	m.resize()
	return m
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	return ti
}

func (m *appModel) saveUIState() {
	err := m.store.SaveUIState(&store.UIState{
		Version: 1,
		Tab:     m.tab.String(),
		Filter:  m.st.Filter,
	})
	if err != nil {
		m.log.Warn("save ui state", "err", err)
	}
}

// bodyHeight is the space between the tab bar and the footer.
func (m appModel) bodyHeight() int {
	h := m.height - 4
	if m.showHelp {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m appModel) bodyWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

func (m *appModel) resize() {
	w, h := m.bodyWidth(), m.bodyHeight()
	// One row each for the quick-add or search line.
	m.topicsList.SetSize(w, h-1)
	m.journalList.SetSize(w, h-1)
	m.usageBar.Width = min(40, w-20)
	m.doc.Width = max(10, m.width-6)
	m.doc.Height = max(3, m.height-8)
	if m.st.Document != nil && m.st.Document.Markdown != "" {
		m.renderDocument()
	}
}
