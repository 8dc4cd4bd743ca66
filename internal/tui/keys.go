package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding

	New      key.Binding
	QuickAdd key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Run      key.Binding

	Search key.Binding
	Open   key.Binding

	Field  key.Binding
	Change key.Binding
	Toggle key.Binding
	Save   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new topic")),
		QuickAdd: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "quick add")),
		Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Run:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run now")),

		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Open:   key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "read")),

		Field:  key.NewBinding(key.WithKeys("up", "down", "k", "j"), key.WithHelp("↑/↓", "field")),
		Change: key.NewBinding(key.WithKeys("left", "right", "h", "l"), key.WithHelp("←/→", "frequency")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle email")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save")),
	}
}

// tabKeys narrows the bindings shown in the footer to the active tab.
type tabKeys struct {
	keys keyMap
	tab  tab
}

func (t tabKeys) ShortHelp() []key.Binding {
	k := t.keys
	var local []key.Binding
	switch t.tab {
	case tabTopics:
		local = []key.Binding{k.New, k.QuickAdd, k.Edit, k.Delete, k.Run}
	case tabJournal:
		local = []key.Binding{k.Search, k.Open}
	case tabSchedule:
		local = []key.Binding{k.Field, k.Change, k.Toggle, k.Save}
	}
	return append(local, k.NextTab, k.Refresh, k.Help, k.Quit)
}

func (t tabKeys) FullHelp() [][]key.Binding {
	k := t.keys
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Refresh, k.Help, k.Quit},
		{k.New, k.QuickAdd, k.Edit, k.Delete, k.Run},
		{k.Search, k.Open},
		{k.Field, k.Change, k.Toggle, k.Save},
	}
}
