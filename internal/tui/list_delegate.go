package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowItem is a list entry rendered as a title column and a muted detail column.
type rowItem interface {
	list.Item
	Title() string
	Detail() string
}

type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	// titleW is the fixed title column width; 0 sizes it to a third of the row.
	titleW int
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}
	it, ok := item.(rowItem)
	if !ok {
		fmt.Fprint(w, fitWidth(fmt.Sprint(item), contentW))
		return
	}

	titleW := d.titleW
	if titleW <= 0 {
		titleW = contentW / 3
	}
	if titleW > contentW-2 {
		titleW = contentW - 2
	}
	marker := "  "
	style := d.normal
	if index == m.Index() {
		marker = "› "
		style = d.selected
	}

	title := fitWidth(it.Title(), titleW)
	rest := contentW - len(marker) - titleW - 2
	detail := ""
	if rest > 0 {
		detail = fitWidth(it.Detail(), rest)
	}
	line := marker + title + "  " + detail
	if index != m.Index() {
		line = marker + title + "  " + styleMeta().Render(detail)
	}
	fmt.Fprint(w, style.Render(line))
}

// fitWidth pads or truncates s to exactly w cells.
func fitWidth(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	sw := xansi.StringWidth(s)
	switch {
	case sw > w && w > 1:
		return xansi.Truncate(s, w, "…")
	case sw > w:
		return xansi.Cut(s, 0, w)
	case sw < w:
		return s + strings.Repeat(" ", w-sw)
	}
	return s
}
