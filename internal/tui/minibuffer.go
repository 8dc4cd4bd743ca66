package tui

import (
	"time"

	"github.com/onelouder/autoplex/internal/state"

	"github.com/charmbracelet/lipgloss"
)

const minibufferAutoClearAfter = 4 * time.Second

func (m *appModel) showMinibuffer(level state.NoticeLevel, text string) {
	m.minibufferText = text
	m.minibufferLevel = level
	m.minibufferSetAt = m.now()
}

func (m *appModel) clearMinibuffer() {
	m.minibufferText = ""
	m.minibufferSetAt = time.Time{}
}

// expireMinibuffer clears info and success messages after a few seconds.
// Errors stay until the next message or esc.
func (m *appModel) expireMinibuffer() {
	if m.minibufferText == "" || m.minibufferLevel == state.NoticeError {
		return
	}
	if m.now().Sub(m.minibufferSetAt) >= minibufferAutoClearAfter {
		m.clearMinibuffer()
	}
}

func (m appModel) renderMinibuffer() string {
	if m.minibufferText == "" {
		return ""
	}
	st := lipgloss.NewStyle().Foreground(levelColor(string(m.minibufferLevel))).Bold(m.minibufferLevel == state.NoticeError)
	return st.Render(m.minibufferText)
}
