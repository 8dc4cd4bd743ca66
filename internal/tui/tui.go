// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/onelouder/autoplex/internal/state"
	"github.com/onelouder/autoplex/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Config struct {
	Runner *state.Runner
	// Store persists the last tab and journal filter. A zero Store disables it.
	Store store.Store

	PollInterval time.Duration
	RunNowDelay  time.Duration
	Quota        int
	Theme        string
	// DocumentURL builds the browser link for a journal entry.
	DocumentURL func(filename string) string

	Logger *slog.Logger
}

func Run(ctx context.Context, cfg Config) error {
	applyColorProfilePreference()
	applyThemePreference(cfg.Theme)

	m := newAppModel(ctx, cfg)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		m.log.Error("tui exited", "err", err)
	}
	return err
}
