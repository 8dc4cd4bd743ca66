package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onelouder/autoplex/internal/api"
	"github.com/onelouder/autoplex/internal/state"
	"github.com/onelouder/autoplex/internal/store"

	"github.com/spf13/cobra"
)

// session is one command's view of the backend: a runner, the local
// snapshot store and the state the command owns.
type session struct {
	runner *state.Runner
	client *api.Client
	snaps  *store.Snapshots
	st     state.State
}

func (app *App) newRunner(ctx context.Context) (*state.Runner, *api.Client, *store.Snapshots, error) {
	c, err := api.New(app.cfg.Server.URL,
		api.WithTimeout(app.cfg.Server.Timeout),
		api.WithLogger(app.log),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []state.RunnerOption{state.WithLogger(app.log)}
	snaps, err := app.store.OpenSnapshots(ctx)
	if err != nil {
		// Snapshots only back stale reads; carry on without them.
		app.log.Warn("snapshot store unavailable", "err", err)
		snaps = nil
	} else {
		opts = append(opts, state.WithSnapshots(snaps))
	}
	return state.NewRunner(c, opts...), c, snaps, nil
}

func (app *App) openSession(cmd *cobra.Command) (*session, error) {
	r, c, snaps, err := app.newRunner(cmd.Context())
	if err != nil {
		return nil, err
	}
	return &session{
		runner: r,
		client: c,
		snaps:  snaps,
		st:     state.New(state.WithRunRefreshDelay(app.cfg.Poll.RunNowDelay)),
	}, nil
}

func (s *session) Close() error {
	return s.snaps.Close()
}

// apply runs ev to completion. Delayed effects are dropped: a one-shot
// command does not wait for them.
func (s *session) apply(ctx context.Context, ev state.Event) ([]state.Notice, []state.Event) {
	var events []state.Event
	s.st, events = s.runner.Trace(ctx, s.st, ev, nil)
	var notices []state.Notice
	s.st, notices = s.st.TakeNotices()
	return notices, events
}

func (s *session) fetch(ctx context.Context, r state.Resource) error {
	notices, _ := s.apply(ctx, state.Refresh{Resource: r})
	return noticeErr(notices)
}

// stale loads the last good copy of r into dst.
func (s *session) stale(ctx context.Context, r state.Resource, dst any) (map[string]any, bool) {
	if s.snaps == nil {
		return nil, false
	}
	at, ok, err := s.snaps.LoadSnapshot(ctx, r, dst)
	if err != nil || !ok {
		return nil, false
	}
	return map[string]any{
		"stale":     true,
		"fetchedAt": at.UTC().Format(time.RFC3339),
	}, true
}

// noticeErr returns the last error notice as an error.
func noticeErr(notices []state.Notice) error {
	for i := len(notices) - 1; i >= 0; i-- {
		if notices[i].Level == state.NoticeError {
			return errors.New(notices[i].Text)
		}
	}
	return nil
}

func errOr(err error, msg string) error {
	if err != nil {
		return err
	}
	return errors.New(msg)
}

func noticeText(notices []state.Notice, level state.NoticeLevel) string {
	for i := len(notices) - 1; i >= 0; i-- {
		if notices[i].Level == level {
			return notices[i].Text
		}
	}
	return ""
}

// writeStale prints the fetch failure, then the last snapshot of r marked
// stale. The failure is still returned so the exit status is non-zero.
func writeStale[T any](cmd *cobra.Command, app *App, sess *session, r state.Resource, ferr error, wrap func(T) any) error {
	var v T
	meta, ok := sess.stale(cmd.Context(), r, &v)
	if !ok {
		return writeErr(cmd, ferr)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ferr.Error())
	if err := writeOut(cmd, app, map[string]any{"data": wrap(v), "meta": meta}); err != nil {
		return err
	}
	return ferr
}

func findEvent[T state.Event](events []state.Event) (T, bool) {
	for _, ev := range events {
		if t, ok := ev.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
