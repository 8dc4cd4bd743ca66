package tui

import (
	"context"
	"testing"
	"time"

	"github.com/onelouder/autoplex/internal/state"
)

func TestClockTick_AutoClearsMinibuffer(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	m := newAppModel(context.Background(), Config{})
	m.now = func() time.Time { return now }

	(&m).showMinibuffer(state.NoticeSuccess, "Hello")
	now = now.Add(minibufferAutoClearAfter + 100*time.Millisecond)

	m, _ = m.update(clockTickMsg{})
	if got := m.minibufferText; got != "" {
		t.Fatalf("expected minibuffer text to clear, got %q", got)
	}
}

func TestClockTick_DoesNotClearRecentMinibuffer(t *testing.T) {
	m := newAppModel(context.Background(), Config{})
	(&m).showMinibuffer(state.NoticeInfo, "Hello")

	m, _ = m.update(clockTickMsg{})
	if got := m.minibufferText; got == "" {
		t.Fatalf("expected minibuffer text to remain set")
	}
}

func TestClockTick_KeepsErrors(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	m := newAppModel(context.Background(), Config{})
	m.now = func() time.Time { return now }

	(&m).showMinibuffer(state.NoticeError, "Failed")
	now = now.Add(time.Minute)

	m, _ = m.update(clockTickMsg{})
	if got := m.minibufferText; got != "Failed" {
		t.Fatalf("expected error to stay, got %q", got)
	}
	m = press(m, "esc")
	if got := m.minibufferText; got != "" {
		t.Fatalf("expected esc to dismiss, got %q", got)
	}
}
