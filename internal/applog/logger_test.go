package applog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level    string
		wantSlog slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("level_"+tt.level, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := New(&buf, tt.level, "text")

			logger.Log(context.Background(), tt.wantSlog, "should appear")
			if buf.Len() == 0 {
				t.Fatalf("expected log output at level %v", tt.wantSlog)
			}

			buf.Reset()
			logger.Log(context.Background(), tt.wantSlog-1, "should be suppressed")
			if buf.Len() != 0 {
				t.Fatalf("level %v should suppress %v, got %s", tt.wantSlog, tt.wantSlog-1, buf.String())
			}
		})
	}
}

func TestNew_TextAddSource_JSONNoSource(t *testing.T) {
	t.Parallel()
	var textBuf, jsonBuf bytes.Buffer

	New(&textBuf, "info", "text").Info("hello")
	New(&jsonBuf, "info", "json").Info("hello")

	if !strings.Contains(textBuf.String(), "source=") {
		t.Fatalf("text format should include source: %s", textBuf.String())
	}
	var m map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := m["source"]; ok {
		t.Fatalf("json format should not include source")
	}
	if m["msg"] != "hello" {
		t.Fatalf("unexpected record %#v", m)
	}
}

func TestDiscard_DropsErrors(t *testing.T) {
	t.Parallel()
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("discard logger should not be enabled for errors")
	}
}

func TestOpenFile_AppendsAndCreatesDirs(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "tui.log")

	for _, msg := range []string{"first", "second"} {
		f, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		New(f, "info", "json").Info(msg)
		_ = f.Close()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "first") || !strings.Contains(lines[1], "second") {
		t.Fatalf("expected two appended lines, got %q", string(b))
	}
}
