package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")

	l.Info("pressed", "button", "right")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "pressed" {
		t.Errorf("expected msg 'pressed', got %v", entry["msg"])
	}
	if entry["button"] != "right" {
		t.Errorf("expected button 'right', got %v", entry["button"])
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "text")

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message should be logged at warn level")
	}
}

func TestL_DefaultsWhenUninitialized(t *testing.T) {
	if L() == nil {
		t.Fatal("L() returned nil")
	}
	if Component("test") == nil {
		t.Fatal("Component() returned nil")
	}
}

func TestComponent_TagsRecords(t *testing.T) {
	mu.Lock()
	saved := logger
	var buf bytes.Buffer
	logger = New(&buf, "info", "text")
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		logger = saved
		mu.Unlock()
	})

	Component("server").Info("listening")

	if out := buf.String(); !strings.Contains(out, "component=server") || !strings.Contains(out, "listening") {
		t.Errorf("expected a record tagged component=server, got %q", out)
	}
}
