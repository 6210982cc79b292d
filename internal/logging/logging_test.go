package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"ragqa/internal/config"
	"ragqa/internal/domain"
)

func TestNew_JSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hidden")
	l.Warn("document failed", "document", "a.txt")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "document failed" || rec["document"] != "a.txt" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, config.LogConfig{Level: "loud"}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for level, got %v", err)
	}
	if _, err := New(&bytes.Buffer{}, config.LogConfig{Format: "xml"}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for format, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("DEBUG")
	if err != nil || l != slog.LevelDebug {
		t.Fatalf("got %v %v", l, err)
	}
}
