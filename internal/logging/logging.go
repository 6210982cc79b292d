// Package logging builds the process-wide slog logger from config.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"ragqa/internal/config"
	"ragqa/internal/domain"
)

// New returns a text or JSON logger writing to w at the configured level.
func New(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, domain.InvalidConfig("logging", cfg.Format, "log.format must be text or json")
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, domain.InvalidConfig("logging", s, "unknown log level")
	}
	return l, nil
}

// Discard is a logger that drops everything, for quiet surfaces like the TUI.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
