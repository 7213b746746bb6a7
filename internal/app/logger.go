package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the application logger without touching the slog global,
// so each App instance (and each test) gets an isolated output stream.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
