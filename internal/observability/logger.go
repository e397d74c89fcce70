package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLoggerTo is sharedobs.NewLogger for an arbitrary writer. The shared
// constructor always writes to stdout, which the narrator reserves for the
// generated text.
func NewLoggerTo(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
