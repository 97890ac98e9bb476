package app

import (
	"io"
	"log/slog"
)

// newLogger builds the run's logger writing to w. Level names are the ones
// slog understands; an unknown name logs at info. The global logger is left
// alone so parallel runs in tests stay isolated.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}
