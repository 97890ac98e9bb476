// Package ctxlog carries the run's slog.Logger through context.Context so
// that parsing, validation and the format passes log to the logger the
// application configured rather than to a global.
package ctxlog

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger attached to ctx, or slog.Default when
// there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// With returns a context whose logger carries the given attributes, such as
// the struct currently being exported or imported.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}
