// Package logging configures log/slog and derives request-scoped loggers.
//
// Loggers returned by FromContext carry the chi request id and, once a
// handler has resolved one, the grid view id, so every entry for a single
// interaction can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const ctxKeyViewID contextKey = "grid_view_id"

// Setup installs the default slog logger writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger for w without installing it.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithViewID records the grid view a request operates on.
func WithViewID(ctx context.Context, viewID string) context.Context {
	return context.WithValue(ctx, ctxKeyViewID, viewID)
}

// ViewIDFromContext returns the view id stored by WithViewID, if any.
func ViewIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyViewID).(string); ok {
		return v
	}
	return ""
}

// FromContext returns the default logger enriched with request_id and
// view_id when ctx carries them.
//
//	func handleSort(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("sort toggled", "field", field)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if viewID := ViewIDFromContext(ctx); viewID != "" {
		logger = logger.With("view_id", viewID)
	}
	return logger
}

// WithFields returns FromContext(ctx) with extra attributes.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
