// Package logging builds the service's zerolog logger and carries the request
// correlation id through contexts.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// CorrelationIDHeader is the request/response header carrying the correlation id
const CorrelationIDHeader = "x-correlation-id"

type correlationKey struct{}

// New returns a logger writing JSON to w, or a console writer when pretty is set.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// WithCorrelationID stores id in ctx and attaches a child logger tagged with it.
func WithCorrelationID(ctx context.Context, base zerolog.Logger, id string) context.Context {
	ctx = context.WithValue(ctx, correlationKey{}, id)
	l := base.With().Str("correlation_id", id).Logger()
	return l.WithContext(ctx)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// FromContext returns the request logger if one was attached, otherwise fallback.
func FromContext(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}
