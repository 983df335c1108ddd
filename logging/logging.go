// Package logging builds the application logger and carries request-scoped
// log entries through contexts.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// New returns a logrus logger configured from cfg. Unknown levels fall back to info.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

type ctxKey struct{}

// WithEntry stores a request-scoped entry in ctx.
func WithEntry(ctx context.Context, entry logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the request entry, or fallback when none is set.
func FromContext(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if entry, ok := EntryFromContext(ctx); ok {
		return entry
	}
	return fallback
}

// EntryFromContext reports the request entry stored in ctx, if any.
func EntryFromContext(ctx context.Context) (logrus.FieldLogger, bool) {
	entry, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger)
	return entry, ok
}
