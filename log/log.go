package log

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var root = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}()

// Root returns the process wide logger.
func Root() *logrus.Logger {
	return root
}

// Configure sets the level and output format ("json" or "text") of the root logger.
func Configure(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	root.SetLevel(lvl)
	switch format {
	case "json":
		root.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// GetLogger returns the entry stored in ctx, or a root entry when there is none.
func GetLogger(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok && entry != nil {
			return entry
		}
	}
	return logrus.NewEntry(root)
}
