package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Config controls the process-wide logger.
type Config struct {
	// Level is a logrus level name: "debug", "info", "warn", "error".
	Level string

	// Format is "text" or "json".
	Format string

	// Output defaults to stderr.
	Output io.Writer
}

// DefaultConfig returns info-level text logging to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// ConfigFromEnv reads EXAMGEN_LOG_LEVEL and EXAMGEN_LOG_FORMAT.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if l := os.Getenv("EXAMGEN_LOG_LEVEL"); l != "" {
		cfg.Level = l
	}
	if f := os.Getenv("EXAMGEN_LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	return cfg
}

// Setup applies cfg to the standard logrus logger.
func Setup(cfg Config) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	logrus.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	if cfg.Output != nil {
		logrus.SetOutput(cfg.Output)
	} else {
		logrus.SetOutput(os.Stderr)
	}
	return nil
}

type loggerKey struct{}

// NewContext attaches a logger to ctx. WithContext prefers it over the
// standard logger.
func NewContext(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// WithContext returns a logger scoped to ctx. When the context carries a chi
// request id it is added as the "request_id" field.
func WithContext(ctx context.Context) logrus.FieldLogger {
	var log logrus.FieldLogger = logrus.StandardLogger()
	if l, ok := ctx.Value(loggerKey{}).(logrus.FieldLogger); ok {
		log = l
	}
	if id := middleware.GetReqID(ctx); id != "" {
		log = log.WithField("request_id", id)
	}
	return log
}

// RequestID returns the chi request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
