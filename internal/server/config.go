package server

import (
	"fmt"
	"os"
	"time"
)

// Config holds HTTP listener settings.
type Config struct {
	// Addr is the listen address. Default: ":8080".
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults. WriteTimeout leaves room for a
// full LLM call with retries.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    3 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFromEnv reads EXAMGEN_ADDR on top of the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("EXAMGEN_ADDR"); v != "" {
		cfg.Addr = v
	}
	return cfg
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}
