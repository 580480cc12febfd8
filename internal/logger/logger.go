// Package logger builds the process-wide zerolog root logger. Components
// derive their own loggers from it with .With().Str("component", ...).
package logger

import (
	"io"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// Bearer tokens must never reach the logs.
var tokenRegex = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._\-]+`)

// New constructs the root logger. When json is false the console writer is
// used, which is what you want during development.
func New(level string, json bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if !json {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Redact strips bearer tokens from a string destined for a log line.
func Redact(s string) string {
	return tokenRegex.ReplaceAllString(s, "Bearer REDACTED")
}
