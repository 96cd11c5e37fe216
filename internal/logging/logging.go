// Package logging builds the zerolog logger shared by every storybook
// command. Logs always go to stderr: stdout belongs to MCP, the bridge
// protocol and command output.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the log level and format.
type Options struct {
	Level string // trace, debug, info, warn, error; "" means info
	JSON  bool   // one JSON object per line instead of console output
	Out   io.Writer
}

// New returns a logger for opts. An unknown level falls back to info and
// is reported through the returned logger.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := ParseLevel(opts.Level)
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return logger
}

// ParseLevel maps a level name to a zerolog level. "" is info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, err
	}
	return level, nil
}
