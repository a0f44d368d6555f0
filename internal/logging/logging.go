// Package logging builds the structured logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
)

// Format selects the log line encoding.
type Format string

const (
	// Text writes key=value lines.
	Text Format = "text"
	// JSON writes one JSON object per line.
	JSON Format = "json"
)

// Level maps the quiet/verbose switches onto a log level. Verbose wins.
func Level(quiet, verbose bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w in the given format at the given level.
func New(w io.Writer, format Format, level slog.Level) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}

	switch format {
	case Text, "":
		return slog.New(slog.NewTextHandler(w, options)), nil
	case JSON:
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
