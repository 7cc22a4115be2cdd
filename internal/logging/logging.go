// Package logging configures the process-wide slog logger.
//
// Interactive sessions (show, config, search) get tinted human-readable
// output; a detached watch daemon with captured stderr gets JSON lines,
// which is what journald and log collectors expect.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// timeFormat includes the day: a watch session can run for weeks.
const timeFormat = "02 Jan 15:04:05.000"

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Setup configures the global slog logger. Call once after argument parsing.
func Setup(format Format, level slog.Level) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, format, level)))
}

func newHandler(w *os.File, format Format, level slog.Level) slog.Handler {
	// Source attribution is only worth the line noise when debugging.
	withSource := level <= slog.LevelDebug

	if format == FormatText || (format == FormatAuto && IsTTY(w)) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: timeFormat,
			AddSource:  withSource,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: withSource,
	})
}
