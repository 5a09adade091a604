// Package logging builds the zerolog loggers used by ropecore.
//
// Loggers write to the console (human readable or JSON) and, when a file
// is configured, also to a size-rotated log file.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// ErrInvalidLevel indicates an unrecognized level name.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidFormat indicates an unrecognized output format.
	ErrInvalidFormat = errors.New("invalid log format")
)

// Format selects how console output is rendered.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config configures a logger.
type Config struct {
	Level  string
	Format string

	// File enables a rotated log file in addition to console output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// TimeFormat is used by the console format.
	TimeFormat string
}

// DefaultConfig returns the logger configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     string(FormatConsole),
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
		TimeFormat: "01-02 15:04:05",
	}
}

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, errors.Wrapf(ErrInvalidLevel, "%q", s)
	}
}

// ParseFormat parses an output format name. An empty name means console.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "console", "text":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatConsole, errors.Wrapf(ErrInvalidFormat, "%q", s)
	}
}

// Logger is a configured zerolog logger together with the resources it
// writes to.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// New creates a logger writing to out (os.Stderr when nil) as described
// by cfg.
func New(cfg Config, out io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stderr
	}

	console := out
	if format == FormatConsole {
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = time.RFC3339
		}
		console = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat, NoColor: !isTerminal(out)}
	}

	l := &Logger{}
	writer := console
	if cfg.File != "" {
		// The file always gets JSON so it can be processed later.
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		writer = zerolog.MultiLevelWriter(console, l.file)
	}

	l.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
