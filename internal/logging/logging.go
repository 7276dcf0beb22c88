// Package logging provides structured logging using zerolog. Every sink is
// wrapped in a redacting writer so credentials never reach a log file or
// the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dshills/smartcommits/internal/redact"
	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Level represents log levels.
type Level = zerolog.Level

// Log levels exposed for convenience.
const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Pretty enables human-readable console output.
	Pretty bool
}

var (
	mu     sync.Mutex
	output io.Writer
)

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Level:  WarnLevel,
		Output: os.Stderr,
		Pretty: true,
	}
}

// Init initializes the global logger. The output is always wrapped in a
// redacting writer.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	sink := redact.Writer(cfg.Output)
	var w io.Writer = sink
	if cfg.Pretty {
		// ConsoleWriter formats before writing, so the redacting writer
		// sits underneath it and sees the final text.
		w = zerolog.ConsoleWriter{Out: sink, TimeFormat: time.Kitchen, NoColor: true}
	}
	output = sink
	Logger = zerolog.New(w).Level(cfg.Level).With().Timestamp().Logger()
}

// InstallRedaction makes sure the active sink redacts its input. Calling it
// more than once is harmless.
func InstallRedaction() {
	mu.Lock()
	installed := output != nil && redact.IsWriter(output)
	mu.Unlock()
	if installed {
		return
	}
	Init(DefaultConfig())
}

// SetLevel changes the minimum level of the global logger.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	Logger = Logger.Level(level)
}

// ParseLevel parses a log level string (case-insensitive).
// Returns WarnLevel if the string is not recognized.
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return WarnLevel
	}
}

// Debug starts a new debug level log message.
func Debug() *zerolog.Event { return Logger.Debug() }

// Info starts a new info level log message.
func Info() *zerolog.Event { return Logger.Info() }

// Warn starts a new warn level log message.
func Warn() *zerolog.Event { return Logger.Warn() }

// Error starts a new error level log message.
func Error() *zerolog.Event { return Logger.Error() }

// Debugf logs a formatted debug message with string arguments redacted
// before formatting.
func Debugf(format string, args ...any) {
	Logger.Debug().Msg(sanitize(format, args))
}

// Warnf logs a formatted warning with string arguments redacted before
// formatting.
func Warnf(format string, args ...any) {
	Logger.Warn().Msg(sanitize(format, args))
}

// Errorf logs a formatted error with string arguments redacted before
// formatting.
func Errorf(format string, args ...any) {
	Logger.Error().Msg(sanitize(format, args))
}

func sanitize(format string, args []any) string {
	return redact.Message(fmt.Sprintf(redact.Message(format), redact.Args(args)...))
}

func init() {
	Init(DefaultConfig())
}
