// Package logging provides structured logging for the safebox client library.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the library's CLI/embedded output conventions.
type Logger struct {
	zlog   zerolog.Logger
	mode   string // "cli" or "embedded"
	output io.Writer
}

// New creates a logger writing to w in the given mode. mode only affects
// console formatting; embedders that want JSON output can pass any
// io.Writer and mode "embedded".
func New(mode string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}

	var output io.Writer
	if mode == "cli" {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	} else {
		output = w
	}

	zlog := zerolog.New(output).With().Timestamp().Logger()

	return &Logger{zlog: zlog, mode: mode, output: output}
}

// NewDefaultCLILogger creates a default CLI logger writing to stderr.
func NewDefaultCLILogger() *Logger {
	return New("cli", os.Stderr)
}

// Nop returns a logger that discards everything, for tests and
// embedders who don't want log output.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), mode: "nop", output: io.Discard}
}

func (l *Logger) Info() *zerolog.Event  { return l.zlog.Info() }
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }
func (l *Logger) Warn() *zerolog.Event  { return l.zlog.Warn() }

// With returns a child-logger builder carrying additional context, e.g.
// l.With().Str("mount_id", id.String()).Logger().
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// WithFields returns a new Logger with the given key/value pairs attached
// to every subsequent entry. Used by components to scope a logger to a
// mount id, repo id, or transfer id.
func (l *Logger) WithFields(fields map[string]string) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Str(k, v)
	}
	return &Logger{zlog: ctx.Logger(), mode: l.mode, output: l.output}
}

func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	if l.mode == "cli" {
		l.zlog = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	} else {
		l.zlog = zerolog.New(w).With().Timestamp().Logger()
	}
}

func (l *Logger) Output() io.Writer { return l.output }

func (l *Logger) Debugf(format string, args ...interface{}) { l.zlog.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.zlog.Info().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.zlog.Error().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.zlog.Warn().Msgf(format, args...) }

// SetGlobalLevel sets the process-wide minimum log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
