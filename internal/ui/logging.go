package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger keeps the printf-style method set used across the tool and writes
// through a zerolog console writer.
type Logger struct {
	Debug bool
	zl    zerolog.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: w != os.Stderr}
	return &Logger{
		Debug: debug,
		zl:    zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// With returns a child logger carrying an extra field, e.g. the run id.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{Debug: l.Debug, zl: l.zl.With().Str(key, value).Logger()}
}

func msg(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msg(msg(format, args))
}

func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msg(msg(format, args))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msg(msg(format, args))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msg(msg(format, args))
}

// Discard is a logger that drops everything; handy in tests.
func Discard() *Logger {
	return &Logger{zl: zerolog.Nop()}
}
