// Package logger is the printf-style leveled logger every package takes.
// Formatting and colour come from charmbracelet/log; this package only
// decides what gets through.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

type Level int32

const (
	LevelOff     Level = iota // nothing
	LevelNormal               // info, warn, error
	LevelVerbose              // everything, debug included
)

// ParseLevel maps a config value to a Level. Anything unrecognised is
// LevelNormal.
func ParseLevel(s string) Level {
	switch s {
	case "off", "quiet", "none":
		return LevelOff
	case "verbose", "debug":
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// Logger is safe for concurrent use. Loggers derived with With share one
// level.
type Logger struct {
	level *atomic.Int32
	out   *log.Logger
}

// New writes to out, or to stderr when out is nil.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := new(atomic.Int32)
	lvl.Store(int32(level))
	return &Logger{
		level: lvl,
		out: log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Level:           log.DebugLevel,
		}),
	}
}

// With prefixes every line with component.
func (l *Logger) With(component string) *Logger {
	return &Logger{level: l.level, out: l.out.WithPrefix(component)}
}

func (l *Logger) SetLevel(level Level) { l.level.Store(int32(level)) }

func (l *Logger) GetLevel() Level { return Level(l.level.Load()) }

// StandardLog adapts the logger for packages that insist on *log.Logger.
// Their lines come out at info.
func (l *Logger) StandardLog() *stdlog.Logger {
	return l.out.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
}

func (l *Logger) allows(min Level) bool { return l.GetLevel() >= min }

// Debug only prints at LevelVerbose.
func (l *Logger) Debug(format string, args ...any) {
	if l.allows(LevelVerbose) {
		l.out.Debugf(format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.allows(LevelNormal) {
		l.out.Infof(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l.allows(LevelNormal) {
		l.out.Warnf(format, args...)
	}
}

func (l *Logger) Error(format string, args ...any) {
	if l.allows(LevelNormal) {
		l.out.Errorf(format, args...)
	}
}
