// Package logger provides a small leveled logger shared by the FitGenie
// client surfaces. Interactive frontends (the TUI, the Telegram bot)
// redirect it to a file so diagnostics never garble the screen.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level controls logger verbosity.
type Level int

const (
	// LevelOff disables all output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose additionally enables debug output.
	LevelVerbose
)

// Logger is a leveled logger. Safe for concurrent use.
type Logger struct {
	mu    sync.RWMutex
	level Level
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// New creates a logger writing to out. If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	flags := log.Ldate | log.Ltime
	return &Logger{
		level: level,
		debug: log.New(out, "[DBG] ", flags),
		info:  log.New(out, "[INF] ", flags),
		warn:  log.New(out, "[WRN] ", flags),
		err:   log.New(out, "[ERR] ", flags),
	}
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Debug logs at debug level (verbose mode only).
func (l *Logger) Debug(format string, args ...any) { l.output(LevelVerbose, l.debug, format, args...) }

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) { l.output(LevelNormal, l.info, format, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...any) { l.output(LevelNormal, l.warn, format, args...) }

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) { l.output(LevelNormal, l.err, format, args...) }

func (l *Logger) output(min Level, dst *log.Logger, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level >= min {
		dst.Output(3, fmt.Sprintf(format, args...))
	}
}
