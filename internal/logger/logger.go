// Package logger provides the leveled console logger shared by the scanner,
// the summary walker and the command line.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level is a log severity.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name. Unknown names fall back to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes "[level]: message" lines. A nil *Logger discards everything.
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	colors map[Level]*color.Color
}

// New creates a logger writing messages at or above level to w.
// Level tags are colored when w is a terminal.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{
		writer: w,
		level:  level,
		colors: map[Level]*color.Color{
			LevelDebug: color.New(color.FgCyan),
			LevelInfo:  color.New(color.FgGreen),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed, color.Bold),
		},
	}

	useColor := isTerminal(w) && !color.NoColor
	for _, c := range l.colors {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return l
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && l.writer != nil && level >= l.level
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	tag := l.colors[level].Sprintf("[%s]", level)

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.writer, "%s: %s\n", tag, strings.TrimRight(msg, "\n"))
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
