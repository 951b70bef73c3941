// Package logging provides the leveled, optionally colored logger that is
// passed explicitly to the pipeline and relocator.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/backmassage/rname/internal/config"
	"github.com/backmassage/rname/internal/term"
)

// Level is the minimum severity a Logger prints.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger provides leveled, optionally colored logging with optional file sink.
// The file sink receives every line at or above the logger's level, uncolored.
type Logger struct {
	mu       sync.Mutex
	level    Level
	out      io.Writer
	errOut   io.Writer
	file     *os.File
	filePath string
	now      func() time.Time
}

// NewLogger configures colors from cfg, picks the level (--debug, --silent),
// and optionally opens cfg.LogFile for appending. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	l := New(os.Stdout, os.Stderr, levelFor(cfg))
	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.filePath = cfg.LogFile
	}
	return l, nil
}

// New returns a Logger writing to out (and errOut for ERROR lines) without a
// file sink. Colors follow the current term configuration.
func New(out, errOut io.Writer, level Level) *Logger {
	return &Logger{level: level, out: out, errOut: errOut, now: time.Now}
}

func levelFor(cfg *config.Config) Level {
	switch {
	case cfg.Debug:
		return LevelDebug
	case cfg.Silent:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// FilePath returns the log file path, or "" when logging to the terminal only.
func (l *Logger) FilePath() string { return l.filePath }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level Level, tag string, st lipgloss.Style, text string) {
	if level < l.level {
		return
	}
	ts := l.now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if level == LevelError {
		out = l.errOut
	}
	_, _ = io.WriteString(out, ts+" "+term.Paint(st, "["+tag+"]")+" "+text+"\n")
	if l.file != nil {
		_, _ = io.WriteString(l.file, ts+" ["+tag+"] "+text+"\n")
	}
}

// Debug logs at DEBUG level (cyan); printed only with --debug.
func (l *Logger) Debug(format string, args ...any) {
	l.line(LevelDebug, "DEBUG", term.Cyan, fmt.Sprintf(format, args...))
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) {
	l.line(LevelInfo, "INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at INFO level with a SUCCESS tag (green).
func (l *Logger) Success(format string, args ...any) {
	l.line(LevelInfo, "SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...any) {
	l.line(LevelWarn, "WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red) to the error writer.
func (l *Logger) Error(format string, args ...any) {
	l.line(LevelError, "ERROR", term.Red, fmt.Sprintf(format, args...))
}
