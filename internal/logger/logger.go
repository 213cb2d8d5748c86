// Package logger is a small leveled logger with key/value fields.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the minimum severity a Logger emits.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
)

// Fields are appended to a log line as key=value pairs.
type Fields map[string]interface{}

// Logger writes leveled lines to stdout and, optionally, a log file.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	file  *os.File
	level Level
	now   func() time.Time
}

var (
	global     *Logger
	globalOnce sync.Once
)

// Get returns the process-wide logger.
func Get() *Logger {
	globalOnce.Do(func() {
		global = New(os.Stdout, INFO)
	})
	return global
}

// New returns a logger writing to out.
func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level, now: time.Now}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, ERROR+1)
}

// OpenFile additionally appends log lines to path.
func (l *Logger) OpenFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = file
	return nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// ParseLevel maps a name like "debug" or "warn" to a Level. Unknown names yield INFO.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l *Logger) log(level Level, message string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	file, line := "???", 0
	if _, f, ln, ok := runtime.Caller(2); ok {
		file, line = filepath.Base(f), ln
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s:%d - %s",
		levelName(level),
		l.now().Format("2006-01-02 15:04:05.000"),
		file, line, message)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	b.WriteByte('\n')

	if l.file != nil {
		l.file.WriteString(b.String())
	}
	io.WriteString(l.out, b.String())
}

func levelName(level Level) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l *Logger) Debug(message string, fields Fields) { l.log(DEBUG, message, fields) }
func (l *Logger) Info(message string, fields Fields)  { l.log(INFO, message, fields) }
func (l *Logger) Warn(message string, fields Fields)  { l.log(WARNING, message, fields) }
func (l *Logger) Error(message string, fields Fields) { l.log(ERROR, message, fields) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARNING, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...), nil)
}
