package logger

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", ...) to a Level.
// Unknown names fall back to LevelInfo.
func ParseLevel(name string) Level {
	switch name {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	case "silent", "SILENT", "off":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Logger provides structured logging with configurable levels
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	SetLevel(level Level)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value any
}

// F is a convenience function for creating fields
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// charmLogger implements Logger on top of charmbracelet/log
type charmLogger struct {
	mu     *sync.Mutex
	level  *Level
	out    *log.Logger
	fields []Field
}

// NewLogger creates a new logger with the specified level and output
func NewLogger(level Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}

	l := &charmLogger{
		mu:     &sync.Mutex{},
		level:  new(Level),
		out:    log.NewWithOptions(out, log.Options{ReportTimestamp: true, TimeFormat: "2006-01-02 15:04:05"}),
		fields: make([]Field, 0),
	}
	l.SetLevel(level)
	return l
}

// NewDefaultLogger creates a logger with Info level writing to stderr
func NewDefaultLogger() Logger {
	return NewLogger(LevelInfo, os.Stderr)
}

// NewSilentLogger creates a logger that outputs nothing
func NewSilentLogger() Logger {
	return NewLogger(LevelSilent, io.Discard)
}

// SetLevel sets the minimum logging level. Loggers derived with
// WithFields share the level of their parent.
func (l *charmLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	*l.level = level
	switch level {
	case LevelDebug:
		l.out.SetLevel(log.DebugLevel)
	case LevelInfo:
		l.out.SetLevel(log.InfoLevel)
	case LevelWarn:
		l.out.SetLevel(log.WarnLevel)
	default:
		l.out.SetLevel(log.ErrorLevel)
	}
}

// WithFields returns a new logger with additional fields
func (l *charmLogger) WithFields(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &charmLogger{
		mu:     l.mu,
		level:  l.level,
		out:    l.out,
		fields: newFields,
	}
}

// Debug logs a debug message
func (l *charmLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message
func (l *charmLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (l *charmLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message
func (l *charmLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

func (l *charmLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < *l.level {
		return
	}

	keyvals := make([]any, 0, 2*(len(l.fields)+len(fields)))
	for _, f := range l.fields {
		keyvals = append(keyvals, f.Key, f.Value)
	}
	for _, f := range fields {
		keyvals = append(keyvals, f.Key, f.Value)
	}

	switch level {
	case LevelDebug:
		l.out.Debug(msg, keyvals...)
	case LevelInfo:
		l.out.Info(msg, keyvals...)
	case LevelWarn:
		l.out.Warn(msg, keyvals...)
	default:
		l.out.Error(msg, keyvals...)
	}
}

// Global default logger
var defaultLogger = NewDefaultLogger()

// SetDefault sets the global default logger
func SetDefault(l Logger) {
	defaultLogger = l
}

// Default returns the global default logger
func Default() Logger {
	return defaultLogger
}

// Convenience functions using the default logger
func Debug(msg string, fields ...Field) {
	defaultLogger.Debug(msg, fields...)
}

func Info(msg string, fields ...Field) {
	defaultLogger.Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	defaultLogger.Warn(msg, fields...)
}

func Error(msg string, fields ...Field) {
	defaultLogger.Error(msg, fields...)
}
