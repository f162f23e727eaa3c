// Package log provides the structured logger used across the service,
// backed by logrus.
package log

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const LoggerKeyComponentName = "component"

// Field is a single structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: logrus.ErrorKey, Value: err}
}

// Logger wraps a logrus entry so call sites stay decoupled from the backend.
type Logger struct {
	entry *logrus.Entry
}

var (
	rootLogger *Logger
	initOnce   sync.Once
)

// Init configures the root logger. Called once from main; subsequent calls
// are no-ops.
func Init(level, format string) {
	initOnce.Do(func() {
		base := logrus.New()
		base.SetOutput(os.Stdout)
		if format == "text" {
			base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			base.SetFormatter(&logrus.JSONFormatter{})
		}
		if parsed, err := logrus.ParseLevel(level); err == nil {
			base.SetLevel(parsed)
		} else {
			base.SetLevel(logrus.InfoLevel)
		}
		rootLogger = &Logger{entry: logrus.NewEntry(base)}
	})
}

// GetLogger returns the root logger, initializing it with defaults if main
// has not configured it yet (tests rely on this).
func GetLogger() *Logger {
	if rootLogger == nil {
		Init("info", "json")
	}
	return rootLogger
}

// With returns a logger with the given fields attached to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{entry: l.entry.WithFields(toLogrusFields(fields))}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Fatal(msg)
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
