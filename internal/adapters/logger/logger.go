package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Format selects the output formatter.
type Format string

const (
	FormatPrefixed Format = "prefixed"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// NewFormatter returns the logrus formatter for f. Unknown formats fall back to prefixed.
func NewFormatter(f Format) logrus.Formatter {
	switch Format(strings.ToLower(string(f))) {
	case FormatText:
		return &logrus.TextFormatter{FullTimestamp: true}
	case FormatJSON:
		return &logrus.JSONFormatter{}
	}
	return &prefixed.TextFormatter{FullTimestamp: true}
}

// ParseLevel converts a string level to a logrus level, defaulting to info.
func ParseLevel(levelStr string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(levelStr))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Logger implements the ports.Logger interface on top of logrus.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger writing to stderr.
func New(level logrus.Level, format Format) *Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level logrus.Level, format Format) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(NewFormatter(format))
	return &Logger{entry: logrus.NewEntry(l)}
}

// WithPrefix returns a logger whose entries carry the given prefix field.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{entry: l.entry.WithField("prefix", prefix)}
}

func (l *Logger) log(ctx context.Context, level logrus.Level, msg string, err error, fields ...map[string]interface{}) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}

	entry := l.entry.WithContext(ctx)
	if err != nil {
		entry = entry.WithError(err)
	}
	for _, f := range fields {
		if f != nil {
			entry = entry.WithFields(logrus.Fields(f))
		}
	}
	entry.Log(level, msg)
}

// Debug logs a message at Debug level.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, logrus.DebugLevel, msg, nil, fields...)
}

// Info logs a message at Info level.
func (l *Logger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, logrus.InfoLevel, msg, nil, fields...)
}

// Warn logs a message at Warning level.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, logrus.WarnLevel, msg, nil, fields...)
}

// Error logs an error message at Error level.
func (l *Logger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.log(ctx, logrus.ErrorLevel, msg, err, fields...)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithWriter(io.Discard, logrus.PanicLevel, FormatText)
}
