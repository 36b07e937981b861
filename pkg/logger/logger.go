// pkg/logger/logger.go
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var base = newBase(os.Stdout)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Logger is a wrapper around a logrus entry tagged with the component name.
type Logger struct {
	*logrus.Entry
}

// New creates a logger for the named component writing to stdout.
func New(component string) *Logger {
	return &Logger{Entry: base.WithField("component", component)}
}

// NewWithWriter creates a logger with its own output, used by tests and by
// callers that need to capture progress lines.
func NewWithWriter(w io.Writer, component string) *Logger {
	return &Logger{Entry: newBase(w).WithField("component", component)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "discard")
}

// SetLevel changes the level of every logger created by New.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base.SetLevel(lvl)
	return nil
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}
