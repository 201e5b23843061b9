package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger 带组件名的日志封装
type Logger struct {
	entry *logrus.Entry
}

func NewLogger(name string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	if os.Getenv("DEBUG") == "true" {
		l.SetLevel(logrus.DebugLevel)
	}

	return &Logger{entry: l.WithField("component", name)}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}
