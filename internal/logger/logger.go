// Package logger builds the structured logrus loggers used across pixelscale.
package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// TimestampFormat is used by both formatters.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// New creates a logger writing to w at the given level and format.
//
// level is any name logrus.ParseLevel accepts ("debug", "info", "warn", ...).
// format is FormatText or FormatJSON; an empty format means text.
func New(level, format string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: TimestampFormat,
		})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
		})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return l, nil
}

// Discard returns a logger that drops everything. Useful as a default for
// components constructed without a logger, and in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}
