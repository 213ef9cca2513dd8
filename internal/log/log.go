// Package log is a thin wrapper around logrus giving the rest of the
// module a single place to configure output format and level.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stderr)
	std.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetVerbose raises the log level to debug.
func SetVerbose(verbose bool) {
	if verbose {
		std.SetLevel(logrus.DebugLevel)
		return
	}
	std.SetLevel(logrus.InfoLevel)
}

// WithFile tags log lines with a "file" field naming the config or
// script path they relate to; the text formatter prints it as a
// key=value pair after the timestamp, level and message.
func WithFile(path string) *logrus.Entry {
	return std.WithField("file", path)
}

func Debugf(format string, args ...any) { std.Debugf(format, args...) }
func Infof(format string, args ...any)  { std.Infof(format, args...) }
func Warnf(format string, args ...any)  { std.Warnf(format, args...) }
func Errorf(format string, args ...any) { std.Errorf(format, args...) }

func WithField(key string, value any) *logrus.Entry { return std.WithField(key, value) }
func WithError(err error) *logrus.Entry              { return std.WithError(err) }
