// Package logging provides structured logging with logrus.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide configured logrus.Logger.
// Defaults to the standard logger until Configure is called.
var Logger = logrus.StandardLogger()

// Config controls the behavior of Configure.
type Config struct {
	Level  string // trace|debug|info|warn|error|fatal|panic
	Format string // "json" or "text"
}

// Configure rebuilds Logger from Config, falling back to sane defaults on a
// bad level rather than failing the whole process over a logging knob.
func Configure(cfg Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	Logger = l
	return l
}
