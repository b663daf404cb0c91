package config

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. An unknown level falls back to info with a warning.
func NewLogger(level, format string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("invalid LOG_LEVEL %q, defaulting to info", level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
