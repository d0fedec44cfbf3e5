package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logrus logger on stdout: text in development, JSON elsewhere.
// level overrides the env default (debug in development, info otherwise) when it parses.
func NewLogger(appName, env, level string) *logrus.Logger {
	return newLogger(os.Stdout, appName, env, level)
}

func newLogger(out io.Writer, appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	var badLevel error
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			badLevel = err
		} else {
			logger.SetLevel(lvl)
		}
	}

	entry := logger.WithFields(logrus.Fields{"app": appName, "env": env, "log_level": logger.GetLevel().String()})
	if badLevel != nil {
		entry.WithError(badLevel).Warn("ignoring LOG_LEVEL")
	}
	entry.Info("logger initialized")
	return logger
}
