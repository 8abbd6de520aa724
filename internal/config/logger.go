package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the standard logrus logger from LOG_LEVEL and
// LOG_FORMAT and returns it, so package-level logrus calls share the same
// settings as injected loggers.
func SetupLogger(c Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	logger := logrus.StandardLogger()
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
