// internal/logger/logger.go
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger used across the service.
func Init(level string, production bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stdout)

	if production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return nil
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}

// NewSublogger returns an entry tagged with the component name.
func NewSublogger(tag string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"module": "rental." + tag})
}
