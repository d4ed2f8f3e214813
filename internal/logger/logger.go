package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	appLogger *logrus.Logger
	once      sync.Once
)

// Get returns the shared application logger.
// Text output in development, JSON in production; level from LOG_LEVEL.
func Get() *logrus.Logger {
	once.Do(func() {
		appLogger = logrus.New()
		appLogger.SetOutput(os.Stdout)

		env := os.Getenv("APP_ENV")
		format := strings.ToLower(os.Getenv("LOG_FORMAT"))
		if format == "" {
			if env == "production" {
				format = "json"
			} else {
				format = "text"
			}
		}
		if format == "json" {
			appLogger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
		} else {
			appLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}

		level := strings.ToLower(os.Getenv("LOG_LEVEL"))
		if level == "" {
			if env == "production" {
				level = "info"
			} else {
				level = "debug"
			}
		}
		if parsed, err := logrus.ParseLevel(level); err == nil {
			appLogger.SetLevel(parsed)
		} else {
			appLogger.SetLevel(logrus.InfoLevel)
		}
	})
	return appLogger
}
