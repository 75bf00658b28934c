// Package log provides the process-wide structured logger.
package log

import "sync"

// Logger is the logging surface the rest of the code depends on; the logrus
// adapter behind it is an implementation detail.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	once   sync.Once
	logger Logger = newLogrusAdapter(defaultConfig())
)

// GetLogger returns the process logger. Before Init it logs to stderr at
// info level.
func GetLogger() Logger {
	return logger
}

// Init configures the process logger once; later calls are no-ops.
func Init(cfg *Config) {
	once.Do(func() {
		logger = newLogrusAdapter(cfg)
	})
}
