package ros

import (
	"sync"

	modular "github.com/edwinhayes/logrus-modular"
	"github.com/sirupsen/logrus"
)

// Logger is the logging surface handed to callbacks and helpers.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

var (
	defaultLoggerOnce sync.Once
	defaultLogger     Logger
)

// DefaultLogger returns a module logger derived from logrus' standard
// logger. Level and formatter follow logrus.StandardLogger().
func DefaultLogger() Logger {
	defaultLoggerOnce.Do(func() {
		root := modular.NewRootLogger(logrus.StandardLogger())
		defaultLogger = root.GetModuleLogger()
	})
	return defaultLogger
}

// SetLogLevel parses level ("debug", "info", ...) and applies it to the
// standard logger.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}
