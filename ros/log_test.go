package ros

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDefaultLogger(t *testing.T) {
	logger := DefaultLogger()
	if logger == nil {
		t.Fatal("no default logger")
	}
	logger.Debugf("default logger %s", "ready")
}

func TestSetLogLevel(t *testing.T) {
	previous := logrus.GetLevel()
	defer logrus.SetLevel(previous)

	if err := SetLogLevel("debug"); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Error(logrus.GetLevel())
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
