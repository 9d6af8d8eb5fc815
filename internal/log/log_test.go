package log

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFormatterPattern(t *testing.T) {
	f := &formatter{
		pattern: "%time [%level] %field: %msg\n",
		time:    "2006-01-02 15:04:05",
	}
	entry := &logrus.Entry{
		Time:    time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "connected to controller",
		Data:    logrus.Fields{"component": "rtde", "addr": "10.0.0.1:30004"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	got := string(out)
	want := "2026-08-24 10:30:00 [info] addr=10.0.0.1:30004,component=rtde: connected to controller\n"
	if got != want {
		t.Errorf("formatted = %q, want %q", got, want)
	}
}

func TestFormatterEmptyFields(t *testing.T) {
	f := &formatter{pattern: "%field %msg", time: time.RFC3339}
	out, err := f.Format(&logrus.Entry{Level: logrus.WarnLevel, Message: "x"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasPrefix(string(out), "- ") {
		t.Errorf("empty fields rendered as %q, want leading -", out)
	}
}

func TestBuildFieldsSorted(t *testing.T) {
	entry := &logrus.Entry{Data: logrus.Fields{"z": 1, "a": "two", "m": true}}
	if got := buildFields(entry); got != "a=two,m=true,z=1" {
		t.Errorf("buildFields = %q", got)
	}
}

func TestInitAndGetLogger(t *testing.T) {
	if GetLogger() == nil {
		t.Fatal("default logger is nil")
	}

	if err := Init(&Config{Level: "debug", Pattern: "%msg\n", Time: time.RFC3339}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !GetLogger().IsDebugEnabled() {
		t.Error("debug level not applied")
	}

	if err := Init(nil); err != nil {
		t.Fatalf("Init(nil): %v", err)
	}
	if GetLogger().IsDebugEnabled() {
		t.Error("default level should be info")
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	if err := Init(&Config{Level: "shouting", Pattern: "%msg\n", Time: time.RFC3339}); err == nil {
		t.Error("bad level accepted")
	}
}

func TestWithFieldChaining(t *testing.T) {
	base := GetLogger()
	derived := base.WithField("component", "test").WithError(errors.New("boom"))
	if derived == nil {
		t.Fatal("derived logger is nil")
	}
	// Deriving must not mutate the base logger.
	if base == derived {
		t.Error("WithField returned the receiver")
	}
}
