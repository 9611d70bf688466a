package logger

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestWithComponent(t *testing.T) {
	log := Logger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	// Ensure environment variables do not override the provided level
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("invalid", "json", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestWithEnv(t *testing.T) {
	os.Setenv("FOO", "bar")
	log := Logger()
	entry := log.WithEnv("FOO")
	if v, ok := entry.Entry.Data["FOO"]; !ok || v != "bar" {
		t.Fatalf("env field not set: %v", entry.Entry.Data)
	}
}

func TestLevelName(t *testing.T) {
	cases := map[int]string{1: "error", 2: "info", 3: "debug", 0: "info", 9: "info"}
	for n, want := range cases {
		if got := LevelName(n); got != want {
			t.Errorf("LevelName(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestSubsystemLevel(t *testing.T) {
	log := Logger()
	sub, err := log.Subsystem("dtc", "debug")
	if err != nil {
		t.Fatalf("subsystem: %v", err)
	}
	if sub.Logger.Level != logrus.DebugLevel {
		t.Fatalf("subsystem level = %v, want debug", sub.Logger.Level)
	}
	if _, err := log.Subsystem("dtc", "nope"); err == nil {
		t.Fatalf("expected error for invalid subsystem level")
	}
}
