package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"DEBUG":   logrus.DebugLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"trace":   logrus.TraceLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		if got := GetLevel(in); got != want {
			t.Errorf("GetLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCombinedWriter(t *testing.T) {
	var a, b bytes.Buffer
	cw := NewCombinedWriter(&a, &b)
	n, err := cw.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if a.String() != "hello" || b.String() != "hello" {
		t.Errorf("writers got %q and %q", a.String(), b.String())
	}

	var c bytes.Buffer
	cw = NewCombinedWriter(failingWriter{}, &c)
	if _, err := cw.Write([]byte("x")); err == nil {
		t.Error("expected an error from the failing writer")
	}
	if c.String() != "x" {
		t.Error("healthy writer should still receive the write")
	}
}

func TestSetupFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	dir := t.TempDir()
	var console bytes.Buffer
	closer := Setup(SetupParams{
		LogFile:       filepath.Join(dir, "logs", "coach"),
		Console:       true,
		ConsoleWriter: &console,
		LogLevel:      "info",
	})
	logrus.Info("synced 3 workouts")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "logs", "coach.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "synced 3 workouts") {
		t.Errorf("log file missing entry: %q", data)
	}
	if !strings.Contains(console.String(), "synced 3 workouts") {
		t.Errorf("console missing entry: %q", console.String())
	}
}
