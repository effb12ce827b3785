// pkg/logger/logger_test.go
package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("warn", false)
	l.SetOutput(&buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Fatalf("messages below WARN must be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "warn 3") {
		t.Fatalf("expected WARN line, got:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "error 4") {
		t.Fatalf("expected ERROR line, got:\n%s", out)
	}
}

func TestUnknownLevelLogsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("verbose", false)
	l.SetOutput(&buf)

	l.Debug("hidden?")
	if !strings.Contains(buf.String(), "hidden?") {
		t.Fatalf("unknown level must not filter, got %q", buf.String())
	}
}

func TestDebugModeColors(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("debug", true)
	l.SetOutput(&buf)

	l.Error("boom")
	if !strings.Contains(buf.String(), "\033[31m") {
		t.Fatalf("expected red color code in debug mode, got %q", buf.String())
	}
}

func TestGlobalHelpersUseInstalledLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("debug", false)
	l.SetOutput(&buf)

	prev := current()
	SetGlobal(l)
	defer SetGlobal(prev)

	Info("hello %s", "world")
	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("global Info did not reach logger: %q", buf.String())
	}
}
