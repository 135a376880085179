package types

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNilLoggerIsSilent(t *testing.T) {
	var l Logger
	if l.Enabled(slog.LevelError) {
		t.Error("nil logger reports enabled")
	}
	if l.TraceEnabled() {
		t.Error("nil logger reports trace enabled")
	}
	// Must not panic.
	l.Log(slog.LevelInfo, "dropped")
	l.Debug("dropped")
	l.Trace("dropped")
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := Logger{L: slog.New(h)}

	if !l.Enabled(slog.LevelDebug) {
		t.Error("debug not enabled at debug level")
	}
	if l.TraceEnabled() {
		t.Error("trace enabled at debug level")
	}

	l.Debug("visible", slog.Int("n", 3))
	l.Trace("invisible")

	out := buf.String()
	if !strings.Contains(out, "visible") || !strings.Contains(out, "n=3") {
		t.Errorf("debug output missing: %q", out)
	}
	if strings.Contains(out, "invisible") {
		t.Errorf("trace leaked at debug level: %q", out)
	}
}

func TestTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace})
	l := Logger{L: slog.New(h)}

	if !l.TraceEnabled() {
		t.Fatal("trace not enabled at trace level")
	}
	l.Trace("token", slog.String("text", "{"))
	if !strings.Contains(buf.String(), "token") {
		t.Errorf("trace output missing: %q", buf.String())
	}
}
