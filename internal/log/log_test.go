package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)
	t.Cleanup(func() {
		SetLevel(LevelInfo)
		SetOutput(os.Stderr)
	})

	Info("hidden")
	Warn("shown", "pin", "GPF0(2)")
	Error("failed", errors.New("busy"), "label", "tl2796_rdx")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at WARN: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown pin=GPF0(2)") {
		t.Errorf("warn line missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=busy label=tl2796_rdx") {
		t.Errorf("error line missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
