package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)
	defer SetLevel(GetLevel())

	logger := New("test")

	SetLevel(Warning)
	logger.Info("hidden")
	logger.Warning("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info message to be filtered out; got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "[test]") {
		t.Fatalf("expected warning message tagged with module name; got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("value %d", 42)
	if !strings.Contains(buf.String(), "value 42") {
		t.Fatalf("expected debug message; got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	specs := []struct {
		in  string
		exp Level
		ok  bool
	}{
		{"debug", Debug, true},
		{"INFO", Info, true},
		{"warn", Warning, true},
		{"error", Error, true},
		{"verbose", Notice, false},
	}

	for _, spec := range specs {
		lvl, ok := ParseLevel(spec.in)
		if lvl != spec.exp || ok != spec.ok {
			t.Fatalf("ParseLevel(%q): expected (%d, %t); got (%d, %t)", spec.in, spec.exp, spec.ok, lvl, ok)
		}
	}
}
