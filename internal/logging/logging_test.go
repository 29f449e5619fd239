package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"INFO":    zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for raw, want := range tests {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew(t *testing.T) {
	for _, opts := range []Options{{}, {Level: "debug", JSON: true}} {
		logger, err := New(opts)
		if err != nil {
			t.Fatalf("New(%+v): %v", opts, err)
		}
		if logger == nil {
			t.Fatalf("New(%+v) returned nil logger", opts)
		}
	}
	if _, err := New(Options{Level: "verbose"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	Nop().Infow("discarded", "key", "value")
}
