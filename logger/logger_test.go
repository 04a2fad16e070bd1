package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.Debug("debug", "mode", mode)
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "test").Info("hello", "n", 1)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "test" {
		t.Fatalf("expected component field, got %v", fields)
	}
	if fields["n"] != int64(1) {
		t.Fatalf("expected n=1, got %v (%T)", fields["n"], fields["n"])
	}
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Error("ignored", "k", "v")
	l.Sync()
}
