package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "production", "PROD", ""} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
		log.Debug("debug line")
	}
}

func TestProductionSkipsDebug(t *testing.T) {
	log, err := New("prod")
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("production logger should not enable debug")
	}
	dev, _ := New("dev")
	if !dev.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("development logger should enable debug")
	}
}
