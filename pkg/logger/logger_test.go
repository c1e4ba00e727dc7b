package logger

import (
	"context"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	l := Get()
	if l == nil {
		t.Fatal("Get returned nil after Init")
	}

	ctx := context.Background()
	l.Info(ctx, "info line", String("key", "value"), Int("n", 1))
	l.Named("component").Warn(ctx, "named line", Any("v", struct{}{}))
}

func TestGetWithoutInit(t *testing.T) {
	mu.Lock()
	global = nil
	mu.Unlock()

	if Get() == nil {
		t.Fatal("Get should lazily initialize a default logger")
	}
}

func TestSetLevelString(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", level, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("SetLevelString should reject unknown levels")
	}
}
