package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Presets(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		l, err := NewLogger(env)
		if err != nil {
			t.Fatalf("NewLogger(%q) error = %v", env, err)
		}
		if l == nil {
			t.Fatalf("NewLogger(%q) returned nil logger", env)
		}
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "debug")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level override not applied")
	}

	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for bad level")
	}
}

func TestFromContext(t *testing.T) {
	base := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), base)
	if FromContext(ctx) != base {
		t.Error("stored logger not returned")
	}
	if FromContext(context.Background()) == nil {
		t.Error("missing logger must yield a usable no-op logger")
	}
}
