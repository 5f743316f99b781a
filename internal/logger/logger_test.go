package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "cli"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env, "")
			if err != nil {
				t.Fatalf("NewLogger(%q): %v", env, err)
			}
			if l == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewLogger_Errors(t *testing.T) {
	if _, err := NewLogger("staging", ""); err == nil {
		t.Error("expected error for unknown env")
	}
	if _, err := NewLogger("local", "verbose"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("cli", "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level enabled")
	}
}

func TestNewLogger_CLIDefaultsToWarn(t *testing.T) {
	l, err := NewLogger("cli", "")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("cli logger must drop info")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("cli logger must keep warnings")
	}
}

func TestFromContextOr(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	def := zap.New(core).Named("default")

	FromContextOr(context.Background(), def).Info("fallback")
	if logs.Len() != 1 || logs.All()[0].LoggerName != "default" {
		t.Fatalf("expected fallback logger to be used, got %v", logs.All())
	}

	ctx := ContextWithLogger(context.Background(), zap.New(core).Named("request"))
	FromContextOr(ctx, def).Info("scoped")
	if got := logs.All()[1].LoggerName; got != "request" {
		t.Errorf("expected request logger, got %q", got)
	}

	if FromContextOr(context.Background(), nil) == nil {
		t.Error("FromContextOr must never return nil")
	}
}
