package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/mikey/intake-pipeline/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"loud":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewConfigFormat(t *testing.T) {
	if enc := NewConfig(zapcore.InfoLevel, true).Encoding; enc != "json" {
		t.Fatalf("expected json encoding, got %s", enc)
	}
	if enc := NewConfig(zapcore.DebugLevel, false).Encoding; enc != "console" {
		t.Fatalf("expected console encoding, got %s", enc)
	}
}

func TestInitLoggerFromConfig(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("logging.level", "debug")
	logger, err := InitLogger(config.NewFromViper(v))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug level not applied")
	}
}
