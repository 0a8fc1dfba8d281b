package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/intake-pipeline/internal/core"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	cache, err := cfg.GetCache()
	if err != nil {
		t.Fatalf("cache config: %v", err)
	}
	if cache.Type != "memory" || cache.TTL != 24*time.Hour || cache.SweepSchedule != "@every 1h" {
		t.Fatalf("unexpected cache defaults %+v", cache)
	}
	if cache.TTLHours() != core.DefaultTTLHours {
		t.Fatalf("expected %d hours, got %d", core.DefaultTTLHours, cache.TTLHours())
	}

	if rec := cfg.GetRecords(); rec.Type != "none" {
		t.Fatalf("unexpected records default %+v", rec)
	}

	intake := cfg.GetIntake()
	if intake.Type != "smtp" || intake.MaxMessageBytes != 10*1024*1024 || len(intake.AllowedExtensions) != 4 {
		t.Fatalf("unexpected intake defaults %+v", intake)
	}

	r, err := cfg.GetRules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if len(r.Intents) != 6 || r.DefaultDocument != "Document" {
		t.Fatalf("expected built-in rules, got %+v", r)
	}
}

func TestTTLHours(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int
	}{
		{0, 0},
		{-time.Hour, 0},
		{time.Hour, 1},
		{90 * time.Minute, 2},
		{48 * time.Hour, 48},
	}
	for _, tt := range tests {
		if got := (CacheConfig{TTL: tt.ttl}).TTLHours(); got != tt.want {
			t.Errorf("TTLHours(%v) = %d, want %d", tt.ttl, got, tt.want)
		}
	}
}

func TestInvalidTTL(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "forever")
	if _, err := NewFromViper(v).GetCache(); err == nil {
		t.Fatalf("expected error for invalid ttl")
	}
}

func TestNewFromFileOverridesRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
cache:
  type: sqlite
  ttl: 2h
rules:
  high_urgency: ["now"]
  formats:
    pdf: PDF
    md: Email
  intents:
    - intent: Complaint
      keywords: ["broken"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cache, _ := cfg.GetCache()
	if cache.Type != "sqlite" || cache.TTLHours() != 2 {
		t.Fatalf("unexpected cache config %+v", cache)
	}
	if cfg.GetString("intake.type") != "smtp" {
		t.Fatalf("defaults should survive a partial file")
	}

	r, err := cfg.GetRules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if len(r.HighUrgency) != 1 || r.HighUrgency[0] != "now" {
		t.Fatalf("high urgency not overridden: %v", r.HighUrgency)
	}
	if len(r.Intents) != 1 || r.Intents[0].Intent != core.IntentComplaint {
		t.Fatalf("intents not overridden: %+v", r.Intents)
	}
	if len(r.MediumUrgency) == 0 {
		t.Fatalf("untouched tables should keep their defaults")
	}
	if r.FormatFor(".md") != core.FormatEmail || r.FormatFor(".pdf") != core.FormatPDF {
		t.Fatalf("formats not overridden: %v", r.Formats)
	}
}

func TestNewFromFileMissing(t *testing.T) {
	if _, err := NewFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
