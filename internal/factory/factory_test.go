package factory

import (
	"io"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mikey/intake-pipeline/internal/adapters/intake"
	"github.com/mikey/intake-pipeline/internal/config"
)

func TestCacheFactoryTypes(t *testing.T) {
	logger := zaptest.NewLogger(t)

	v := config.NewEmptyViper()
	repo, err := NewCacheFactory(config.NewFromViper(v), logger).CreateCacheRepository()
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	repo.Stop()

	v = config.NewEmptyViper()
	v.Set("cache.type", "sqlite")
	v.Set("cache.sqlite_path", filepath.Join(t.TempDir(), "nested", "cache.db"))
	repo, err = NewCacheFactory(config.NewFromViper(v), logger).CreateCacheRepository()
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	repo.Stop()

	v = config.NewEmptyViper()
	v.Set("cache.type", "redis")
	if _, err := NewCacheFactory(config.NewFromViper(v), logger).CreateCacheRepository(); err == nil {
		t.Fatalf("expected error for unsupported cache type")
	}
}

func TestCacheFactoryTTLHours(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("cache.ttl", "6h")
	hours, err := NewCacheFactory(config.NewFromViper(v), zaptest.NewLogger(t)).GetTTLHours()
	if err != nil || hours != 6 {
		t.Fatalf("expected 6 hours, got %d, %v", hours, err)
	}
}

func TestRecordFactoryNone(t *testing.T) {
	store, err := NewRecordFactory(config.NewFromViper(config.NewEmptyViper()), zaptest.NewLogger(t)).CreateRecordStore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store != nil {
		t.Fatalf("expected no store for type none")
	}
}

func TestRecordFactorySQLite(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("records.type", "sqlite")
	v.Set("records.sqlite_path", filepath.Join(t.TempDir(), "records.db"))
	store, err := NewRecordFactory(config.NewFromViper(v), zaptest.NewLogger(t)).CreateRecordStore()
	if err != nil || store == nil {
		t.Fatalf("expected sqlite store, got %v, %v", store, err)
	}
	if closer, ok := store.(io.Closer); ok {
		_ = closer.Close()
	}
}

func TestIntakeFactoryTypes(t *testing.T) {
	logger := zaptest.NewLogger(t)

	v := config.NewEmptyViper()
	l, err := NewIntakeFactory(config.NewFromViper(v), logger, nil, nil).CreateIntakeListener()
	if err != nil {
		t.Fatalf("smtp: %v", err)
	}
	if _, ok := l.(*intake.SMTPIntake); !ok {
		t.Fatalf("expected SMTP intake, got %T", l)
	}

	v.Set("intake.type", "cli")
	l, err = NewIntakeFactory(config.NewFromViper(v), logger, nil, nil).CreateIntakeListener()
	if err != nil {
		t.Fatalf("cli: %v", err)
	}
	if _, ok := l.(*intake.CLIIntake); !ok {
		t.Fatalf("expected CLI intake, got %T", l)
	}

	v.Set("intake.type", "ftp")
	if _, err := NewIntakeFactory(config.NewFromViper(v), logger, nil, nil).CreateIntakeListener(); err == nil {
		t.Fatalf("expected error for unsupported intake type")
	}
}
