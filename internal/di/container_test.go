package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/ports"
	"github.com/mikey/intake-pipeline/internal/sweeper"
)

func TestBuildCLIContainerResolvesServices(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "cache:\n  type: sqlite\n  sqlite_path: " + filepath.Join(dir, "cache.db") +
		"\nrecords:\n  type: sqlite\n  sqlite_path: " + filepath.Join(dir, "records.db") + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	input := filepath.Join(dir, "invoice.txt")
	if err := os.WriteFile(input, []byte("Invoice - amount due $450.00"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	container, err := BuildCLIContainer(&CLIFlags{ConfigFile: cfgPath, Kind: "file"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	err = container.Invoke(func(
		logger *zap.Logger,
		listener ports.IntakeListener,
		service *core.IntakeService,
		sw *sweeper.Sweeper,
		repo ports.CacheRepository,
		store core.RecordStore,
	) error {
		defer Close(logger, repo, store)

		ctx := context.Background()
		res, err := service.Ingest(ctx, core.IngestRequest{Key: "k1", FilePath: input, Kind: core.KindFile})
		if err != nil {
			return err
		}
		if err := service.Save(ctx, res.Key, nil); err != nil {
			return err
		}
		if got := sw.RunOnce(ctx); got != 0 {
			t.Errorf("nothing should expire, removed %d", got)
		}
		history, err := service.History(ctx, 10)
		if err != nil {
			return err
		}
		if len(history) != 1 || history[0].ID != "k1" {
			t.Errorf("unexpected history %+v", history)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
}
