package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/di"
	"github.com/mikey/intake-pipeline/internal/ports"
	"github.com/mikey/intake-pipeline/internal/sweeper"
)

func main() {
	flags := di.ParseFlags()
	if flags.InputFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: intake-cli -file <path> [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	listener ports.IntakeListener,
	service *core.IntakeService,
	sw *sweeper.Sweeper,
	cacheRepo ports.CacheRepository,
	recordStore core.RecordStore,
) error {
	defer logger.Sync()
	defer di.Close(logger, cacheRepo, recordStore)

	ctx := context.Background()

	if flags.Sweep {
		removed := sw.RunOnce(ctx)
		fmt.Printf("Removed %d expired cache entries\n", removed)
	}

	res, err := listener.ProcessFile(ctx, core.IngestRequest{
		Key:      flags.Key,
		FilePath: flags.InputFile,
		Kind:     core.InputKind(flags.Kind),
	})
	if err != nil {
		return err
	}

	if flags.Save {
		if err := service.Save(ctx, res.Key, nil); err != nil {
			if errors.Is(err, core.ErrNoRecordStore) {
				return fmt.Errorf("cannot save: configure records.type in a config file")
			}
			return err
		}
		fmt.Printf("Saved record %s\n", res.Key)
	}
	return nil
}
