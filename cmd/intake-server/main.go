package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/di"
	"github.com/mikey/intake-pipeline/internal/ports"
	"github.com/mikey/intake-pipeline/internal/sweeper"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	listener ports.IntakeListener,
	sw *sweeper.Sweeper,
	cacheRepo ports.CacheRepository,
	recordStore core.RecordStore,
) error {
	defer logger.Sync()

	// Start the intake listener
	if err := listener.Start(); err != nil {
		logger.Error("Failed to start intake listener", zap.Error(err))
		di.Close(logger, cacheRepo, recordStore)
		return err
	}

	// Start expiring cache entries
	sw.Start()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := listener.Stop(); err != nil {
		logger.Error("Failed to stop intake listener", zap.Error(err))
	}
	sw.Stop()

	di.Close(logger, cacheRepo, recordStore)

	logger.Info("Shutdown complete")
	return nil
}
