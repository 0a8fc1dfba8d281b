package di

import (
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/allowlist"
	"github.com/mikey/intake-pipeline/internal/classifier"
	"github.com/mikey/intake-pipeline/internal/config"
	"github.com/mikey/intake-pipeline/internal/core"
	"github.com/mikey/intake-pipeline/internal/extraction"
	"github.com/mikey/intake-pipeline/internal/factory"
	"github.com/mikey/intake-pipeline/internal/logging"
	"github.com/mikey/intake-pipeline/internal/ports"
	"github.com/mikey/intake-pipeline/internal/rules"
	"github.com/mikey/intake-pipeline/internal/sweeper"
	"github.com/mikey/intake-pipeline/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the server
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideServices(container); err != nil {
		return nil, err
	}
	return container, nil
}

// provideServices registers everything that depends only on *config.Config
// and *zap.Logger
func provideServices(container *dig.Container) error {
	// Register factories
	for _, ctor := range []interface{}{
		factory.NewCacheFactory,
		factory.NewRecordFactory,
		factory.NewPipelineFactory,
		factory.NewIntakeFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}

	// Register text processor and rules
	if err := container.Provide(func(f *factory.PipelineFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) (rules.Rules, error) {
		return f.CreateRules()
	}); err != nil {
		return err
	}

	// Register classifier, extraction pipeline and allow-list
	if err := container.Provide(func(f *factory.PipelineFactory, r rules.Rules, text *utils.TextProcessor) *classifier.Classifier {
		return f.CreateClassifier(r, text)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.PipelineFactory, r rules.Rules, text *utils.TextProcessor) *extraction.Pipeline {
		return f.CreatePipeline(r, text)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *allowlist.Checker {
		return f.CreateAllowList()
	}); err != nil {
		return err
	}

	// Register cache repository and the cache over it
	if err := container.Provide(func(f *factory.CacheFactory) (ports.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(repo ports.CacheRepository, logger *zap.Logger) *core.EphemeralCache {
		return core.NewEphemeralCache(repo, logger.Named("cache"))
	}); err != nil {
		return err
	}

	// Register durable record store, nil when disabled
	if err := container.Provide(func(f *factory.RecordFactory) (core.RecordStore, error) {
		return f.CreateRecordStore()
	}); err != nil {
		return err
	}

	// Register sweeper
	if err := container.Provide(func(c *core.EphemeralCache, f *factory.CacheFactory, logger *zap.Logger) (*sweeper.Sweeper, error) {
		return sweeper.New(c, f.GetSweepSchedule(), logger.Named("sweeper"))
	}); err != nil {
		return err
	}

	// Register intake service
	if err := container.Provide(func(
		cls *classifier.Classifier,
		pipeline *extraction.Pipeline,
		cache *core.EphemeralCache,
		store core.RecordStore,
		allow *allowlist.Checker,
		f *factory.CacheFactory,
		logger *zap.Logger,
	) (*core.IntakeService, error) {
		ttlHours, err := f.GetTTLHours()
		if err != nil {
			return nil, err
		}
		return core.NewIntakeService(cls, pipeline, cache, store, allow, ttlHours, logger), nil
	}); err != nil {
		return err
	}

	// Register intake listener
	if err := container.Provide(func(f *factory.IntakeFactory) (ports.IntakeListener, error) {
		return f.CreateIntakeListener()
	}); err != nil {
		return err
	}

	return nil
}

// Close releases the cache and record store connections
func Close(logger *zap.Logger, repo ports.CacheRepository, store core.RecordStore) {
	repo.Stop()
	if closer, ok := store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close record store", zap.Error(err))
		}
	}
}
