// Package sweeper removes expired cache entries on a cron schedule.
package sweeper

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mikey/intake-pipeline/internal/core"
)

// DefaultSchedule runs a sweep every hour
const DefaultSchedule = "@every 1h"

// Sweeper periodically calls SweepExpired on an ephemeral cache
type Sweeper struct {
	cache    *core.EphemeralCache
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
}

// New creates a sweeper. schedule is a five-field cron expression or a
// descriptor such as "@hourly" or "@every 30m"; empty means DefaultSchedule.
func New(cache *core.EphemeralCache, schedule string, logger *zap.Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Sweeper{
		cache:    cache,
		schedule: schedule,
		cron:     c,
		logger:   logger,
	}
	if _, err := c.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running sweeps in the background
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("Started cache sweeper", zap.String("schedule", s.schedule))
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("Stopped cache sweeper")
}

// RunOnce sweeps immediately and returns the number of entries removed
func (s *Sweeper) RunOnce(ctx context.Context) int {
	removed := s.cache.SweepExpired(ctx)
	s.logger.Info("Swept expired cache entries", zap.Int("removed", removed))
	return removed
}

// cronLogger routes cron's own messages through zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
