// internal/scheduler/sweeper.go
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/logger"
	"github.com/javajoker/rental-backend/internal/metrics"
)

// Expirer moves overdue contracts to expired and reports how many moved.
type Expirer interface {
	ExpireOverdueContracts(ctx context.Context) (int, error)
}

// Sweeper runs the expiration pass on a cron schedule. Ticks never overlap;
// a tick that fires while the previous one is still running is skipped.
// Stop cancels the running pass and waits for it to return.
type Sweeper struct {
	expirer Expirer
	config  config.ContractConfig
	cron    *cron.Cron
	log     *logrus.Entry

	mu       sync.Mutex
	stopped  bool
	inFlight sync.WaitGroup
	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewSweeper(expirer Expirer, cfg config.ContractConfig) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		expirer: expirer,
		config:  cfg,
		cron:    cron.New(),
		log:     logger.NewSublogger("sweeper"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers the schedule and begins ticking in the background.
func (s *Sweeper) Start() error {
	if err := s.cron.AddFunc(s.config.SweepSchedule, s.tick); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.config.SweepSchedule, err)
	}

	if s.config.SweepOnStart {
		go s.tick()
	}

	s.cron.Start()
	s.log.WithField("schedule", s.config.SweepSchedule).Info("Contract sweeper started")
	return nil
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		s.cron.Stop()

		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.cancel()
		s.inFlight.Wait()
		s.log.Info("Contract sweeper stopped")
	})
}

func (s *Sweeper) tick() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		s.log.Warn("Previous sweep still running, skipping tick")
		return
	}
	s.inFlight.Add(1)
	s.mu.Unlock()

	defer func() {
		s.running.Store(false)
		s.inFlight.Done()
	}()

	if _, err := s.RunOnce(s.ctx); err != nil {
		s.log.WithError(err).Error("Contract sweep failed")
	}
}

// RunOnce performs a single expiration pass.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	expired, err := s.expirer.ExpireOverdueContracts(ctx)
	metrics.SweeperRun(expired, err)
	if err != nil {
		return expired, err
	}

	s.log.WithFields(logrus.Fields{
		"expired":  expired,
		"duration": time.Since(start),
	}).Info("Contract sweep finished")
	return expired, nil
}
