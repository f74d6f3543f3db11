package scheduler

import (
	"context"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/service"

	"go.uber.org/zap"
)

// Scheduler triggers distribution runs on a fixed interval. It is the
// in-process fallback for deployments without an external scheduler;
// both paths converge on the same Distribute call, and the maintenance
// gate plus per-run quotas make overlapping triggers safe.
type Scheduler struct {
	distributor *service.DistributorService
	interval    time.Duration
	runTimeout  time.Duration
	logger      *zap.Logger
}

// New creates a distribution scheduler.
func New(distributor *service.DistributorService, interval, runTimeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		distributor: distributor,
		interval:    interval,
		runTimeout:  runTimeout,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled, firing a distribution run every
// interval. The first run waits a full interval so a restart loop
// cannot hammer the store.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("distribution scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("run_timeout", s.runTimeout),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("distribution scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	result, err := s.distributor.Distribute(runCtx)
	if err != nil {
		s.logger.Error("scheduled distribution failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled distribution finished",
		zap.String("run_id", result.RunID),
		zap.Bool("paused", result.Paused),
		zap.Int("moved_total", result.MovedTotal),
		zap.Int("conflicts", result.Conflicts),
	)
}
