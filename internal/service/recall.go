package service

import (
	"context"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var recallTracer = otel.Tracer("service/recall")

// RecallService reverses distribution: every company-owned copy of a
// platform-pool lead is deleted and the corresponding pool leads return
// to the unowned state. Also provides the force-unlock crash-recovery
// tool for leads stuck in the locked state.
type RecallService struct {
	leads   port.LeadStore
	gate    port.ControlGate
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewRecallService creates the recall engine.
func NewRecallService(leads port.LeadStore, gate port.ControlGate, metrics *observability.Metrics, logger *zap.Logger) *RecallService {
	return &RecallService{leads: leads, gate: gate, metrics: metrics, logger: logger}
}

// RecallAll deletes all company copies of platform-pool leads and
// unlocks the pool rows. Idempotent: both mutations are filtered
// server-side, so a second call finds nothing and reports zeros.
// Destructive; the caller boundary requires explicit confirmation.
//
// Maintenance mode is advisory here: operators are expected to pause
// distribution first, but recall is itself a remediation tool and must
// stay usable, so it only warns.
func (s *RecallService) RecallAll(ctx context.Context) (*domain.RecallResult, error) {
	ctx, span := recallTracer.Start(ctx, "RecallService.RecallAll")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveRunDuration("recall", time.Since(start))
	}()

	if paused, err := s.gate.IsPaused(ctx); err == nil && !paused {
		s.logger.Warn("recall running without maintenance mode, concurrent distribution may re-assign leads")
	}

	deleted, err := s.leads.DeletePlatformCompanyLeads(ctx)
	if err != nil {
		s.metrics.IncrStoreError("company_leads")
		return nil, err
	}

	unlocked, err := s.leads.UnlockDistributedPoolLeads(ctx)
	if err != nil {
		// Copies are already gone; re-running recall finishes the
		// unlock without re-deleting anything.
		s.metrics.IncrStoreError("pool_leads")
		s.logger.Error("recall unlocked nothing after deleting copies, re-run to finish",
			zap.Int("deleted", deleted),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.AddLeadsRecalled(deleted)
	s.logger.Info("recall finished",
		zap.Int("deleted", deleted),
		zap.Int("unlocked", unlocked),
	)

	return &domain.RecallResult{DeletedCount: deleted, UnlockedCount: unlocked}, nil
}

// ForceUnlockPool clears any leads stuck in the locked state, e.g.
// after a crash between claim and commit. Safe to repeat.
func (s *RecallService) ForceUnlockPool(ctx context.Context) (*domain.UnlockResult, error) {
	ctx, span := recallTracer.Start(ctx, "RecallService.ForceUnlockPool")
	defer span.End()

	unlocked, err := s.leads.UnlockLockedLeads(ctx)
	if err != nil {
		s.metrics.IncrStoreError("pool_leads")
		return nil, err
	}

	s.metrics.AddLeadsUnlocked(unlocked)
	if unlocked > 0 {
		s.logger.Warn("cleared stuck locks", zap.Int("unlocked", unlocked))
	}

	return &domain.UnlockResult{UnlockedCount: unlocked}, nil
}
