package service

import (
	"context"
	"sync"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/infra/resilience"
	"github.com/haulhire/leadpool-engine-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var cleanupTracer = otel.Tracer("service/cleanup")

// CleanupService purges malformed, test and duplicate records from the
// unowned pool. Locked and distributed leads are never touched, so
// cleanup cannot disrupt an in-flight allocation.
type CleanupService struct {
	leads          port.LeadStore
	gate           port.ControlGate
	cache          port.Cache[*domain.BadLeadsReport]
	metrics        *observability.Metrics
	logger         *zap.Logger
	bulkhead       *resilience.Bulkhead
	scanLimit      int
	minPhoneDigits int
}

// NewCleanupService creates the cleanup engine. maxConcurrency bounds
// parallel deletes against the store during a pass.
func NewCleanupService(
	leads port.LeadStore,
	gate port.ControlGate,
	cache port.Cache[*domain.BadLeadsReport],
	metrics *observability.Metrics,
	logger *zap.Logger,
	scanLimit int,
	minPhoneDigits int,
	maxConcurrency int,
) *CleanupService {
	return &CleanupService{
		leads:          leads,
		gate:           gate,
		cache:          cache,
		metrics:        metrics,
		logger:         logger,
		bulkhead:       resilience.NewBulkhead(maxConcurrency),
		scanLimit:      scanLimit,
		minPhoneDigits: minPhoneDigits,
	}
}

// CleanupBadLeads scans unowned pool leads against the quality rules
// and removes matches, counting removals per rule. Idempotent: removed
// leads are gone, so a repeat pass finds nothing. Maintenance mode is
// advisory only (cleanup is itself a remediation tool).
func (s *CleanupService) CleanupBadLeads(ctx context.Context) (*domain.CleanupResult, error) {
	ctx, span := cleanupTracer.Start(ctx, "CleanupService.CleanupBadLeads")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveRunDuration("cleanup", time.Since(start))
	}()

	if paused, err := s.gate.IsPaused(ctx); err == nil && !paused {
		s.logger.Warn("cleanup running without maintenance mode")
	}

	leads, err := s.leads.ListUnownedPoolLeads(ctx, s.scanLimit)
	if err != nil {
		return nil, err
	}

	result := &domain.CleanupResult{ByReason: make(map[string]int)}
	keepers := duplicatePhoneSet(leads)

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)

	for i := range leads {
		lead := leads[i]
		if lead.ID == "" {
			continue
		}
		reason := classifyLead(&lead, s.minPhoneDigits, keepers)
		if reason == "" {
			continue
		}

		g.Go(func() error {
			if err := s.bulkhead.Acquire(gCtx); err != nil {
				return err
			}
			defer s.bulkhead.Release()

			// The store delete is itself filtered on unowned status, so
			// a lead claimed between scan and delete survives.
			if err := s.leads.DeletePoolLead(gCtx, lead.ID); err != nil {
				// Isolated failure: log, keep purging the rest.
				s.logger.Warn("bad lead delete failed",
					zap.String("lead_id", lead.ID),
					zap.String("reason", reason),
					zap.Error(err),
				)
				s.metrics.IncrStoreError("pool_leads")
				return nil
			}

			mu.Lock()
			result.RemovedCount++
			result.ByReason[reason]++
			mu.Unlock()
			s.metrics.IncrLeadCleaned(reason)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The cached bad-leads report is stale after a purge.
	s.cache.Delete(badLeadsCacheKey)

	s.logger.Info("cleanup finished",
		zap.Int("scanned", len(leads)),
		zap.Int("removed", result.RemovedCount),
	)

	return result, nil
}
