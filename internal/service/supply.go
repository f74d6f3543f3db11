// Package service provides the business logic layer (use cases):
// supply/demand analytics, lead distribution, recall, cleanup and the
// admin reporting facade.
package service

import (
	"context"
	"fmt"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var supplyTracer = otel.Tracer("service/supply")

const badLeadsCacheKey = "bad-leads-report"

// SupplyService computes pool health from current lead counts and
// tenant quotas. Pure reads, no side effects on lead ownership.
type SupplyService struct {
	leads          port.LeadStore
	companies      port.CompanyStore
	cache          port.Cache[*domain.BadLeadsReport]
	metrics        *observability.Metrics
	logger         *zap.Logger
	scanLimit      int
	minPhoneDigits int
}

// NewSupplyService creates the supply/demand analyzer.
func NewSupplyService(
	leads port.LeadStore,
	companies port.CompanyStore,
	cache port.Cache[*domain.BadLeadsReport],
	metrics *observability.Metrics,
	logger *zap.Logger,
	scanLimit int,
	minPhoneDigits int,
) *SupplyService {
	return &SupplyService{
		leads:          leads,
		companies:      companies,
		cache:          cache,
		metrics:        metrics,
		logger:         logger,
		scanLimit:      scanLimit,
		minPhoneDigits: minPhoneDigits,
	}
}

// ComputeSupply builds the supply snapshot. The two input sources are
// read concurrently; if either is temporarily unavailable its section
// is marked partial and zeroed rather than failing the whole report.
func (s *SupplyService) ComputeSupply(ctx context.Context) (*domain.SupplySnapshot, error) {
	ctx, span := supplyTracer.Start(ctx, "SupplyService.ComputeSupply")
	defer span.End()

	snap := &domain.SupplySnapshot{}

	var (
		total, locked, distributed int
		companies                  []domain.CompanyPolicy
		leadsErr, companiesErr     error
	)

	// Each source records its own error: one source going away must not
	// cancel or fail the other (partial reads are tolerated per section).
	var g errgroup.Group

	g.Go(func() error {
		if total, leadsErr = s.leads.CountPoolLeads(ctx); leadsErr != nil {
			return nil
		}
		if locked, leadsErr = s.leads.CountLockedPoolLeads(ctx); leadsErr != nil {
			return nil
		}
		distributed, leadsErr = s.leads.CountDistributedFromPool(ctx)
		return nil
	})

	g.Go(func() error {
		companies, companiesErr = s.companies.ListCompanies(ctx)
		return nil
	})

	_ = g.Wait()

	if leadsErr != nil {
		s.logger.Warn("supply snapshot: lead counts unavailable", zap.Error(leadsErr))
		snap.LeadsPartial = true
		total, locked, distributed = 0, 0, 0
	}
	if companiesErr != nil {
		s.logger.Warn("supply snapshot: company registry unavailable", zap.Error(companiesErr))
		snap.CompaniesPartial = true
		companies = nil
	}

	snap.TotalInPool = total
	snap.Locked = locked
	snap.DistributedFromPool = distributed
	snap.AvailableNow = total - locked - distributed

	for _, company := range companies {
		if company.ID == "" {
			snap.IgnoredCompanies++
			continue
		}
		if !company.IsActive {
			continue
		}
		snap.Demand.TotalDailyQuota += company.DailyQuota
		snap.Demand.CompaniesCount++
	}

	snap.Health.Gap = snap.AvailableNow - snap.Demand.TotalDailyQuota
	if snap.Health.Gap < 0 {
		snap.Health.Status = domain.HealthDeficit
	} else {
		snap.Health.Status = domain.HealthSurplus
	}

	s.metrics.SetPoolGauges(snap.AvailableNow, snap.Demand.TotalDailyQuota)

	return snap, nil
}

// BadLeadsAnalytics scans the unowned pool against the quality rules
// and reports counts per bucket. The scan is a full-pool read, so the
// result is cached for a short TTL.
func (s *SupplyService) BadLeadsAnalytics(ctx context.Context) (*domain.BadLeadsReport, error) {
	ctx, span := supplyTracer.Start(ctx, "SupplyService.BadLeadsAnalytics")
	defer span.End()

	if cached, ok := s.cache.Get(badLeadsCacheKey); ok {
		s.metrics.IncrCacheHit("bad_leads")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("bad_leads")

	leads, err := s.leads.ListUnownedPoolLeads(ctx, s.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("scan pool: %w", err)
	}

	report := &domain.BadLeadsReport{
		Scanned:  len(leads),
		ByReason: make(map[string]int),
	}

	keepers := duplicatePhoneSet(leads)
	for i := range leads {
		lead := &leads[i]
		if lead.ID == "" {
			report.Scanned--
			continue
		}
		if reason := classifyLead(lead, s.minPhoneDigits, keepers); reason != "" {
			report.Flagged++
			report.ByReason[reason]++
		}
	}

	s.cache.Set(badLeadsCacheKey, report)
	return report, nil
}
