package service

import (
	"context"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/infra/resilience"
	"github.com/haulhire/leadpool-engine-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var distTracer = otel.Tracer("service/distributor")

// DistributorService allocates unowned pool leads to active companies
// under their daily quotas. Safe to run concurrently with itself: the
// only mutual exclusion is the per-lead optimistic claim, so two racing
// runs get exactly one winner per lead and the loser moves on.
type DistributorService struct {
	gate       port.ControlGate
	companies  port.CompanyStore
	leads      port.LeadStore
	metrics    *observability.Metrics
	logger     *zap.Logger
	retryCfg   resilience.Config
	batchLimit int
	now        func() time.Time
}

// NewDistributorService creates the distribution engine.
func NewDistributorService(
	gate port.ControlGate,
	companies port.CompanyStore,
	leads port.LeadStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
	retryCfg resilience.Config,
	batchLimit int,
) *DistributorService {
	return &DistributorService{
		gate:       gate,
		companies:  companies,
		leads:      leads,
		metrics:    metrics,
		logger:     logger,
		retryCfg:   retryCfg,
		batchLimit: batchLimit,
		now:        time.Now,
	}
}

// dayStart returns midnight of the current calendar day at evaluation
// time, matching the date handling used across the platform.
func (s *DistributorService) dayStart() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Distribute runs one allocation pass. Companies are visited in id
// order; each company pulls from the shared candidate batch
// oldest-first up to its remaining quota. A company's failure never
// aborts the others.
func (s *DistributorService) Distribute(ctx context.Context) (*domain.DistributionResult, error) {
	ctx, span := distTracer.Start(ctx, "DistributorService.Distribute")
	defer span.End()

	start := s.now()
	result := &domain.DistributionResult{
		RunID:      uuid.NewString(),
		StartedAt:  start,
		PerCompany: []domain.CompanyAllocation{},
		Skipped:    []domain.CompanySkip{},
	}
	span.SetAttributes(attribute.String("run.id", result.RunID))

	defer func() {
		result.FinishedAt = s.now()
		s.metrics.ObserveRunDuration("distribute", result.FinishedAt.Sub(start))
	}()

	paused, err := s.gate.IsPaused(ctx)
	if err != nil {
		s.metrics.IncrRun("error")
		return nil, &domain.ErrExternalService{Service: "control-gate", Err: err}
	}
	if paused {
		s.logger.Info("distribution paused by maintenance mode", zap.String("run_id", result.RunID))
		s.metrics.IncrRun("paused")
		result.Paused = true
		return result, nil
	}

	companies, err := s.companies.ListCompanies(ctx)
	if err != nil {
		s.metrics.IncrRun("error")
		return nil, err
	}

	candidates, err := s.leads.ListUnownedPoolLeads(ctx, s.batchLimit)
	if err != nil {
		s.metrics.IncrRun("error")
		return nil, err
	}

	cursor := 0
	dayStart := s.dayStart()

	for _, company := range companies {
		if !company.IsActive {
			result.Skipped = append(result.Skipped, domain.CompanySkip{
				CompanyID: company.ID,
				Reason:    domain.SkipInactive,
			})
			continue
		}

		distributedToday, err := s.leads.CountDistributedSince(ctx, company.ID, dayStart)
		if err != nil {
			// Company-level failure: record and move on, the other
			// tenants' allocations are independent.
			s.logger.Error("failed to read today's distribution count",
				zap.String("company_id", company.ID),
				zap.Error(err),
			)
			s.metrics.IncrStoreError("pool_leads")
			result.Skipped = append(result.Skipped, domain.CompanySkip{
				CompanyID: company.ID,
				Reason:    domain.SkipStoreError,
			})
			continue
		}

		remaining := company.DailyQuota - distributedToday
		if remaining <= 0 {
			result.Skipped = append(result.Skipped, domain.CompanySkip{
				CompanyID: company.ID,
				Reason:    domain.SkipQuotaExhausted,
			})
			continue
		}

		moved := 0
		for moved < remaining && cursor < len(candidates) {
			lead := candidates[cursor]
			cursor++

			claimed, err := s.claimWithRetry(ctx, lead.ID, company.ID)
			if err != nil {
				s.logger.Warn("lead claim failed after retries",
					zap.String("lead_id", lead.ID),
					zap.String("company_id", company.ID),
					zap.Error(err),
				)
				s.metrics.IncrStoreError("pool_leads")
				continue
			}
			if !claimed {
				// Another run won the race for this lead. Expected,
				// not an error: skip to the next candidate.
				result.Conflicts++
				s.metrics.IncrClaimConflict()
				continue
			}

			if err := s.commitLead(ctx, &lead, company.ID); err != nil {
				s.logger.Error("lead commit failed, releasing lock",
					zap.String("lead_id", lead.ID),
					zap.String("company_id", company.ID),
					zap.Error(err),
				)
				s.metrics.IncrStoreError("pool_leads")
				if relErr := s.leads.ReleaseLead(ctx, lead.ID); relErr != nil {
					s.logger.Error("lock release failed, lead stays locked until force-unlock",
						zap.String("lead_id", lead.ID),
						zap.Error(relErr),
					)
				}
				continue
			}

			moved++
			result.Events = append(result.Events, domain.Event{
				Type:      "lead.distributed",
				LeadID:    lead.ID,
				CompanyID: company.ID,
				At:        s.now(),
			})
		}

		if moved == 0 {
			if cursor >= len(candidates) {
				result.Skipped = append(result.Skipped, domain.CompanySkip{
					CompanyID: company.ID,
					Reason:    domain.SkipPoolEmpty,
				})
			}
			continue
		}

		result.MovedTotal += moved
		result.PerCompany = append(result.PerCompany, domain.CompanyAllocation{
			CompanyID: company.ID,
			Moved:     moved,
		})

		s.logger.Info("leads distributed",
			zap.String("run_id", result.RunID),
			zap.String("company_id", company.ID),
			zap.Int("moved", moved),
			zap.Int("remaining_quota", remaining-moved),
		)
	}

	s.metrics.IncrRun("completed")
	s.metrics.AddLeadsMoved(result.MovedTotal)

	s.logger.Info("distribution run finished",
		zap.String("run_id", result.RunID),
		zap.Int("moved_total", result.MovedTotal),
		zap.Int("conflicts", result.Conflicts),
		zap.Int("companies_served", len(result.PerCompany)),
		zap.Int("companies_skipped", len(result.Skipped)),
	)

	return result, nil
}

// claimWithRetry retries transient claim errors a bounded number of
// times. Retrying is safe: the claim is conditional on unowned status,
// so a repeat of an already-applied claim reports false and the lead is
// simply treated as taken.
func (s *DistributorService) claimWithRetry(ctx context.Context, leadID, companyID string) (bool, error) {
	var claimed bool
	err := resilience.RetryWithBackoff(ctx, s.retryCfg, func() error {
		ok, err := s.leads.ClaimLead(ctx, leadID, companyID)
		if err != nil {
			return err
		}
		claimed = ok
		return nil
	})
	return claimed, err
}

// commitLead finishes the assignment: locked -> distributed plus the
// company-scoped copy the tenant's CRM reads from.
func (s *DistributorService) commitLead(ctx context.Context, lead *domain.Lead, companyID string) error {
	at := s.now()
	if err := s.leads.CommitLead(ctx, lead.ID, companyID, at); err != nil {
		return err
	}

	copy := &domain.CompanyLead{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		PoolLeadID:    lead.ID,
		FirstName:     lead.FirstName,
		LastName:      lead.LastName,
		Email:         lead.Email,
		Phone:         lead.Phone,
		CDLClass:      lead.CDLClass,
		State:         lead.State,
		Origin:        lead.Origin,
		DistributedAt: at,
	}
	if err := s.leads.InsertCompanyLead(ctx, copy); err != nil {
		s.metrics.IncrStoreError("company_leads")
		// The pool row is already distributed; surface the copy failure
		// so operators can reconcile, but do not roll the lead back.
		s.logger.Error("company copy insert failed",
			zap.String("lead_id", lead.ID),
			zap.String("company_id", companyID),
			zap.Error(err),
		)
	}
	return nil
}
