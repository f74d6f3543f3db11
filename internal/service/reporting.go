package service

import (
	"context"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var reportTracer = otel.Tracer("service/reporting")

// ReportingService aggregates per-tenant distribution status for the
// admin dashboard. Read-only with respect to lead ownership; the only
// mutation it offers is the per-company active toggle.
type ReportingService struct {
	companies port.CompanyStore
	leads     port.LeadStore
	logger    *zap.Logger
}

// NewReportingService creates the admin reporting facade.
func NewReportingService(companies port.CompanyStore, leads port.LeadStore, logger *zap.Logger) *ReportingService {
	return &ReportingService{companies: companies, leads: leads, logger: logger}
}

// CompanyDistributionStatus returns one row per company. Last and next
// distribution are derived from the company's own assignment
// timestamps and cadence config. Each tenant's "next" is independent;
// there is no shared scheduler clock.
func (s *ReportingService) CompanyDistributionStatus(ctx context.Context) ([]domain.CompanyStatusRow, error) {
	ctx, span := reportTracer.Start(ctx, "ReportingService.CompanyDistributionStatus")
	defer span.End()

	companies, err := s.companies.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CompanyStatusRow, 0, len(companies))
	for _, company := range companies {
		row := domain.CompanyStatusRow{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			IsActive:    company.IsActive,
			DailyQuota:  company.DailyQuota,
		}

		if n, err := s.leads.CountCompanyLeads(ctx, company.ID, domain.OriginPlatformPool); err == nil {
			row.PlatformLeadsCount = n
		} else {
			s.logger.Warn("platform lead count unavailable",
				zap.String("company_id", company.ID),
				zap.Error(err),
			)
		}
		if n, err := s.leads.CountCompanyLeads(ctx, company.ID, domain.OriginPrivateUpload); err == nil {
			row.PrivateLeadsCount = n
		} else {
			s.logger.Warn("private lead count unavailable",
				zap.String("company_id", company.ID),
				zap.Error(err),
			)
		}

		last, err := s.leads.LastDistributedAt(ctx, company.ID)
		if err != nil {
			s.logger.Warn("last distribution unavailable",
				zap.String("company_id", company.ID),
				zap.Error(err),
			)
		} else if last != nil {
			row.LastDistribution = last
			next := last.Add(time.Duration(company.CadenceHours) * time.Hour)
			row.NextDistribution = &next
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// SetCompanyActive flips a tenant's distribution flag. Takes effect on
// the next run; there is no approval state in between.
func (s *ReportingService) SetCompanyActive(ctx context.Context, companyID string, active bool) error {
	ctx, span := reportTracer.Start(ctx, "ReportingService.SetCompanyActive")
	defer span.End()
	span.SetAttributes(
		attribute.String("company.id", companyID),
		attribute.Bool("active", active),
	)

	if companyID == "" {
		return &domain.ErrValidation{Field: "companyId", Message: "company id is required"}
	}

	if err := s.companies.SetCompanyActive(ctx, companyID, active); err != nil {
		return err
	}

	s.logger.Info("company active flag toggled",
		zap.String("company_id", companyID),
		zap.Bool("active", active),
	)
	return nil
}
