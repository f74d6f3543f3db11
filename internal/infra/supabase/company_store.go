package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// CompanyStore implementation: tenant registry via PostgREST
// ============================================================

// companyRow maps the companies table columns. Quota and cadence are
// pointers because tenant documents are loosely typed in the backend;
// missing fields get safe defaults during conversion.
type companyRow struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	IsActive     *bool     `json:"is_active"`
	DailyQuota   *int      `json:"daily_quota"`
	CadenceHours *int      `json:"cadence_hours"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r companyRow) toDomain() domain.CompanyPolicy {
	p := domain.CompanyPolicy{
		ID:        r.ID,
		Name:      r.Name,
		Slug:      r.Slug,
		CreatedAt: r.CreatedAt,
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if r.DailyQuota != nil {
		p.DailyQuota = *r.DailyQuota
	}
	if r.CadenceHours != nil {
		p.CadenceHours = *r.CadenceHours
	}
	p.Normalize()
	return p
}

// ListCompanies returns all companies ordered by id ascending.
func (c *Client) ListCompanies(ctx context.Context) ([]domain.CompanyPolicy, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCompanies")
	defer span.End()

	var companies []domain.CompanyPolicy

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, "companies?order=id.asc")
			if err != nil {
				return err
			}
			if body == nil {
				companies = []domain.CompanyPolicy{}
				return nil
			}

			var rows []companyRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode companies: %w", err)
			}

			companies = make([]domain.CompanyPolicy, 0, len(rows))
			for _, r := range rows {
				companies = append(companies, r.toDomain())
			}
			return nil
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/companies", Err: err}
	}

	return companies, nil
}

func (c *Client) GetCompany(ctx context.Context, companyID string) (*domain.CompanyPolicy, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCompany")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	path := fmt.Sprintf("companies?id=eq.%s&limit=1", companyID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/companies", Err: err}
	}

	var rows []companyRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode company: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "company", ID: companyID}
	}

	policy := rows[0].toDomain()
	return &policy, nil
}

// SetCompanyActive flips the distribution flag for one tenant.
// Takes effect on the next run, no approval state in between.
func (c *Client) SetCompanyActive(ctx context.Context, companyID string, active bool) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetCompanyActive")
	defer span.End()
	span.SetAttributes(
		attribute.String("company.id", companyID),
		attribute.Bool("active", active),
	)

	path := fmt.Sprintf("companies?id=eq.%s", companyID)
	body, err := c.doPatch(ctx, path, map[string]any{"is_active": active})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/companies", Err: err}
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decode toggle result: %w", err)
	}
	if len(rows) == 0 {
		return &domain.ErrNotFound{Resource: "company", ID: companyID}
	}
	return nil
}
