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
// LeadStore implementation: pool and company copies via PostgREST
// ============================================================

// poolLeadRow maps the pool_leads table columns to our domain.
type poolLeadRow struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	CDLClass      string     `json:"cdl_class"`
	State         string     `json:"state"`
	Origin        string     `json:"origin"`
	Status        string     `json:"status"`
	CompanyID     *string    `json:"company_id"`
	LockedAt      *time.Time `json:"locked_at"`
	DistributedAt *time.Time `json:"distributed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (r poolLeadRow) toDomain() domain.Lead {
	return domain.Lead{
		ID:            r.ID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Phone:         r.Phone,
		CDLClass:      r.CDLClass,
		State:         r.State,
		Origin:        r.Origin,
		Status:        r.Status,
		CompanyID:     r.CompanyID,
		LockedAt:      r.LockedAt,
		DistributedAt: r.DistributedAt,
		CreatedAt:     r.CreatedAt,
	}
}

// ListUnownedPoolLeads returns unowned platform-pool leads,
// oldest-created-first so distribution approximates FIFO fairness.
func (c *Client) ListUnownedPoolLeads(ctx context.Context, limit int) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUnownedPoolLeads")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	var leads []domain.Lead

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("pool_leads?origin=eq.%s&status=eq.%s&order=created_at.asc&limit=%d",
				domain.OriginPlatformPool, domain.LeadUnowned, limit)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil {
				leads = []domain.Lead{}
				return nil
			}

			var rows []poolLeadRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode pool leads: %w", err)
			}

			leads = make([]domain.Lead, 0, len(rows))
			for _, r := range rows {
				leads = append(leads, r.toDomain())
			}
			return nil
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/pool_leads", Err: err}
	}

	return leads, nil
}

func (c *Client) CountPoolLeads(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountPoolLeads")
	defer span.End()

	return c.count(ctx, fmt.Sprintf("pool_leads?origin=eq.%s", domain.OriginPlatformPool))
}

func (c *Client) CountLockedPoolLeads(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountLockedPoolLeads")
	defer span.End()

	return c.count(ctx, fmt.Sprintf("pool_leads?origin=eq.%s&status=eq.%s",
		domain.OriginPlatformPool, domain.LeadLocked))
}

func (c *Client) CountDistributedFromPool(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountDistributedFromPool")
	defer span.End()

	return c.count(ctx, fmt.Sprintf("pool_leads?origin=eq.%s&status=eq.%s",
		domain.OriginPlatformPool, domain.LeadDistributed))
}

// CountDistributedSince counts leads committed to a company on or after
// the given instant. Used for the remaining-quota computation.
func (c *Client) CountDistributedSince(ctx context.Context, companyID string, since time.Time) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountDistributedSince")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	return c.count(ctx, fmt.Sprintf("pool_leads?status=eq.%s&company_id=eq.%s&distributed_at=gte.%s",
		domain.LeadDistributed, companyID, since.UTC().Format(time.RFC3339)))
}

// ClaimLead transitions unowned -> locked(companyID). The status filter
// on the PATCH makes the claim conditional: PostgREST only updates rows
// still matching status=unowned, so a claim that raced a concurrent run
// comes back with zero rows and we report false, not an error.
func (c *Client) ClaimLead(ctx context.Context, leadID, companyID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ClaimLead")
	defer span.End()
	span.SetAttributes(
		attribute.String("lead.id", leadID),
		attribute.String("company.id", companyID),
	)

	path := fmt.Sprintf("pool_leads?id=eq.%s&status=eq.%s", leadID, domain.LeadUnowned)
	body, err := c.doPatch(ctx, path, map[string]any{
		"status":     domain.LeadLocked,
		"company_id": companyID,
		"locked_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, &domain.ErrExternalService{Service: "supabase/pool_leads", Err: err}
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("decode claim result: %w", err)
	}
	return len(rows) > 0, nil
}

// CommitLead transitions locked -> distributed. The filter requires the
// lock to still belong to this company, so a stray commit after a
// force-unlock cannot steal the lead.
func (c *Client) CommitLead(ctx context.Context, leadID, companyID string, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.CommitLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID))

	path := fmt.Sprintf("pool_leads?id=eq.%s&status=eq.%s&company_id=eq.%s",
		leadID, domain.LeadLocked, companyID)
	body, err := c.doPatch(ctx, path, map[string]any{
		"status":         domain.LeadDistributed,
		"distributed_at": at.UTC().Format(time.RFC3339),
		"locked_at":      nil,
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/pool_leads", Err: err}
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decode commit result: %w", err)
	}
	if len(rows) == 0 {
		return &domain.ErrConflict{Message: fmt.Sprintf("lead %s no longer locked by company %s", leadID, companyID)}
	}
	return nil
}

// ReleaseLead transitions a locked lead back to unowned.
func (c *Client) ReleaseLead(ctx context.Context, leadID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.ReleaseLead")
	defer span.End()

	path := fmt.Sprintf("pool_leads?id=eq.%s&status=eq.%s", leadID, domain.LeadLocked)
	_, err := c.doPatch(ctx, path, map[string]any{
		"status":     domain.LeadUnowned,
		"company_id": nil,
		"locked_at":  nil,
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/pool_leads", Err: err}
	}
	return nil
}

// UnlockLockedLeads clears every lead stuck in the locked state.
func (c *Client) UnlockLockedLeads(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UnlockLockedLeads")
	defer span.End()

	path := fmt.Sprintf("pool_leads?status=eq.%s", domain.LeadLocked)
	n, err := c.doPatchCount(ctx, path, map[string]any{
		"status":     domain.LeadUnowned,
		"company_id": nil,
		"locked_at":  nil,
	})
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/pool_leads", Err: err}
	}
	return n, nil
}

// UnlockDistributedPoolLeads returns every distributed platform-pool
// lead to the unowned state. The origin filter keeps private uploads
// and bulk imports out of the recall.
func (c *Client) UnlockDistributedPoolLeads(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UnlockDistributedPoolLeads")
	defer span.End()

	path := fmt.Sprintf("pool_leads?origin=eq.%s&status=eq.%s",
		domain.OriginPlatformPool, domain.LeadDistributed)
	n, err := c.doPatchCount(ctx, path, map[string]any{
		"status":         domain.LeadUnowned,
		"company_id":     nil,
		"locked_at":      nil,
		"distributed_at": nil,
	})
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/pool_leads", Err: err}
	}
	return n, nil
}

// InsertCompanyLead writes the company-scoped copy of a distributed lead.
func (c *Client) InsertCompanyLead(ctx context.Context, copy *domain.CompanyLead) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertCompanyLead")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", copy.CompanyID))

	_, err := c.doPost(ctx, "company_leads", map[string]any{
		"id":             copy.ID,
		"company_id":     copy.CompanyID,
		"pool_lead_id":   copy.PoolLeadID,
		"first_name":     copy.FirstName,
		"last_name":      copy.LastName,
		"email":          copy.Email,
		"phone":          copy.Phone,
		"cdl_class":      copy.CDLClass,
		"state":          copy.State,
		"origin":         copy.Origin,
		"distributed_at": copy.DistributedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/company_leads", Err: err}
	}
	return nil
}

// DeletePlatformCompanyLeads removes every company-owned copy of a
// platform-pool lead across all tenants and reports how many went away.
func (c *Client) DeletePlatformCompanyLeads(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePlatformCompanyLeads")
	defer span.End()

	path := fmt.Sprintf("company_leads?origin=eq.%s", domain.OriginPlatformPool)
	n, err := c.doDeleteCount(ctx, path)
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/company_leads", Err: err}
	}
	return n, nil
}

func (c *Client) CountCompanyLeads(ctx context.Context, companyID, origin string) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountCompanyLeads")
	defer span.End()

	path := fmt.Sprintf("company_leads?company_id=eq.%s", companyID)
	if origin != "" {
		path += fmt.Sprintf("&origin=eq.%s", origin)
	}
	return c.count(ctx, path)
}

// LastDistributedAt returns the timestamp of the company's most recent
// assignment, or nil when it has never received a lead.
func (c *Client) LastDistributedAt(ctx context.Context, companyID string) (*time.Time, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LastDistributedAt")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	path := fmt.Sprintf("company_leads?company_id=eq.%s&order=distributed_at.desc&limit=1&select=distributed_at", companyID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/company_leads", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []struct {
		DistributedAt time.Time `json:"distributed_at"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode last distribution: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].DistributedAt, nil
}

// DeletePoolLead removes a single unowned pool lead. The status filter
// keeps cleanup away from locked and distributed rows even if the
// caller's scan raced a distribution run.
func (c *Client) DeletePoolLead(ctx context.Context, leadID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePoolLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID))

	path := fmt.Sprintf("pool_leads?id=eq.%s&status=eq.%s", leadID, domain.LeadUnowned)
	if _, err := c.doDeleteCount(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/pool_leads", Err: err}
	}
	return nil
}
