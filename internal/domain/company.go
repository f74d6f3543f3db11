package domain

import "time"

// ============================================================
// Companies (tenants)
// ============================================================

// CompanyPolicy is the per-tenant distribution configuration, validated
// at the store boundary when loaded from the backend. Invalid or missing
// fields default safely: DailyQuota=0, IsActive=false, CadenceHours=24.
type CompanyPolicy struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	IsActive     bool      `json:"is_active"`
	DailyQuota   int       `json:"daily_quota"`
	CadenceHours int       `json:"cadence_hours"`
	CreatedAt    time.Time `json:"created_at"`
}

// DefaultCadenceHours is applied when a company document carries no
// cadence configuration.
const DefaultCadenceHours = 24

// Normalize applies safe defaults for fields the backend document may
// omit or carry with invalid values.
func (p *CompanyPolicy) Normalize() {
	if p.DailyQuota < 0 {
		p.DailyQuota = 0
	}
	if p.CadenceHours <= 0 {
		p.CadenceHours = DefaultCadenceHours
	}
}

// CompanyStatusRow is one row of the admin distribution-status view.
// LastDistribution comes from the company's own assignment timestamps;
// NextDistribution is last + cadence, computed independently per company.
type CompanyStatusRow struct {
	CompanyID          string     `json:"company_id"`
	CompanyName        string     `json:"company_name"`
	IsActive           bool       `json:"is_active"`
	DailyQuota         int        `json:"daily_quota"`
	PlatformLeadsCount int        `json:"platform_leads_count"`
	PrivateLeadsCount  int        `json:"private_leads_count"`
	LastDistribution   *time.Time `json:"last_distribution,omitempty"`
	NextDistribution   *time.Time `json:"next_distribution,omitempty"`
}
