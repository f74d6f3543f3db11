package domain

// ============================================================
// Supply / demand analytics
// ============================================================

// Health status values for the pool.
const (
	HealthDeficit = "deficit"
	HealthSurplus = "surplus"
)

// SupplyDemand aggregates tenant demand.
type SupplyDemand struct {
	TotalDailyQuota int `json:"total_daily_quota"`
	CompaniesCount  int `json:"companies_count"`
}

// SupplyHealth compares available supply against aggregate demand.
type SupplyHealth struct {
	Status string `json:"status"` // deficit, surplus
	Gap    int    `json:"gap"`    // availableNow - totalDailyQuota
}

// SupplySnapshot is the pool health view, recomputed from the lead store
// on every read. Invariant after any distribution/recall/cleanup run:
// AvailableNow + Locked + DistributedFromPool == TotalInPool.
//
// A snapshot is best-effort: if one input source is temporarily
// unavailable its section is marked partial instead of failing the
// whole report.
type SupplySnapshot struct {
	TotalInPool         int          `json:"total_in_pool"`
	AvailableNow        int          `json:"available_now"`
	Locked              int          `json:"locked"`
	DistributedFromPool int          `json:"distributed_from_pool"`
	Demand              SupplyDemand `json:"demand"`
	Health              SupplyHealth `json:"health"`

	// Partial-read flags, one per input source.
	LeadsPartial     bool `json:"leads_partial,omitempty"`
	CompaniesPartial bool `json:"companies_partial,omitempty"`

	// Malformed documents skipped during the scan.
	IgnoredLeads     int `json:"ignored_leads,omitempty"`
	IgnoredCompanies int `json:"ignored_companies,omitempty"`
}
