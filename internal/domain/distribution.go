package domain

import "time"

// ============================================================
// Distribution runs
// ============================================================

// Skip reasons recorded per company in a distribution run.
const (
	SkipInactive       = "inactive"
	SkipQuotaExhausted = "quota_exhausted"
	SkipPoolEmpty      = "pool_empty"
	SkipStoreError     = "store_error"
)

// CompanyAllocation reports leads moved to one company in a run.
type CompanyAllocation struct {
	CompanyID string `json:"company_id"`
	Moved     int    `json:"moved"`
}

// CompanySkip reports why a company received nothing in a run.
type CompanySkip struct {
	CompanyID string `json:"company_id"`
	Reason    string `json:"reason"`
}

// Event is a side effect the engine wants dispatched after a run
// (e.g. notifying a company of new leads). The engine never delivers
// events itself; an external dispatcher decides delivery.
type Event struct {
	Type      string    `json:"type"` // lead.distributed
	LeadID    string    `json:"lead_id"`
	CompanyID string    `json:"company_id"`
	At        time.Time `json:"at"`
}

// DistributionResult is the structured summary of one run. Operators
// can tell "ran but found nothing to do" from "failed" by the counts.
type DistributionResult struct {
	RunID      string              `json:"run_id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Paused     bool                `json:"paused"`
	MovedTotal int                 `json:"moved_total"`
	Conflicts  int                 `json:"conflicts"` // leads lost to a concurrent run
	PerCompany []CompanyAllocation `json:"per_company"`
	Skipped    []CompanySkip       `json:"skipped"`
	Events     []Event             `json:"events,omitempty"`
}

// RecallResult summarizes a recall of all platform-pool leads.
// A second consecutive recall yields zeros (idempotency).
type RecallResult struct {
	DeletedCount  int `json:"deleted_count"`
	UnlockedCount int `json:"unlocked_count"`
}

// CleanupResult summarizes a bad-lead cleanup pass over the unowned pool.
type CleanupResult struct {
	RemovedCount int            `json:"removed_count"`
	ByReason     map[string]int `json:"by_reason"`
}

// UnlockResult summarizes a force-unlock of leads stuck in the locked
// state (crash-recovery tool).
type UnlockResult struct {
	UnlockedCount int `json:"unlocked_count"`
}
