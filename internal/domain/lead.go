package domain

import "time"

// ============================================================
// Leads
// ============================================================

// Lead origin values. Only platform-pool leads participate in
// distribution; private uploads and bulk imports belong to a single
// company from the moment they are created.
const (
	OriginPlatformPool  = "platform-pool"
	OriginPrivateUpload = "company-private-upload"
	OriginBulkImport    = "bulk-import"
)

// Lead ownership states.
const (
	LeadUnowned     = "unowned"
	LeadLocked      = "locked"
	LeadDistributed = "distributed"
)

// Lead represents a prospective driver contact in the shared pool.
// A lead is owned by at most one company at a time: a distributed lead
// always carries the owning company id and a distribution timestamp,
// an unowned lead carries neither.
type Lead struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	CDLClass      string     `json:"cdl_class"` // A, B, C
	State         string     `json:"state"`
	Origin        string     `json:"origin"`
	Status        string     `json:"status"` // unowned, locked, distributed
	CompanyID     *string    `json:"company_id,omitempty"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
	DistributedAt *time.Time `json:"distributed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsUnowned reports whether the lead is still in the shared pool.
func (l *Lead) IsUnowned() bool {
	return l.Status == LeadUnowned
}

// CompanyLead is a company-scoped copy of a distributed pool lead.
// Deleting these copies (plus unlocking the pool rows) is what recall does.
type CompanyLead struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	PoolLeadID    string    `json:"pool_lead_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CDLClass      string    `json:"cdl_class"`
	State         string    `json:"state"`
	Origin        string    `json:"origin"`
	DistributedAt time.Time `json:"distributed_at"`
}

// ============================================================
// Bad-lead quality rules
// ============================================================

// Quality rule buckets used by cleanup and the bad-leads report.
// These are derived classifications, never stored on the lead itself,
// and they are only ever applied to unowned pool leads.
const (
	ReasonMissingContact   = "missingContact"
	ReasonPlaceholderEmail = "placeholderEmails"
	ReasonTestData         = "testData"
	ReasonShortPhone       = "shortPhones"
	ReasonDuplicatePhone   = "duplicatePhones"
)

// BadLeadsReport counts unowned pool leads per quality-rule bucket.
type BadLeadsReport struct {
	Scanned  int            `json:"scanned"`
	Flagged  int            `json:"flagged"`
	ByReason map[string]int `json:"by_reason"`
}
