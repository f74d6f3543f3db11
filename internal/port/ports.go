// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
)

// LeadStore defines all data operations against the shared lead pool.
// Implemented by the Supabase adapter (or any other persistence layer).
//
// Ownership transitions go through this store only, under the
// claim-then-commit protocol: ClaimLead is the single atomic
// "lock if still unowned" primitive the allocator builds on.
type LeadStore interface {
	// Pool reads
	ListUnownedPoolLeads(ctx context.Context, limit int) ([]domain.Lead, error)
	CountPoolLeads(ctx context.Context) (int, error)
	CountLockedPoolLeads(ctx context.Context) (int, error)
	CountDistributedFromPool(ctx context.Context) (int, error)
	CountDistributedSince(ctx context.Context, companyID string, since time.Time) (int, error)

	// Ownership transitions
	// ClaimLead transitions unowned -> locked(companyID) if and only if
	// the lead is still unowned at write time. Returns false (not an
	// error) when a concurrent run claimed it first.
	ClaimLead(ctx context.Context, leadID, companyID string) (bool, error)
	// CommitLead transitions locked -> distributed(companyID, at).
	CommitLead(ctx context.Context, leadID, companyID string, at time.Time) error
	// ReleaseLead transitions a locked lead back to unowned.
	ReleaseLead(ctx context.Context, leadID string) error
	// UnlockLockedLeads returns every locked pool lead to unowned and
	// reports how many rows changed. Crash-recovery tool.
	UnlockLockedLeads(ctx context.Context) (int, error)
	// UnlockDistributedPoolLeads returns every distributed platform-pool
	// lead to unowned and reports how many rows changed. Used by recall.
	UnlockDistributedPoolLeads(ctx context.Context) (int, error)

	// Company-scoped copies
	InsertCompanyLead(ctx context.Context, copy *domain.CompanyLead) error
	DeletePlatformCompanyLeads(ctx context.Context) (int, error)
	CountCompanyLeads(ctx context.Context, companyID, origin string) (int, error)
	LastDistributedAt(ctx context.Context, companyID string) (*time.Time, error)

	// Cleanup
	DeletePoolLead(ctx context.Context, leadID string) error
}

// CompanyStore defines data operations against the tenant registry.
type CompanyStore interface {
	// ListCompanies returns all companies ordered by id ascending, so
	// allocation order is deterministic and repeatable across runs.
	ListCompanies(ctx context.Context) ([]domain.CompanyPolicy, error)
	GetCompany(ctx context.Context, companyID string) (*domain.CompanyPolicy, error)
	SetCompanyActive(ctx context.Context, companyID string, active bool) error
}

// ControlGate is the process-wide maintenance switch. Distribution
// reads through on every invocation; recall and cleanup treat it as
// advisory. Last-write-wins, single scalar, no versioning.
type ControlGate interface {
	IsPaused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
