package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/infra/cache"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/service"

	"go.uber.org/zap"
)

func newCleanup(leads *fakeLeadStore) *service.CleanupService {
	return service.NewCleanupService(
		leads,
		&fakeGate{paused: true},
		cache.New[*domain.BadLeadsReport](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		500,
		10,
		4,
	)
}

func TestCleanupBadLeads_RemovesByRule(t *testing.T) {
	leads := newFakeLeadStore(
		poolLead("lead-1", "Good", "real@haulmail.com", "5551234567"),
		poolLead("lead-2", "NoContact", "", ""),
		poolLead("lead-3", "Placeholder", "nobody@example.com", "5559876543"),
		poolLead("lead-4", "test", "test@haulmail.com", "5551112222"),
		poolLead("lead-5", "Short", "short@haulmail.com", "12345"),
	)

	svc := newCleanup(leads)

	result, err := svc.CleanupBadLeads(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.RemovedCount != 4 {
		t.Errorf("expected 4 removed, got %d (%+v)", result.RemovedCount, result.ByReason)
	}
	for reason, want := range map[string]int{
		domain.ReasonMissingContact:   1,
		domain.ReasonPlaceholderEmail: 1,
		domain.ReasonTestData:         1,
		domain.ReasonShortPhone:       1,
	} {
		if got := result.ByReason[reason]; got != want {
			t.Errorf("reason %s: expected %d, got %d", reason, want, got)
		}
	}

	// The clean lead survives.
	remaining, _ := leads.ListUnownedPoolLeads(context.Background(), 500)
	if len(remaining) != 1 || remaining[0].ID != "lead-1" {
		t.Errorf("expected only lead-1 to survive, got %+v", remaining)
	}
}

func TestCleanupBadLeads_DuplicatePhonesKeepOldest(t *testing.T) {
	leads := newFakeLeadStore(
		poolLead("lead-1", "First", "a@haulmail.com", "5550001111"),
		poolLead("lead-2", "Second", "b@haulmail.com", "(555) 000-1111"),
		poolLead("lead-3", "Third", "c@haulmail.com", "555-000-1111"),
	)

	svc := newCleanup(leads)

	result, err := svc.CleanupBadLeads(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ByReason[domain.ReasonDuplicatePhone] != 2 {
		t.Errorf("expected 2 duplicates removed, got %d", result.ByReason[domain.ReasonDuplicatePhone])
	}

	remaining, _ := leads.ListUnownedPoolLeads(context.Background(), 500)
	if len(remaining) != 1 || remaining[0].ID != "lead-1" {
		t.Errorf("expected oldest holder lead-1 kept, got %+v", remaining)
	}
}

func TestCleanupBadLeads_NeverTouchesOwnedLeads(t *testing.T) {
	// Two bad leads, one of them already locked by a company.
	leads := newFakeLeadStore(
		poolLead("lead-1", "NoContact", "", ""),
		poolLead("lead-2", "NoContact", "", ""),
	)
	ctx := context.Background()
	if ok, _ := leads.ClaimLead(ctx, "lead-2", "comp-a"); !ok {
		t.Fatal("fixture claim failed")
	}

	svc := newCleanup(leads)

	result, err := svc.CleanupBadLeads(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.RemovedCount != 1 {
		t.Errorf("expected 1 removed, got %d", result.RemovedCount)
	}
	if _, ok := leads.leads["lead-2"]; !ok {
		t.Error("locked lead was deleted by cleanup")
	}
}

func TestCleanupBadLeads_Idempotent(t *testing.T) {
	leads := newFakeLeadStore(
		poolLead("lead-1", "NoContact", "", ""),
		poolLead("lead-2", "Good", "real@haulmail.com", "5551234567"),
	)

	svc := newCleanup(leads)

	first, err := svc.CleanupBadLeads(context.Background())
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if first.RemovedCount != 1 {
		t.Fatalf("expected 1 removed, got %d", first.RemovedCount)
	}

	second, err := svc.CleanupBadLeads(context.Background())
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if second.RemovedCount != 0 {
		t.Errorf("second pass must find nothing, removed %d", second.RemovedCount)
	}
}
