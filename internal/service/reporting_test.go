package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/service"

	"go.uber.org/zap"
)

func TestCompanyDistributionStatus_PerCompanyCadence(t *testing.T) {
	leads := newFakeLeadStore(seedPool(5)...)
	distributeFixture(t, leads, []string{"lead-000", "lead-001"}, "comp-a")
	leads.copies = append(leads.copies, domain.CompanyLead{
		ID:        "copy-private",
		CompanyID: "comp-a",
		Origin:    domain.OriginPrivateUpload,
	})

	companies := &fakeCompanyStore{companies: []domain.CompanyPolicy{
		{ID: "comp-a", Name: "Alpha Haulage", IsActive: true, DailyQuota: 10, CadenceHours: 12},
		{ID: "comp-b", Name: "Bravo Freight", IsActive: true, DailyQuota: 5, CadenceHours: 24},
	}}

	svc := service.NewReportingService(companies, leads, zap.NewNop())

	rows, err := svc.CompanyDistributionStatus(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	a := rows[0]
	if a.CompanyID != "comp-a" {
		t.Fatalf("expected comp-a first, got %s", a.CompanyID)
	}
	if a.PlatformLeadsCount != 2 {
		t.Errorf("expected 2 platform leads, got %d", a.PlatformLeadsCount)
	}
	if a.PrivateLeadsCount != 1 {
		t.Errorf("expected 1 private lead, got %d", a.PrivateLeadsCount)
	}
	if a.LastDistribution == nil {
		t.Fatal("expected last distribution set")
	}
	wantNext := a.LastDistribution.Add(12 * time.Hour)
	if a.NextDistribution == nil || !a.NextDistribution.Equal(wantNext) {
		t.Errorf("expected next = last + 12h, got %v", a.NextDistribution)
	}

	// A company that never received leads has neither timestamp.
	b := rows[1]
	if b.LastDistribution != nil || b.NextDistribution != nil {
		t.Errorf("expected empty schedule for comp-b, got %+v", b)
	}
}

func TestSetCompanyActive_Validation(t *testing.T) {
	companies := &fakeCompanyStore{}
	svc := service.NewReportingService(companies, newFakeLeadStore(), zap.NewNop())

	var validation *domain.ErrValidation
	err := svc.SetCompanyActive(context.Background(), "", true)
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if err := svc.SetCompanyActive(context.Background(), "comp-a", false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if active, ok := companies.toggles["comp-a"]; !ok || active {
		t.Errorf("expected comp-a toggled inactive, got %v", companies.toggles)
	}
}

func TestControlService_PauseResume(t *testing.T) {
	gate := &fakeGate{}
	svc := service.NewControlService(gate, zap.NewNop())
	ctx := context.Background()

	if err := svc.SetPaused(ctx, true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	paused, err := svc.IsPaused(ctx)
	if err != nil || !paused {
		t.Fatalf("expected paused, got %v %v", paused, err)
	}

	if err := svc.SetPaused(ctx, false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	paused, _ = svc.IsPaused(ctx)
	if paused {
		t.Error("expected resumed")
	}
}

// Pausing mid-way: a run started after the pause moves nothing, and
// resuming lets the next run proceed.
func TestMaintenanceGatesDistribution(t *testing.T) {
	leads := newFakeLeadStore(seedPool(6)...)
	companies := &fakeCompanyStore{companies: []domain.CompanyPolicy{
		{ID: "comp-a", IsActive: true, DailyQuota: 3},
	}}
	gate := &fakeGate{}

	control := service.NewControlService(gate, zap.NewNop())
	distributor := newDistributor(gate, companies, leads)
	ctx := context.Background()

	_ = control.SetPaused(ctx, true)
	r1, err := distributor.Distribute(ctx)
	if err != nil || !r1.Paused || r1.MovedTotal != 0 {
		t.Fatalf("paused run should be a no-op, got %+v err %v", r1, err)
	}

	_ = control.SetPaused(ctx, false)
	r2, err := distributor.Distribute(ctx)
	if err != nil {
		t.Fatalf("resumed run failed: %v", err)
	}
	if r2.MovedTotal != 3 {
		t.Errorf("expected 3 moved after resume, got %d", r2.MovedTotal)
	}
}
