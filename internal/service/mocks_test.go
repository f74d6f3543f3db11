package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
)

// --- Mocks ---

// fakeLeadStore is an in-memory lead store tracking ownership state the
// way the real backend does, guarded by a mutex so concurrent runs can
// race on claims.
type fakeLeadStore struct {
	mu    sync.Mutex
	leads map[string]*domain.Lead
	order []string

	copies []domain.CompanyLead

	// distributedToday seeds CountDistributedSince per company.
	distributedToday map[string]int

	// error injection
	listErr    error
	countErr   error
	claimErr   error
	commitErr  error
	insertErr  error
	deleteErr  error
	todayErr   error
	recallErrs bool
}

func newFakeLeadStore(leads ...domain.Lead) *fakeLeadStore {
	s := &fakeLeadStore{
		leads:            make(map[string]*domain.Lead),
		distributedToday: make(map[string]int),
	}
	for i := range leads {
		l := leads[i]
		s.leads[l.ID] = &l
		s.order = append(s.order, l.ID)
	}
	return s
}

func (s *fakeLeadStore) ListUnownedPoolLeads(_ context.Context, limit int) ([]domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Lead
	for _, id := range s.order {
		l := s.leads[id]
		if l.Origin == domain.OriginPlatformPool && l.Status == domain.LeadUnowned {
			out = append(out, *l)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeLeadStore) CountPoolLeads(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, l := range s.leads {
		if l.Origin == domain.OriginPlatformPool {
			n++
		}
	}
	return n, nil
}

func (s *fakeLeadStore) CountLockedPoolLeads(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, l := range s.leads {
		if l.Origin == domain.OriginPlatformPool && l.Status == domain.LeadLocked {
			n++
		}
	}
	return n, nil
}

func (s *fakeLeadStore) CountDistributedFromPool(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, l := range s.leads {
		if l.Origin == domain.OriginPlatformPool && l.Status == domain.LeadDistributed {
			n++
		}
	}
	return n, nil
}

func (s *fakeLeadStore) CountDistributedSince(_ context.Context, companyID string, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.todayErr != nil {
		return 0, s.todayErr
	}
	return s.distributedToday[companyID], nil
}

func (s *fakeLeadStore) ClaimLead(_ context.Context, leadID, companyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return false, s.claimErr
	}
	l, ok := s.leads[leadID]
	if !ok || l.Status != domain.LeadUnowned {
		return false, nil
	}
	now := time.Now()
	l.Status = domain.LeadLocked
	l.CompanyID = &companyID
	l.LockedAt = &now
	return true, nil
}

func (s *fakeLeadStore) CommitLead(_ context.Context, leadID, companyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	l, ok := s.leads[leadID]
	if !ok || l.Status != domain.LeadLocked || l.CompanyID == nil || *l.CompanyID != companyID {
		return &domain.ErrConflict{Message: "lead not locked by company"}
	}
	l.Status = domain.LeadDistributed
	l.DistributedAt = &at
	l.LockedAt = nil
	s.distributedToday[companyID]++
	return nil
}

func (s *fakeLeadStore) ReleaseLead(_ context.Context, leadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.leads[leadID]; ok && l.Status == domain.LeadLocked {
		l.Status = domain.LeadUnowned
		l.CompanyID = nil
		l.LockedAt = nil
	}
	return nil
}

func (s *fakeLeadStore) UnlockLockedLeads(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.leads {
		if l.Status == domain.LeadLocked {
			l.Status = domain.LeadUnowned
			l.CompanyID = nil
			l.LockedAt = nil
			n++
		}
	}
	return n, nil
}

func (s *fakeLeadStore) UnlockDistributedPoolLeads(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recallErrs {
		return 0, &domain.ErrExternalService{Service: "supabase"}
	}
	n := 0
	for _, l := range s.leads {
		if l.Origin == domain.OriginPlatformPool && l.Status == domain.LeadDistributed {
			l.Status = domain.LeadUnowned
			l.CompanyID = nil
			l.DistributedAt = nil
			n++
		}
	}
	return n, nil
}

func (s *fakeLeadStore) InsertCompanyLead(_ context.Context, copy *domain.CompanyLead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.copies = append(s.copies, *copy)
	return nil
}

func (s *fakeLeadStore) DeletePlatformCompanyLeads(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []domain.CompanyLead
	n := 0
	for _, c := range s.copies {
		if c.Origin == domain.OriginPlatformPool {
			n++
			continue
		}
		kept = append(kept, c)
	}
	s.copies = kept
	return n, nil
}

func (s *fakeLeadStore) CountCompanyLeads(_ context.Context, companyID, origin string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.copies {
		if c.CompanyID == companyID && c.Origin == origin {
			n++
		}
	}
	return n, nil
}

func (s *fakeLeadStore) LastDistributedAt(_ context.Context, companyID string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *time.Time
	for i := range s.copies {
		c := &s.copies[i]
		if c.CompanyID != companyID {
			continue
		}
		if last == nil || c.DistributedAt.After(*last) {
			t := c.DistributedAt
			last = &t
		}
	}
	return last, nil
}

func (s *fakeLeadStore) DeletePoolLead(_ context.Context, leadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if l, ok := s.leads[leadID]; ok && l.Status == domain.LeadUnowned {
		delete(s.leads, leadID)
		for i, id := range s.order {
			if id == leadID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

type fakeCompanyStore struct {
	companies []domain.CompanyPolicy
	err       error

	mu      sync.Mutex
	toggles map[string]bool
}

func (s *fakeCompanyStore) ListCompanies(_ context.Context) ([]domain.CompanyPolicy, error) {
	return s.companies, s.err
}

func (s *fakeCompanyStore) GetCompany(_ context.Context, companyID string) (*domain.CompanyPolicy, error) {
	for i := range s.companies {
		if s.companies[i].ID == companyID {
			return &s.companies[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "companies", ID: companyID}
}

func (s *fakeCompanyStore) SetCompanyActive(_ context.Context, companyID string, active bool) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.toggles == nil {
		s.toggles = make(map[string]bool)
	}
	s.toggles[companyID] = active
	return nil
}

type fakeGate struct {
	mu     sync.Mutex
	paused bool
	err    error
}

func (g *fakeGate) IsPaused(_ context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused, g.err
}

func (g *fakeGate) SetPaused(_ context.Context, paused bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.paused = paused
	return nil
}

// poolLead builds an unowned platform-pool lead for test fixtures.
func poolLead(id, firstName, email, phone string) domain.Lead {
	return domain.Lead{
		ID:        id,
		FirstName: firstName,
		LastName:  "Driver",
		Email:     email,
		Phone:     phone,
		CDLClass:  "A",
		State:     "TX",
		Origin:    domain.OriginPlatformPool,
		Status:    domain.LeadUnowned,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
}
