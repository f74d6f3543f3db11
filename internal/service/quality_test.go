package service

import (
	"testing"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
)

func TestClassifyLead_RulePriority(t *testing.T) {
	// A lead matching several rules lands in the first bucket only, so
	// report counts stay disjoint.
	lead := domain.Lead{
		ID:        "lead-1",
		FirstName: "test",
		Email:     "test@example.com",
		Phone:     "123",
	}

	got := classifyLead(&lead, 10, map[string]string{})
	if got != domain.ReasonTestData {
		t.Errorf("expected testData to win, got %s", got)
	}
}

func TestClassifyLead_CleanLead(t *testing.T) {
	lead := domain.Lead{
		ID:        "lead-1",
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "maria.santos@haulmail.com",
		Phone:     "+1 (555) 123-4567",
	}

	if got := classifyLead(&lead, 10, map[string]string{}); got != "" {
		t.Errorf("expected clean, got %s", got)
	}
}

func TestClassifyLead_EmailOnlyIsEnoughContact(t *testing.T) {
	lead := domain.Lead{
		ID:    "lead-1",
		Email: "driver@haulmail.com",
	}

	if got := classifyLead(&lead, 10, map[string]string{}); got != "" {
		t.Errorf("lead with email but no phone flagged as %s", got)
	}
}

func TestPhoneDigits(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 123-4567": "15551234567",
		"555.123.4567":      "5551234567",
		"":                  "",
		"ext. 42":           "42",
	}
	for in, want := range cases {
		if got := phoneDigits(in); got != want {
			t.Errorf("phoneDigits(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDuplicatePhoneSet_OldestWins(t *testing.T) {
	leads := []domain.Lead{
		{ID: "lead-1", Phone: "5550001111"},
		{ID: "lead-2", Phone: "(555) 000-1111"},
		{ID: "lead-3", Phone: "5552223333"},
	}

	keepers := duplicatePhoneSet(leads)
	if keepers["5550001111"] != "lead-1" {
		t.Errorf("expected lead-1 as keeper, got %s", keepers["5550001111"])
	}
	if keepers["5552223333"] != "lead-3" {
		t.Errorf("expected lead-3 as keeper, got %s", keepers["5552223333"])
	}
}
