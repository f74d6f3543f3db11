package service

import (
	"strings"

	"github.com/haulhire/leadpool-engine-go/internal/domain"
)

// Quality rules for pool hygiene. A lead is classified under the first
// rule it matches, in the order below, so counts are disjoint.

// placeholderEmailDomains are throwaway domains seeded by demo forms
// and import tools. Leads carrying them never answer.
var placeholderEmailDomains = []string{
	"placeholder.com",
	"example.com",
	"example.org",
	"test.com",
	"noemail.com",
	"mailinator.com",
}

// testDataMarkers flag records created by QA or sales demos.
var testDataMarkers = []string{"test", "demo", "asdf", "xxx"}

// phoneDigits strips everything but digits from a phone value.
func phoneDigits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// duplicatePhoneSet returns the set of normalized phone numbers that
// appear on more than one lead, plus the id of the oldest lead holding
// each number. The oldest holder is kept; later duplicates are flagged.
func duplicatePhoneSet(leads []domain.Lead) map[string]string {
	keeper := make(map[string]string)
	for _, l := range leads {
		digits := phoneDigits(l.Phone)
		if digits == "" {
			continue
		}
		if _, seen := keeper[digits]; !seen {
			keeper[digits] = l.ID
		}
	}
	return keeper
}

// classifyLead returns the quality-rule bucket for a lead, or "" when
// the lead is clean. keepers maps normalized phone -> oldest lead id
// holding that phone (computed over the same scan batch).
func classifyLead(lead *domain.Lead, minPhoneDigits int, keepers map[string]string) string {
	email := strings.ToLower(strings.TrimSpace(lead.Email))
	digits := phoneDigits(lead.Phone)

	if email == "" && digits == "" {
		return domain.ReasonMissingContact
	}

	lowerName := strings.ToLower(lead.FirstName + " " + lead.LastName)
	for _, marker := range testDataMarkers {
		if strings.Contains(lowerName, marker) || strings.HasPrefix(email, marker+"@") {
			return domain.ReasonTestData
		}
	}

	if at := strings.LastIndex(email, "@"); at >= 0 {
		emailDomain := email[at+1:]
		for _, d := range placeholderEmailDomains {
			if emailDomain == d {
				return domain.ReasonPlaceholderEmail
			}
		}
	}

	if digits != "" && len(digits) < minPhoneDigits {
		return domain.ReasonShortPhone
	}

	if digits != "" {
		if keeperID, ok := keepers[digits]; ok && keeperID != lead.ID {
			return domain.ReasonDuplicatePhone
		}
	}

	return ""
}
