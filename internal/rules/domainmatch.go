package rules

import (
	"strings"

	"github.com/premql/lead-triage/internal/textnorm"
)

// Legal-form and filler words stripped from an organization name before it
// is compared against the email domain. "Acme Holdings GmbH" and "acme.de"
// should compare equal.
var companySuffixWords = map[string]struct{}{
	"gmbh": {}, "ag": {}, "se": {}, "ltd": {}, "limited": {}, "inc": {},
	"corp": {}, "corporation": {}, "llc": {}, "plc": {}, "sa": {}, "srl": {},
	"bv": {}, "nv": {}, "kg": {}, "ohg": {}, "gbr": {}, "co": {},
	"company": {}, "group": {}, "holding": {}, "holdings": {},
	"international": {},
}

// Subdomain labels that carry no company identity.
var genericSubdomains = map[string]struct{}{
	"mail": {}, "email": {}, "webmail": {}, "smtp": {}, "pop": {},
	"imap": {}, "www": {},
}

const domainMismatchThreshold = 0.5

// IsDomainMismatch reports whether the organization name and the email
// domain look unrelated. It is a weak signal: it only fires when both sides
// are present and the similarity of the normalized names falls below the
// threshold, so a missing organization never counts as a mismatch.
func (rs *RuleSet) IsDomainMismatch(organization, domain string) bool {
	if organization == "" || domain == "" {
		return false
	}

	company := normalizeCompanyName(organization)
	name := normalizeCompanyName(mainDomainLabel(domain))
	if company == "" || name == "" {
		return false
	}

	return similarity(company, name) < domainMismatchThreshold
}

// mainDomainLabel extracts the label that names the organization:
// "mail.acme.co.uk" -> "acme", "acme.de" -> "acme".
func mainDomainLabel(domain string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(domain)), ".")
	if len(parts) >= 2 {
		if _, generic := genericSubdomains[parts[0]]; generic {
			parts = parts[1:]
		}
	}

	switch {
	case len(parts) >= 3 && len(parts[len(parts)-2]) <= 3:
		// Short second-level labels are registry suffixes (.co.uk, .com.au).
		return parts[len(parts)-3]
	case len(parts) >= 2:
		return parts[len(parts)-2]
	default:
		return parts[0]
	}
}

// normalizeCompanyName folds the name to ASCII, drops legal-form words, and
// strips everything but letters and digits.
func normalizeCompanyName(name string) string {
	var b strings.Builder
	for _, word := range textnorm.Words(name) {
		if _, skip := companySuffixWords[word]; skip {
			continue
		}
		b.WriteString(word)
	}
	return b.String()
}

// similarity scores two normalized names in [0, 1]: equality is 1.0, one
// containing the other is 0.8, otherwise the share of positions with equal
// bytes relative to the longer name.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	matches := 0
	for i := 0; i < shorter; i++ {
		if a[i] == b[i] {
			matches++
		}
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(matches) / float64(longer)
}
