package rules

import (
	"strings"

	"go.uber.org/zap"

	"github.com/premql/lead-triage/internal/textnorm"
)

// Lists holds the raw rule data before normalization. Entries come from
// configuration or from list files via Load.
type Lists struct {
	// AcademicSuffixes are domain suffixes accepted as academic
	// institutions, e.g. ".edu" or "uni-bonn.de".
	AcademicSuffixes []string
	// AcademicKeywords mark an organization name as academic when one of
	// them appears as a whole word, e.g. "university", "hochschule".
	AcademicKeywords []string
	// CommercialMarkers veto the keyword check: an organization carrying
	// one of these ("gmbh", "consulting", ...) is never treated as
	// academic by name alone.
	CommercialMarkers []string
	// DirectAccounts are organization names of known commercial customers
	// that already buy through a direct channel; their leads are rejected
	// and never treated as academic.
	DirectAccounts []string
	// ExcludedAddresses rejects exact addresses or whole domains.
	ExcludedAddresses []string
	// BlacklistedCountries holds ISO 3166-1 alpha-2 codes.
	BlacklistedCountries []string
	// FreemailDomains are consumer mail providers; leads from them need
	// human review.
	FreemailDomains []string
}

// RuleSet is the immutable rule data consulted by the classifier. It is
// built once per batch run and never mutated afterwards.
type RuleSet struct {
	academicSuffixes     []string
	academicKeywords     map[string]struct{}
	commercialMarkers    map[string]struct{}
	directAccounts       map[string]struct{}
	excluded             map[string]struct{}
	blacklistedCountries map[string]struct{}
	freemail             map[string]struct{}
}

// New builds a RuleSet from raw lists. All entries are trimmed and
// lower-cased; country codes are upper-cased.
func New(lists Lists, logger *zap.Logger) *RuleSet {
	rs := &RuleSet{
		academicSuffixes:     make([]string, 0, len(lists.AcademicSuffixes)),
		academicKeywords:     toSet(lists.AcademicKeywords, strings.ToLower),
		commercialMarkers:    toSet(lists.CommercialMarkers, strings.ToLower),
		directAccounts:       toSet(lists.DirectAccounts, strings.ToLower),
		excluded:             toSet(lists.ExcludedAddresses, strings.ToLower),
		blacklistedCountries: toSet(lists.BlacklistedCountries, strings.ToUpper),
		freemail:             toSet(lists.FreemailDomains, strings.ToLower),
	}

	for _, suffix := range lists.AcademicSuffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" {
			continue
		}
		rs.academicSuffixes = append(rs.academicSuffixes, suffix)
	}

	if logger != nil {
		logger.Info("Loaded rule set",
			zap.Int("academic_suffixes", len(rs.academicSuffixes)),
			zap.Int("academic_keywords", len(rs.academicKeywords)),
			zap.Int("direct_accounts", len(rs.directAccounts)),
			zap.Int("excluded_entries", len(rs.excluded)),
			zap.Int("blacklisted_countries", len(rs.blacklistedCountries)),
			zap.Int("freemail_domains", len(rs.freemail)))
	}

	return rs
}

func toSet(values []string, canon func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = canon(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

// IsAcademicDomain reports whether the domain matches one of the academic
// suffixes. A suffix either equals the domain or terminates it at a label
// boundary, so ".edu" matches "school.edu" but not "fakeedu".
func (rs *RuleSet) IsAcademicDomain(domain string) bool {
	if domain == "" {
		return false
	}
	for _, suffix := range rs.academicSuffixes {
		if domain == strings.TrimPrefix(suffix, ".") {
			return true
		}
		if strings.HasSuffix(domain, suffix) && (strings.HasPrefix(suffix, ".") ||
			strings.HasSuffix(domain, "."+suffix)) {
			return true
		}
	}
	return false
}

// IsAcademicName reports whether the organization name contains an academic
// keyword as a whole word. Commercial markers anywhere in the name veto the
// match; a consultancy with "university" in its client list is not a lead
// from a university.
func (rs *RuleSet) IsAcademicName(organization string) bool {
	if organization == "" || len(rs.academicKeywords) == 0 {
		return false
	}

	words := textnorm.Words(organization)
	for _, word := range words {
		if _, ok := rs.commercialMarkers[word]; ok {
			return false
		}
	}
	for _, word := range words {
		if _, ok := rs.academicKeywords[word]; ok {
			return true
		}
	}
	return false
}

// IsDirectAccount reports whether the organization name is a known direct
// customer. Comparison is exact after trimming and lower-casing.
func (rs *RuleSet) IsDirectAccount(organization string) bool {
	if organization == "" {
		return false
	}
	_, ok := rs.directAccounts[strings.ToLower(strings.TrimSpace(organization))]
	return ok
}

// IsExcluded reports whether the exact address or its domain is on the
// exclusion list.
func (rs *RuleSet) IsExcluded(address, domain string) bool {
	if _, ok := rs.excluded[address]; ok {
		return true
	}
	if domain == "" {
		return false
	}
	_, ok := rs.excluded[domain]
	return ok
}

// IsCountryBlacklisted reports whether the ISO country code is blacklisted.
func (rs *RuleSet) IsCountryBlacklisted(country string) bool {
	if country == "" {
		return false
	}
	_, ok := rs.blacklistedCountries[strings.ToUpper(country)]
	return ok
}

// IsFreemail reports whether the domain belongs to a consumer mail provider.
func (rs *RuleSet) IsFreemail(domain string) bool {
	if domain == "" {
		return false
	}
	_, ok := rs.freemail[domain]
	return ok
}
