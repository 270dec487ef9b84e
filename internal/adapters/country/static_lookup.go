package country

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// StaticLookup resolves a domain's country from a configured table, with an
// optional country-code TLD fallback ("example.de" -> "DE"). It is pure and
// never errors, the simplest implementation of the CountryLookup port.
type StaticLookup struct {
	table         map[string]string
	cctldFallback bool
	logger        *zap.Logger
}

// Generic TLDs that must never be read as country codes via the fallback.
// ccTLDs are exactly two letters, so only two-letter generics matter; none
// exist today, but the set keeps the intent explicit and extensible.
var nonCountryTLDs = map[string]struct{}{
	"com": {}, "org": {}, "net": {}, "edu": {}, "gov": {}, "int": {}, "mil": {},
}

// NewStaticLookup creates a table-backed lookup. Table keys are domains,
// values ISO 3166-1 alpha-2 codes.
func NewStaticLookup(table map[string]string, cctldFallback bool, logger *zap.Logger) *StaticLookup {
	normalized := make(map[string]string, len(table))
	for domain, code := range table {
		domain = strings.ToLower(strings.TrimSpace(domain))
		code = strings.ToUpper(strings.TrimSpace(code))
		if domain == "" || code == "" {
			continue
		}
		normalized[domain] = code
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized static country table", zap.Int("entries", len(normalized)))
	}

	return &StaticLookup{
		table:         normalized,
		cctldFallback: cctldFallback,
		logger:        logger,
	}
}

// Country returns the table entry for the domain or any parent domain,
// then falls back to the ccTLD when enabled. Unknown domains yield "".
func (l *StaticLookup) Country(ctx context.Context, domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", nil
	}

	// Walk up the labels so "mail.example.de" hits an "example.de" entry.
	for probe := domain; probe != ""; {
		if code, ok := l.table[probe]; ok {
			return code, nil
		}
		dot := strings.Index(probe, ".")
		if dot < 0 {
			break
		}
		probe = probe[dot+1:]
	}

	if l.cctldFallback {
		labels := strings.Split(domain, ".")
		tld := labels[len(labels)-1]
		if len(tld) == 2 {
			if _, generic := nonCountryTLDs[tld]; !generic {
				return strings.ToUpper(tld), nil
			}
		}
	}

	return "", nil
}
