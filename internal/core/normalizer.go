package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Normalizer derives the comparable fields a lead is classified under.
// Normalize is total: malformed input produces a NormalizedLead flagged
// with the InvalidDomain sentinel instead of an error, because a malformed
// lead is itself a reportable outcome, not a pipeline fault.
type Normalizer struct {
	countries CountryLookup
	logger    *zap.Logger
}

// NewNormalizer creates a normalizer. The country lookup may be nil, in
// which case only the self-reported country code is considered.
func NewNormalizer(countries CountryLookup, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		countries: countries,
		logger:    logger,
	}
}

// Normalize lower-cases and trims the address, splits the domain on the
// last '@', and infers the country. A lookup failure is treated as
// "country absent"; the batch never aborts over an unavailable lookup.
func (n *Normalizer) Normalize(ctx context.Context, raw *RawLead) *NormalizedLead {
	address := strings.ToLower(strings.TrimSpace(raw.Address))

	lead := &NormalizedLead{
		Address: address,
		Domain:  splitDomain(address),
		Raw:     raw,
	}

	if lead.Malformed() {
		n.logger.Debug("Lead address is malformed, routing to review",
			zap.String("address", raw.Address))
		return lead
	}

	lead.Country = n.inferCountry(ctx, lead.Domain, raw.Country)
	return lead
}

// splitDomain extracts the domain after the last '@'. Empty local part,
// empty domain, or a missing '@' all yield the InvalidDomain sentinel.
func splitDomain(address string) string {
	at := strings.LastIndex(address, "@")
	if at <= 0 || at == len(address)-1 {
		return InvalidDomain
	}
	return address[at+1:]
}

func (n *Normalizer) inferCountry(ctx context.Context, domain, reported string) string {
	if n.countries != nil {
		code, err := n.countries.Country(ctx, domain)
		if err != nil {
			n.logger.Debug("Country lookup failed, proceeding without country",
				zap.String("domain", domain),
				zap.Error(err))
		} else if code != "" {
			return strings.ToUpper(code)
		}
	}

	// Fall back to the self-reported country when it already looks like
	// an ISO alpha-2 code. Free-text country names stay in the raw lead
	// for the report but do not drive classification.
	reported = strings.TrimSpace(reported)
	if len(reported) == 2 {
		return strings.ToUpper(reported)
	}

	return ""
}
