package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeCountryLookup struct {
	codes map[string]string
	err   error
}

func (f *fakeCountryLookup) Country(ctx context.Context, domain string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.codes[domain], nil
}

func TestNormalizeAddress(t *testing.T) {
	n := NewNormalizer(nil, zap.NewNop())

	tests := []struct {
		name       string
		address    string
		wantAddr   string
		wantDomain string
	}{
		{"lower-cases and trims", "  Jane.Doe@School.EDU ", "jane.doe@school.edu", "school.edu"},
		{"splits on last at", `"odd@local"@example.com`, `"odd@local"@example.com`, "example.com"},
		{"no at sign", "not-an-address", "not-an-address", InvalidDomain},
		{"empty local part", "@example.com", "@example.com", InvalidDomain},
		{"empty domain", "jane@", "jane@", InvalidDomain},
		{"empty address", "", "", InvalidDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := n.Normalize(context.Background(), &RawLead{Address: tt.address})
			assert.Equal(t, tt.wantAddr, lead.Address)
			assert.Equal(t, tt.wantDomain, lead.Domain)
			assert.Equal(t, tt.wantDomain == InvalidDomain, lead.Malformed())
		})
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	n := NewNormalizer(nil, zap.NewNop())

	for _, address := range []string{"", "@", "@@", "a@b@", "@a@b", "plain"} {
		lead := n.Normalize(context.Background(), &RawLead{Address: address})
		assert.NotNil(t, lead, "address %q", address)
	}
}

func TestInferCountryPrefersLookup(t *testing.T) {
	lookup := &fakeCountryLookup{codes: map[string]string{"example.de": "de"}}
	n := NewNormalizer(lookup, zap.NewNop())

	lead := n.Normalize(context.Background(), &RawLead{
		Address: "jane@example.de",
		Country: "FR",
	})
	assert.Equal(t, "DE", lead.Country)
}

func TestInferCountryFallsBackToReportedCode(t *testing.T) {
	n := NewNormalizer(&fakeCountryLookup{}, zap.NewNop())

	lead := n.Normalize(context.Background(), &RawLead{
		Address: "jane@example.com",
		Country: "fr",
	})
	assert.Equal(t, "FR", lead.Country)

	// Free-text country names do not drive classification.
	lead = n.Normalize(context.Background(), &RawLead{
		Address: "jane@example.com",
		Country: "France",
	})
	assert.Equal(t, "", lead.Country)
}

func TestInferCountryLookupFailureIsNotFatal(t *testing.T) {
	lookup := &fakeCountryLookup{err: errors.New("geoip database unavailable")}
	n := NewNormalizer(lookup, zap.NewNop())

	lead := n.Normalize(context.Background(), &RawLead{Address: "jane@example.com"})
	assert.Equal(t, "", lead.Country)
	assert.False(t, lead.Malformed())
}

func TestNormalizeSkipsCountryForMalformed(t *testing.T) {
	lookup := &fakeCountryLookup{codes: map[string]string{InvalidDomain: "XX"}}
	n := NewNormalizer(lookup, zap.NewNop())

	lead := n.Normalize(context.Background(), &RawLead{Address: "broken"})
	assert.True(t, lead.Malformed())
	assert.Equal(t, "", lead.Country)
}
