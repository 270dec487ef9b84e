package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testRuleSet() *RuleSet {
	return New(Lists{
		AcademicSuffixes:     []string{".edu", ".ac.uk", "uni-bonn.de"},
		AcademicKeywords:     []string{"university", "universitat", "hochschule", "college"},
		CommercialMarkers:    []string{"gmbh", "consulting", "inc"},
		DirectAccounts:       []string{"Acme Corp", "globex industries"},
		ExcludedAddresses:    []string{"spam@example.com", "blocked.example"},
		BlacklistedCountries: []string{"kp", "IR"},
		FreemailDomains:      []string{"gmail.com", "web.de"},
	}, zap.NewNop())
}

func TestIsAcademicDomain(t *testing.T) {
	rs := testRuleSet()

	tests := []struct {
		domain string
		want   bool
	}{
		{"school.edu", true},
		{"mail.school.edu", true},
		{"oxford.ac.uk", true},
		{"uni-bonn.de", true},
		{"cs.uni-bonn.de", true},
		{"fakeedu", false},
		{"notuni-bonn.de", false},
		{"school.education", false},
		{"example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.IsAcademicDomain(tt.domain))
		})
	}
}

func TestIsAcademicName(t *testing.T) {
	rs := testRuleSet()

	tests := []struct {
		name string
		org  string
		want bool
	}{
		{"keyword match", "Example University", true},
		{"diacritic keyword", "Universität Bonn", true},
		{"keyword as substring only", "Universal Exports", false},
		{"commercial marker veto", "University Consulting GmbH", false},
		{"marker alone", "Acme GmbH", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.IsAcademicName(tt.org))
		})
	}
}

func TestIsDirectAccount(t *testing.T) {
	rs := testRuleSet()

	tests := []struct {
		org  string
		want bool
	}{
		{"Acme Corp", true},
		{"acme corp", true},
		{"  ACME CORP  ", true},
		{"Globex Industries", true},
		{"Acme", false},
		{"Acme Corporation", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.org, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.IsDirectAccount(tt.org))
		})
	}
}

func TestIsExcluded(t *testing.T) {
	rs := testRuleSet()

	assert.True(t, rs.IsExcluded("spam@example.com", "example.com"))
	assert.True(t, rs.IsExcluded("anyone@blocked.example", "blocked.example"))
	assert.False(t, rs.IsExcluded("fine@example.com", "example.com"))
	assert.False(t, rs.IsExcluded("fine@example.com", ""))
}

func TestIsCountryBlacklisted(t *testing.T) {
	rs := testRuleSet()

	assert.True(t, rs.IsCountryBlacklisted("KP"))
	assert.True(t, rs.IsCountryBlacklisted("kp"))
	assert.True(t, rs.IsCountryBlacklisted("IR"))
	assert.False(t, rs.IsCountryBlacklisted("DE"))
	assert.False(t, rs.IsCountryBlacklisted(""))
}

func TestIsFreemail(t *testing.T) {
	rs := testRuleSet()

	assert.True(t, rs.IsFreemail("gmail.com"))
	assert.True(t, rs.IsFreemail("web.de"))
	assert.False(t, rs.IsFreemail("corp.example"))
}

func TestNewTrimsAndCanonicalizes(t *testing.T) {
	rs := New(Lists{
		AcademicSuffixes:     []string{"  .EDU ", ""},
		BlacklistedCountries: []string{" kp "},
		FreemailDomains:      []string{" GMAIL.COM "},
	}, nil)

	assert.True(t, rs.IsAcademicDomain("school.edu"))
	assert.True(t, rs.IsCountryBlacklisted("KP"))
	assert.True(t, rs.IsFreemail("gmail.com"))
}
