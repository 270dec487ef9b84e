package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "Example University", "example university"},
		{"diacritics", "Universität zu Köln", "universitat zu koln"},
		{"eszett", "Große Straße", "grosse strasse"},
		{"french accents", "Université de Liège", "universite de liege"},
		{"punctuation collapses", "Acme, Inc. (EMEA)", "acme inc emea"},
		{"digits kept", "42 Labs", "42 labs"},
		{"empty", "", ""},
		{"only punctuation", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.input))
		})
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"universitat", "bonn"}, Words("Universität Bonn"))
	assert.Nil(t, Words("  ...  "))
	assert.Nil(t, Words(""))
}
