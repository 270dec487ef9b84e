package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergesOverBase(t *testing.T) {
	dir := t.TempDir()

	writeList(t, dir, "academic_domains.txt", "# academic suffixes\n.ac.at\n\n.edu.sg\n")
	writeList(t, dir, "blacklisted_countries.txt", "KP\n")
	writeList(t, dir, "direct_accounts.txt", "Acme Corp\nGlobex Industries\n")

	base := Lists{
		AcademicSuffixes: []string{".edu"},
		FreemailDomains:  []string{"gmail.com"},
	}

	lists, err := Load(dir, base, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{".edu", ".ac.at", ".edu.sg"}, lists.AcademicSuffixes)
	assert.Equal(t, []string{"KP"}, lists.BlacklistedCountries)
	assert.Equal(t, []string{"Acme Corp", "Globex Industries"}, lists.DirectAccounts)
	// Files that do not exist leave the base untouched.
	assert.Equal(t, []string{"gmail.com"}, lists.FreemailDomains)
	assert.Empty(t, lists.ExcludedAddresses)
}

func TestLoadSkipsCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	writeList(t, dir, "excluded_addresses.txt", "# header\n\nspam@example.com\n  blocked.example  \n# trailing\n")

	lists, err := Load(dir, Lists{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"spam@example.com", "blocked.example"}, lists.ExcludedAddresses)
}

func TestLoadEmptyDirectory(t *testing.T) {
	lists, err := Load(t.TempDir(), Lists{AcademicSuffixes: []string{".edu"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".edu"}, lists.AcademicSuffixes)
}

func writeList(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
