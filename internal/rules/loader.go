package rules

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// List file names looked up inside the rules directory. Each file holds one
// entry per line; blank lines and lines starting with '#' are skipped.
const (
	academicSuffixesFile     = "academic_domains.txt"
	academicKeywordsFile     = "academic_keywords.txt"
	commercialMarkersFile    = "commercial_markers.txt"
	directAccountsFile       = "direct_accounts.txt"
	excludedAddressesFile    = "excluded_addresses.txt"
	blacklistedCountriesFile = "blacklisted_countries.txt"
	freemailDomainsFile      = "freemail_domains.txt"
)

// Load reads rule lists from a directory and merges them over the base
// lists. Missing files are skipped, matching how operators maintain the
// lists piecemeal; an unreadable file is an error.
func Load(dir string, base Lists, logger *zap.Logger) (Lists, error) {
	merged := base

	files := []struct {
		name   string
		target *[]string
	}{
		{academicSuffixesFile, &merged.AcademicSuffixes},
		{academicKeywordsFile, &merged.AcademicKeywords},
		{commercialMarkersFile, &merged.CommercialMarkers},
		{directAccountsFile, &merged.DirectAccounts},
		{excludedAddressesFile, &merged.ExcludedAddresses},
		{blacklistedCountriesFile, &merged.BlacklistedCountries},
		{freemailDomainsFile, &merged.FreemailDomains},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		entries, err := readListFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				if logger != nil {
					logger.Debug("Rule list file not found, skipping",
						zap.String("file", path))
				}
				continue
			}
			return Lists{}, fmt.Errorf("failed to read rule list %s: %w", path, err)
		}
		*f.target = append(*f.target, entries...)
		if logger != nil {
			logger.Debug("Loaded rule list file",
				zap.String("file", path),
				zap.Int("entries", len(entries)))
		}
	}

	return merged, nil
}

func readListFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
