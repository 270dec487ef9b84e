package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold strips combining marks after NFKD decomposition, so that
// "Universität" and "Universitat" compare equal.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes free text for keyword comparison: diacritics removed,
// lower-cased, any non-alphanumeric run collapsed to a single space.
func Fold(text string) string {
	if text == "" {
		return ""
	}

	// ß has no combining-mark decomposition, handle it before folding
	text = strings.ReplaceAll(text, "ß", "ss")

	folded, _, err := transform.String(asciiFold, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// Words folds text and splits it into comparison tokens.
func Words(text string) []string {
	folded := Fold(text)
	if folded == "" {
		return nil
	}
	return strings.Split(folded, " ")
}
