// Package normalizers provides item number normalization for cross-document matching
package normalizers

import (
	"regexp"
	"strings"
)

var separatorRuns = regexp.MustCompile(`[.\-_]+`)

// Normalize converts an item number to its canonical form so differently
// formatted identifiers can be compared across documents.
//
// Rules, applied in order:
//  1. Trim surrounding whitespace
//  2. Uppercase
//  3. Remove all internal whitespace
//  4. Collapse any run of '.', '_' or '-' into a single '-'
//  5. Strip leading and trailing '-'
//
// Whitespace and separator characters are intentionally treated differently:
// "DLX 100" normalizes to "DLX100" while "DLX.100" normalizes to "DLX-100".
// Total and idempotent; empty input yields the empty string.
func Normalize(itemNo string) string {
	if itemNo == "" {
		return ""
	}

	normalized := strings.TrimSpace(itemNo)
	normalized = strings.ToUpper(normalized)
	normalized = strings.Join(strings.Fields(normalized), "")
	normalized = separatorRuns.ReplaceAllString(normalized, "-")
	normalized = strings.Trim(normalized, "-")

	return normalized
}

// AreEquivalent reports whether two item numbers refer to the same logical
// item, i.e. their normalized forms are equal.
func AreEquivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsFormatDifferent reports whether two item numbers are equivalent but
// literally different. Used to surface upstream data-entry inconsistencies
// as format warnings.
func IsFormatDifferent(a, b string) bool {
	if !AreEquivalent(a, b) {
		return false
	}
	return strings.TrimSpace(a) != strings.TrimSpace(b)
}
