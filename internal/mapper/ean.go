package mapper

import (
	"regexp"
	"strings"
)

var (
	nonDigitRe    = regexp.MustCompile(`[^0-9]`)
	placeholderRe = regexp.MustCompile(`^0+$`)
)

// NormalizeEAN normalizes a raw barcode string to a 13-digit EAN/GTIN.
// Non-digits are stripped, codes longer than 13 digits are truncated, and
// shorter codes are left-padded with zeros (UPC-A, EAN-8). Returns empty
// string for values that normalize to nothing or to an all-zero placeholder,
// which callers treat as a missing identity, not an error.
func NormalizeEAN(raw string) string {
	ean := nonDigitRe.ReplaceAllString(raw, "")
	if ean == "" {
		return ""
	}

	if len(ean) > 13 {
		ean = ean[:13]
	}
	if len(ean) < 13 {
		ean = strings.Repeat("0", 13-len(ean)) + ean
	}

	// All-zero placeholders carry no identity
	if placeholderRe.MatchString(ean) {
		return ""
	}

	return ean
}
