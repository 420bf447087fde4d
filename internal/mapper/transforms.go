package mapper

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transform is a single named string operation in a mapping's transform chain
type Transform func(string) string

// transforms is the registry of named operations. Unknown names are no-ops so
// a misconfigured chain degrades instead of failing the whole import.
var transforms = map[string]Transform{
	"trim":              strings.TrimSpace,
	"uppercase":         strings.ToUpper,
	"lowercase":         strings.ToLower,
	"remove_spaces":     removeSpaces,
	"remove_diacritics": RemoveDiacritics,
	"normalize_ean":     NormalizeEAN,
	"parse_price":       parsePriceTransform,
	"parse_quantity":    parseQuantityTransform,
}

// ApplyTransforms runs the named operations left to right over value
func ApplyTransforms(value string, chain []string) string {
	for _, name := range chain {
		if fn, ok := transforms[name]; ok {
			value = fn(value)
		}
	}
	return value
}

// KnownTransform reports whether name is a registered operation
func KnownTransform(name string) bool {
	_, ok := transforms[name]
	return ok
}

func removeSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// parsePriceTransform reformats a price string to a canonical decimal string.
// Unparsable input is passed through unchanged; the typed parse at assignment
// time decides whether the record has a usable price.
func parsePriceTransform(s string) string {
	cents, err := ParsePrice(s)
	if err != nil {
		return s
	}
	return FormatCents(cents)
}

func parseQuantityTransform(s string) string {
	return strconv.Itoa(ParseQuantity(s))
}

// RemoveDiacritics strips combining marks after NFD decomposition, so that
// "Caffè" and "Caffe" compare equal in downstream matching.
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
