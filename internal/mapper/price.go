package mapper

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var currencyTextRe = regexp.MustCompile(`\s*(EUR|USD|GBP|CHF)\s*$`)

// ParsePrice parses a price string to cents (integer).
// Handles various formats: "12.99", "12,99", "1.299,00", "1 299,00 €"
func ParsePrice(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty price value")
	}

	cleaned := strings.TrimSpace(value)
	cleaned = strings.Map(func(r rune) rune {
		// Drop currency symbols and thousands-separator spaces
		if r == '€' || r == '$' || r == '£' || r == '¥' ||
			r == '¢' || r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, cleaned)

	cleaned = currencyTextRe.ReplaceAllString(strings.ToUpper(cleaned), "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value found")
	}

	// Whichever of '.' and ',' appears last is the decimal separator;
	// the other one is a thousands separator and is removed.
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	if lastComma > lastDot {
		// European format: 1.234,56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else if lastDot > lastComma {
		// US format: 1,234.56
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	result, err := parseFloat(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid price format: %w", err)
	}

	// Half-up rounding to 2 decimals via cents
	return int64(math.Round(result * 100)), nil
}

// ParseQuantity parses a quantity string to a non-negative integer.
// Negative or unparsable values yield 0, never an error.
func ParseQuantity(value string) int {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}

	// Tolerate decimal quantities by truncating ("5.0" -> 5)
	if idx := strings.IndexAny(cleaned, ".,"); idx >= 0 {
		cleaned = cleaned[:idx]
	}

	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseFloat safely parses a float with better error handling
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	hasDigit := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return 0, fmt.Errorf("no digits found")
	}

	return strconv.ParseFloat(s, 64)
}

// FormatCents formats cents as a decimal string (e.g., 1299 -> "12.99")
func FormatCents(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
