package mapper

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  int64
		expectErr bool
	}{
		{"Dot decimal", "12.99", 1299, false},
		{"Comma decimal", "12,99", 1299, false},
		{"European thousands", "1.299,00", 129900, false},
		{"US thousands", "1,299.00", 129900, false},
		{"Euro symbol", "12,99 €", 1299, false},
		{"Dollar prefix", "$12.99", 1299, false},
		{"Currency text suffix", "12.99 EUR", 1299, false},
		{"Integer price", "100", 10000, false},
		{"Thousands with space", "1 299,00", 129900, false},
		{"Half-up rounding", "9.995", 1000, false},
		{"Empty", "", 0, true},
		{"Garbage", "n/a", 0, true},
		{"Only currency", "€", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParsePrice(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParsePrice(%q) = %d, want error", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"Plain integer", "5", 5},
		{"Zero", "0", 0},
		{"Negative clamped", "-3", 0},
		{"Decimal truncated", "5.0", 5},
		{"Comma decimal truncated", "5,7", 5},
		{"Unparsable", "many", 0},
		{"Empty", "", 0},
		{"Whitespace", "  12  ", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuantity(tt.input); got != tt.expected {
				t.Errorf("ParseQuantity(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(1299); got != "12.99" {
		t.Errorf("FormatCents(1299) = %q, want %q", got, "12.99")
	}
	if got := FormatCents(100); got != "1.00" {
		t.Errorf("FormatCents(100) = %q, want %q", got, "1.00")
	}
}
