package mapper

import (
	"testing"
)

func TestNormalizeEAN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Valid EAN-13", "8001234567890", "8001234567890"},
		{"UPC-A padded to 13", "123456789012", "0123456789012"},
		{"EAN-8 padded to 13", "12345678", "0000012345678"},
		{"Strip hyphens", "800-1234-567-890", "8001234567890"},
		{"Strip spaces", "800 1234 567 890", "8001234567890"},
		{"Strip letters", "EAN:8001234567890", "8001234567890"},
		{"Truncate longer than 13", "80012345678901234", "8001234567890"},
		{"All zeros placeholder", "0000000000000", ""},
		{"Zeros with separators", "00-00-00", ""},
		{"Empty string", "", ""},
		{"No digits at all", "n/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeEAN(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeEAN(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
