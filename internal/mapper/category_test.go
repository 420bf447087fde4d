package mapper

import (
	"testing"

	"github.com/listino/catalog-service/internal/types"
)

func TestResolveCategory(t *testing.T) {
	mappings := []types.CategoryMapping{
		{SupplierCategory: "Schede Video", CanonicalCategory: "GPU", Priority: 1},
		{SupplierCategory: "Notebook", CanonicalCategory: "Laptops", Priority: 2},
		{SupplierCategory: "Case", CanonicalCategory: "Cases", Priority: 3},
	}

	tests := []struct {
		name      string
		input     string
		canonical string
		matched   bool
		exact     bool
	}{
		{"Exact match", "Schede Video", "GPU", true, true},
		{"Exact case-insensitive", "SCHEDE VIDEO", "GPU", true, true},
		{"Exact with whitespace", "  Notebook ", "Laptops", true, true},
		{"Substring match", "Schede Video Gaming", "GPU", true, false},
		{"Substring case-insensitive", "notebook gaming 15\"", "Laptops", true, false},
		{"Short key inside longer string", "Case Modding Tools", "Cases", true, false},
		{"Unmapped", "Xyz123", "", false, false},
		{"Empty input", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveCategory(tt.input, mappings)
			if tt.matched {
				if res.Canonical == nil {
					t.Fatalf("ResolveCategory(%q) = nil, want %q", tt.input, tt.canonical)
				}
				if *res.Canonical != tt.canonical {
					t.Errorf("ResolveCategory(%q) = %q, want %q", tt.input, *res.Canonical, tt.canonical)
				}
				if res.Exact != tt.exact {
					t.Errorf("ResolveCategory(%q) exact = %v, want %v", tt.input, res.Exact, tt.exact)
				}
				return
			}
			if res.Canonical != nil {
				t.Errorf("ResolveCategory(%q) = %q, want nil", tt.input, *res.Canonical)
			}
		})
	}
}

func TestResolveCategoryExactOutranksSubstring(t *testing.T) {
	// A later exact mapping must win over an earlier substring candidate
	mappings := []types.CategoryMapping{
		{SupplierCategory: "Video", CanonicalCategory: "Generic Video", Priority: 1},
		{SupplierCategory: "Schede Video", CanonicalCategory: "GPU", Priority: 2},
	}

	res := ResolveCategory("Schede Video", mappings)
	if res.Canonical == nil || *res.Canonical != "GPU" {
		t.Fatalf("expected exact match GPU, got %v", res.Canonical)
	}
	if !res.Exact {
		t.Error("expected exact match flag")
	}
}
