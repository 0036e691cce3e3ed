package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noneTaken(string) bool { return false }

func TestGenerateSKU_Deterministic(t *testing.T) {
	a := GenerateSKU("Peri Peri Biltong", "Snacks", noneTaken)
	b := GenerateSKU("Peri Peri Biltong", "Snacks", noneTaken)

	assert.Equal(t, a, b)
	assert.Equal(t, "SNAC-PPB", a)
}

func TestGenerateSKU_SingleWordUsesPrefix(t *testing.T) {
	assert.Equal(t, "SNAC-BILT", GenerateSKU("Biltong", "Snacks", noneTaken))
	assert.Equal(t, "DROE", GenerateSKU("Droewors", "", noneTaken))
}

func TestGenerateSKU_EmptyNameFallsBack(t *testing.T) {
	assert.Equal(t, "ITEM", GenerateSKU("", "", noneTaken))
	assert.Equal(t, "SNAC-ITEM", GenerateSKU("???", "Snacks", noneTaken))
}

func TestGenerateSKU_CollisionAppendsSuffix(t *testing.T) {
	taken := map[string]bool{"SNAC-BILT": true}
	exists := func(c string) bool { return taken[c] }

	got := GenerateSKU("Biltong", "Snacks", exists)
	assert.Equal(t, "SNAC-BILT-2", got)

	taken[got] = true
	assert.Equal(t, "SNAC-BILT-3", GenerateSKU("Biltong", "Snacks", exists))
}

func TestGenerateSKU_BatchIsPairwiseDistinct(t *testing.T) {
	// Same name over and over, the way a batch of unlabeled records can look.
	taken := map[string]bool{"BILT": true, "SNAC-BILT": true}
	exists := func(c string) bool { return taken[c] }

	var generated []string
	for i := 0; i < 20; i++ {
		code := GenerateSKU("Biltong", "Snacks", exists)
		assert.False(t, taken[code], "collision on %s", code)
		taken[code] = true
		generated = append(generated, code)
	}

	seen := make(map[string]bool)
	for _, code := range generated {
		assert.False(t, seen[code], "duplicate %s", code)
		seen[code] = true
	}
}

func TestGenerateSKU_SuffixScanSkipsGaps(t *testing.T) {
	taken := map[string]bool{"BILT": true, "BILT-2": true, "BILT-3": true}
	got := GenerateSKU("Biltong", "", func(c string) bool { return taken[c] })
	assert.Equal(t, "BILT-4", got)
}

func TestSkuPart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Biltong", "BILT"},
		{"Peri Peri Biltong", "PPB"},
		{"dry aged beef sticks extra", "DABS"},
		{"a", "A"},
		{"", ""},
		{"!!!", ""},
		{"100g Packs", "1P"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, skuPart(tt.in), "input %q", tt.in)
	}
}

func ExampleGenerateSKU() {
	fmt.Println(GenerateSKU("Peri Peri Biltong", "Snacks", func(string) bool { return false }))
	// Output: SNAC-PPB
}
