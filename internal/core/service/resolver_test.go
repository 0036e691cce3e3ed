package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

func TestResolve_ConjunctiveFilters(t *testing.T) {
	repo := newMockRepo(
		domain.Item{ID: "1", OrgID: "org-1", Name: "Peri Peri Biltong", Category: "Snacks", Kind: domain.ItemKindStock},
		domain.Item{ID: "2", OrgID: "org-1", Name: "Original Biltong", Category: "Snacks", Kind: domain.ItemKindStock},
		domain.Item{ID: "3", OrgID: "org-1", Name: "Biltong Slicer", Category: "Equipment", Kind: domain.ItemKindOperational},
		domain.Item{ID: "4", OrgID: "org-2", Name: "Chilli Biltong", Category: "Snacks", Kind: domain.ItemKindStock},
	)
	r := NewResolver(repo)

	intent := domain.Intent{
		Kind:   domain.ActionSetQuantity,
		Filter: domain.ItemFilter{NameContains: "biltong", Category: "Snacks"},
	}
	items, err := r.Resolve(context.Background(), "org-1", intent)
	require.NoError(t, err)

	// Name substring AND category, scoped to org-1.
	require.Len(t, items, 2)
	assert.Equal(t, "Original Biltong", items[0].Name)
	assert.Equal(t, "Peri Peri Biltong", items[1].Name)
}

func TestResolve_CreateItemTakesNoCandidates(t *testing.T) {
	repo := newMockRepo(domain.Item{ID: "1", OrgID: "org-1", Name: "Biltong"})
	r := NewResolver(repo)

	items, err := r.Resolve(context.Background(), "org-1", domain.Intent{Kind: domain.ActionCreateItem})
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestResolve_GenerateSKUDefaultsToMissingOnly(t *testing.T) {
	repo := newMockRepo(
		domain.Item{ID: "1", OrgID: "org-1", Name: "Biltong", SKU: "SNAC-BILT"},
		domain.Item{ID: "2", OrgID: "org-1", Name: "Droewors"},
		domain.Item{ID: "3", OrgID: "org-1", Name: "Chilli Sticks"},
	)
	r := NewResolver(repo)

	items, err := r.Resolve(context.Background(), "org-1", domain.Intent{Kind: domain.ActionGenerateSKU})
	require.NoError(t, err)

	require.Len(t, items, 2)
	for _, it := range items {
		assert.Empty(t, it.SKU)
	}
}

func TestResolve_GenerateSKUWithFilterKeepsFilter(t *testing.T) {
	repo := newMockRepo(
		domain.Item{ID: "1", OrgID: "org-1", Name: "Biltong", SKU: "SNAC-BILT"},
		domain.Item{ID: "2", OrgID: "org-1", Name: "Droewors"},
	)
	r := NewResolver(repo)

	intent := domain.Intent{Kind: domain.ActionGenerateSKU, Filter: domain.ItemFilter{NameContains: "Biltong"}}
	items, err := r.Resolve(context.Background(), "org-1", intent)
	require.NoError(t, err)

	// An explicit filter overrides the missing-SKU default, so the record
	// that already has a SKU is still a candidate.
	require.Len(t, items, 1)
	assert.Equal(t, "Biltong", items[0].Name)
}

func TestResolve_OtherKindsHaveNoImplicitDefault(t *testing.T) {
	repo := newMockRepo(
		domain.Item{ID: "1", OrgID: "org-1", Name: "Biltong", SKU: "A"},
		domain.Item{ID: "2", OrgID: "org-1", Name: "Droewors"},
	)
	r := NewResolver(repo)

	items, err := r.Resolve(context.Background(), "org-1", domain.Intent{Kind: domain.ActionMarkOrdered})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSanitizeNameFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Biltong", "Biltong"},
		{"  Biltong  ", "Biltong"},
		{"Bil%tong_", "Biltong"},
		{`100% \real\ nuts`, "100 real nuts"},
		{"(Nuts)*?", "Nuts"},
		{"", ""},
		{"%%%", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeNameFragment(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeNameFragment_BoundsLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := sanitizeNameFragment(long)
	assert.Len(t, got, maxNameFragment)
}
