package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/obrennan/stocktalk/internal/core/domain"
	"github.com/obrennan/stocktalk/internal/port"
)

// maxNameFragment bounds the name filter before it reaches the datastore's
// substring matching.
const maxNameFragment = 64

// nameMetaChars are stripped from name fragments so they cannot act as
// wildcards in the datastore's pattern matching.
const nameMetaChars = `%_\*?[](){}^$.|+`

// defaultFilters names the implicit filter applied per action kind when the
// intent carries no narrowing filter of its own. Kinds without an entry match
// the whole organization; new kinds must opt in here to inherit a default.
var defaultFilters = map[domain.ActionKind]func(*domain.ItemFilter){
	domain.ActionGenerateSKU: func(f *domain.ItemFilter) { f.MissingSKU = true },
}

type Resolver struct {
	repo port.InventoryRepository
}

func NewResolver(repo port.InventoryRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve turns the intent's filter into the concrete candidate set, scoped
// to one organization. create_item takes no candidates and resolves to nil.
func (r *Resolver) Resolve(ctx context.Context, orgID string, intent domain.Intent) ([]domain.Item, error) {
	if intent.Kind == domain.ActionCreateItem {
		return nil, nil
	}

	filter := intent.Filter
	filter.NameContains = sanitizeNameFragment(filter.NameContains)

	if filter.Empty() {
		if apply, ok := defaultFilters[intent.Kind]; ok {
			apply(&filter)
		}
	}

	items, err := r.repo.ListItems(ctx, orgID, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// sanitizeNameFragment bounds the fragment length and drops pattern
// metacharacters and control characters.
func sanitizeNameFragment(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if n >= maxNameFragment {
			break
		}
		if unicode.IsControl(r) || strings.ContainsRune(nameMetaChars, r) {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
