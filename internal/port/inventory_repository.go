package port

import (
	"context"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

type InventoryRepository interface {
	// ListItems returns the organization's records matching the filter
	ListItems(ctx context.Context, orgID string, filter domain.ItemFilter) ([]domain.Item, error)

	// CountItems returns the organization's total record count
	CountItems(ctx context.Context, orgID string) (int, error)

	// InsertItem persists one new record
	InsertItem(ctx context.Context, item domain.Item) error

	// UpdateItems applies the patch to the given ids, returns rows affected
	UpdateItems(ctx context.Context, orgID string, ids []string, patch domain.ItemPatch) (int, error)

	// DeleteItems physically removes the given ids, returns rows removed
	DeleteItems(ctx context.Context, orgID string, ids []string) (int, error)

	// ListSKUs returns every non-empty SKU in the organization
	ListSKUs(ctx context.Context, orgID string) ([]string, error)
}
