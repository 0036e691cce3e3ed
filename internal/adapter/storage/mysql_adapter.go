package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

const itemColumns = `id, org_id, name, sku, invoice_ref, quantity, reorder_threshold,
	category, kind, operational_group, expires_at, order_status, last_restock_at,
	created_at, updated_at`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) ListItems(ctx context.Context, orgID string, filter domain.ItemFilter) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE org_id = ?`
	args := []any{orgID}

	if filter.Invoice != "" {
		query += " AND invoice_ref = ?"
		args = append(args, filter.Invoice)
	}
	if filter.SKU != "" {
		query += " AND sku = ?"
		args = append(args, filter.SKU)
	}
	if filter.NameContains != "" {
		query += ` AND LOWER(name) LIKE ? ESCAPE '\\'`
		args = append(args, "%"+escapeLike(strings.ToLower(filter.NameContains))+"%")
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.OperationalGroup != "" {
		query += " AND operational_group = ?"
		args = append(args, filter.OperationalGroup)
	}
	if filter.MissingSKU {
		query += " AND sku = ''"
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) CountItems(ctx context.Context, orgID string) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE org_id = ?`, orgID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (m *MySQLAdapter) InsertItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OrgID, item.Name, item.SKU, item.Invoice, item.Quantity,
		item.ReorderThreshold, item.Category, item.Kind, item.OperationalGroup,
		nullTime(item.ExpiresAt), item.OrderStatus, nullTime(item.LastRestockAt),
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateItems(ctx context.Context, orgID string, ids []string, patch domain.ItemPatch) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	sets := []string{"updated_at = NOW()"}
	var args []any
	add := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.SKU != nil {
		add("sku", *patch.SKU)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.OperationalGroup != nil {
		add("operational_group", *patch.OperationalGroup)
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if patch.ReorderThreshold != nil {
		add("reorder_threshold", *patch.ReorderThreshold)
	}
	if patch.ExpiresAt != nil {
		add("expires_at", *patch.ExpiresAt)
	}
	if patch.OrderStatus != nil {
		add("order_status", string(*patch.OrderStatus))
	}
	if patch.LastRestockAt != nil {
		add("last_restock_at", *patch.LastRestockAt)
	}

	query := fmt.Sprintf(`UPDATE inventory_items SET %s WHERE org_id = ? AND id IN (%s)`,
		strings.Join(sets, ", "), placeholders(len(ids)))
	args = append(args, orgID)
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update items: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (m *MySQLAdapter) DeleteItems(ctx context.Context, orgID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := []any{orgID}
	for _, id := range ids {
		args = append(args, id)
	}
	result, err := m.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM inventory_items WHERE org_id = ? AND id IN (%s)`, placeholders(len(ids))),
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (m *MySQLAdapter) ListSKUs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT sku FROM inventory_items WHERE org_id = ? AND sku <> ''`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("query skus: %w", err)
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, fmt.Errorf("scan sku: %w", err)
		}
		skus = append(skus, sku)
	}
	return skus, rows.Err()
}

func scanItem(rows *sql.Rows) (domain.Item, error) {
	var it domain.Item
	var expires, restock sql.NullTime
	err := rows.Scan(&it.ID, &it.OrgID, &it.Name, &it.SKU, &it.Invoice, &it.Quantity,
		&it.ReorderThreshold, &it.Category, &it.Kind, &it.OperationalGroup,
		&expires, &it.OrderStatus, &restock, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return domain.Item{}, err
	}
	if expires.Valid {
		t := expires.Time
		it.ExpiresAt = &t
	}
	if restock.Valid {
		t := restock.Time
		it.LastRestockAt = &t
	}
	return it, nil
}

// escapeLike neutralizes LIKE wildcards in user-derived fragments.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
