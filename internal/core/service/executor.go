package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/obrennan/stocktalk/internal/core/domain"
	"github.com/obrennan/stocktalk/internal/port"
)

type Executor struct {
	repo   port.InventoryRepository
	tiers  port.TierService
	policy Policy
	logger *zap.Logger
	now    func() time.Time
}

func NewExecutor(repo port.InventoryRepository, tiers port.TierService, policy Policy, logger *zap.Logger) *Executor {
	return &Executor{
		repo:   repo,
		tiers:  tiers,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Execute applies the intent to the pre-resolved candidate set. The candidate
// set is always scoped to orgID by the resolver; handlers never widen it.
func (e *Executor) Execute(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	if intent.Kind != domain.ActionCreateItem && len(matched) == 0 {
		return failure(intent.Kind, "No items matched that description. Try a more specific name, SKU or invoice reference.")
	}

	switch intent.Kind {
	case domain.ActionSetExpiry:
		return e.setExpiry(ctx, orgID, intent, matched)
	case domain.ActionSetQuantity:
		return e.setQuantity(ctx, orgID, intent, matched)
	case domain.ActionIncreaseQuantity:
		return e.adjustQuantity(ctx, orgID, intent, matched, 1)
	case domain.ActionDecreaseQuantity:
		return e.adjustQuantity(ctx, orgID, intent, matched, -1)
	case domain.ActionSetThreshold:
		return e.setThreshold(ctx, orgID, intent, matched)
	case domain.ActionCreateItem:
		return e.createItem(ctx, orgID, intent)
	case domain.ActionDeleteItem:
		return e.deleteItems(ctx, orgID, intent, matched)
	case domain.ActionEditField:
		return e.editField(ctx, orgID, intent, matched)
	case domain.ActionMarkOrdered:
		return e.markOrdered(ctx, orgID, intent, matched)
	case domain.ActionMarkReceived:
		return e.markReceived(ctx, orgID, intent, matched)
	case domain.ActionGenerateSKU:
		return e.generateSKUs(ctx, orgID, intent, matched)
	}
	return failure(intent.Kind, fmt.Sprintf("Action %q is not supported.", intent.Kind))
}

func (e *Executor) setExpiry(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	date, err := time.Parse("2006-01-02", intent.Value)
	if err != nil {
		return failure(intent.Kind, fmt.Sprintf("Could not read %q as a date. Use the form 2026-09-30.", intent.Value))
	}
	if _, err := e.repo.UpdateItems(ctx, orgID, itemIDs(matched), domain.ItemPatch{ExpiresAt: &date}); err != nil {
		e.logger.Error("set expiry", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, "Storing the expiry date failed. Nothing else was changed.")
	}
	return e.applied(intent.Kind, matched, fmt.Sprintf("Set expiry %s on %d item(s).", intent.Value, len(matched)))
}

func (e *Executor) setQuantity(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	qty, ok := parseCount(intent.Value)
	if !ok {
		return failure(intent.Kind, fmt.Sprintf("Could not read %q as a quantity.", intent.Value))
	}
	if _, err := e.repo.UpdateItems(ctx, orgID, itemIDs(matched), domain.ItemPatch{Quantity: &qty}); err != nil {
		e.logger.Error("set quantity", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, "Storing the new quantity failed. Nothing else was changed.")
	}
	return e.applied(intent.Kind, matched, fmt.Sprintf("Set quantity to %d on %d item(s).", qty, len(matched)))
}

// adjustQuantity applies a relative delta record by record: each write uses
// that record's own base quantity, and a decrease floors at zero. The loop
// stops at the first storage error and reports what it managed.
func (e *Executor) adjustQuantity(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item, sign int) domain.Outcome {
	delta, ok := parseCount(intent.Value)
	if !ok {
		return failure(intent.Kind, fmt.Sprintf("Could not read %q as a quantity.", intent.Value))
	}

	var done []domain.Item
	var recordErrs []string
	// next comes from the quantity read at resolve time; concurrent commands
	// touching the same record can interleave between that read and the write.
	for _, it := range matched {
		next := max(it.Quantity+sign*delta, 0)
		if _, err := e.repo.UpdateItems(ctx, orgID, []string{it.ID}, domain.ItemPatch{Quantity: &next}); err != nil {
			e.logger.Error("adjust quantity", zap.Error(err), zap.String("item_id", it.ID))
			recordErrs = append(recordErrs, fmt.Sprintf("%s: %v", it.Name, err))
			break
		}
		done = append(done, it)
	}

	verb := "Added"
	if sign < 0 {
		verb = "Removed"
	}
	if len(recordErrs) > 0 {
		return e.partial(intent.Kind, done, recordErrs,
			fmt.Sprintf("%s %d on %d of %d item(s) before a storage error stopped the batch.", verb, delta, len(done), len(matched)))
	}
	return e.applied(intent.Kind, done, fmt.Sprintf("%s %d units across %d item(s).", verb, delta, len(done)))
}

func (e *Executor) setThreshold(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	threshold, ok := parseCount(intent.Value)
	if !ok {
		return failure(intent.Kind, fmt.Sprintf("Could not read %q as a threshold.", intent.Value))
	}
	if _, err := e.repo.UpdateItems(ctx, orgID, itemIDs(matched), domain.ItemPatch{ReorderThreshold: &threshold}); err != nil {
		e.logger.Error("set threshold", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, "Storing the reorder threshold failed. Nothing else was changed.")
	}
	return e.applied(intent.Kind, matched, fmt.Sprintf("Set reorder threshold to %d on %d item(s).", threshold, len(matched)))
}

func (e *Executor) createItem(ctx context.Context, orgID string, intent domain.Intent) domain.Outcome {
	if intent.NewItem == nil || strings.TrimSpace(intent.NewItem.Name) == "" {
		return failure(intent.Kind, "I need at least a product name to create an item.")
	}

	allowed, limitMsg, err := e.tiers.Allow(ctx, orgID, domain.TierItems)
	if err != nil {
		e.logger.Error("item tier check", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, "Could not verify your plan's item limit. Nothing was created.")
	}
	if !allowed {
		return failure(intent.Kind, limitMsg)
	}

	payload := *intent.NewItem
	kind := payload.Kind
	if kind == "" {
		kind = domain.ItemKindStock
	}
	sku := payload.SKU
	if sku == "" {
		existing, err := e.repo.ListSKUs(ctx, orgID)
		if err != nil {
			e.logger.Error("list skus", zap.Error(err), zap.String("org_id", orgID))
			return failure(intent.Kind, "Could not check existing SKUs. Nothing was created.")
		}
		taken := make(map[string]bool, len(existing))
		for _, s := range existing {
			taken[s] = true
		}
		sku = GenerateSKU(payload.Name, payload.Category, func(c string) bool { return taken[c] })
	}

	now := e.now()
	item := domain.Item{
		ID:               uuid.NewString(),
		OrgID:            orgID,
		Name:             strings.TrimSpace(payload.Name),
		SKU:              sku,
		Quantity:         max(payload.Quantity, 0),
		ReorderThreshold: max(payload.ReorderThreshold, 0),
		Category:         payload.Category,
		Kind:             kind,
		OperationalGroup: payload.OperationalGroup,
		OrderStatus:      domain.OrderStatusNone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.repo.InsertItem(ctx, item); err != nil {
		e.logger.Error("insert item", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, fmt.Sprintf("Creating %q failed. Please retry.", item.Name))
	}

	return domain.Outcome{
		Success:     true,
		Kind:        intent.Kind,
		Affected:    1,
		Message:     fmt.Sprintf("Created %q with SKU %s.", item.Name, item.SKU),
		SampleNames: []string{item.Name},
	}
}

func (e *Executor) deleteItems(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	if len(matched) > e.policy.DeleteCap {
		return failure(intent.Kind,
			fmt.Sprintf("That matches %d items. I only delete up to %d at once; narrow the filter and try again.", len(matched), e.policy.DeleteCap))
	}
	removed, err := e.repo.DeleteItems(ctx, orgID, itemIDs(matched))
	if err != nil {
		e.logger.Error("delete items", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, "Deleting failed. No items were removed.")
	}
	names, overflow := domain.SampleNames(matched, e.policy.NameSampleLimit)
	return domain.Outcome{
		Success:     true,
		Kind:        intent.Kind,
		Affected:    removed,
		Message:     fmt.Sprintf("Deleted %d item(s).", removed),
		SampleNames: names,
		Overflow:    overflow,
	}
}

func (e *Executor) editField(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	value := strings.TrimSpace(intent.Value)
	var patch domain.ItemPatch
	switch intent.EditField {
	case domain.EditFieldName:
		patch.Name = &value
	case domain.EditFieldCategory:
		patch.Category = &value
	case domain.EditFieldSKU:
		patch.SKU = &value
	case domain.EditFieldOperationalGroup:
		patch.OperationalGroup = &value
	default:
		return failure(intent.Kind,
			fmt.Sprintf("Field %q cannot be edited this way. Editable fields: name, category, sku, operational_group.", intent.EditField))
	}
	if _, err := e.repo.UpdateItems(ctx, orgID, itemIDs(matched), patch); err != nil {
		e.logger.Error("edit field", zap.Error(err), zap.String("org_id", orgID), zap.String("field", intent.EditField))
		return failure(intent.Kind, "Storing the edit failed. Nothing else was changed.")
	}
	return e.applied(intent.Kind, matched, fmt.Sprintf("Set %s to %q on %d item(s).", intent.EditField, value, len(matched)))
}

func (e *Executor) markOrdered(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	status := domain.OrderStatusOrdered
	if _, err := e.repo.UpdateItems(ctx, orgID, itemIDs(matched), domain.ItemPatch{OrderStatus: &status}); err != nil {
		e.logger.Error("mark ordered", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, "Storing the order status failed. Nothing else was changed.")
	}
	return e.applied(intent.Kind, matched, fmt.Sprintf("Marked %d item(s) as ordered.", len(matched)))
}

// markReceived clears the ordered flag and stamps the restock time record by
// record; a supplied positive quantity is added to each record's own base, so
// this is the same read-modify-write loop as a relative increase.
func (e *Executor) markReceived(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	received := 0
	if n, ok := parseCount(intent.Value); ok {
		received = n
	}

	now := e.now()
	status := domain.OrderStatusNone
	var done []domain.Item
	var recordErrs []string
	for _, it := range matched {
		patch := domain.ItemPatch{OrderStatus: &status, LastRestockAt: &now}
		if received > 0 {
			next := it.Quantity + received
			patch.Quantity = &next
		}
		if _, err := e.repo.UpdateItems(ctx, orgID, []string{it.ID}, patch); err != nil {
			e.logger.Error("mark received", zap.Error(err), zap.String("item_id", it.ID))
			recordErrs = append(recordErrs, fmt.Sprintf("%s: %v", it.Name, err))
			break
		}
		done = append(done, it)
	}

	if len(recordErrs) > 0 {
		return e.partial(intent.Kind, done, recordErrs,
			fmt.Sprintf("Received %d of %d item(s) before a storage error stopped the batch.", len(done), len(matched)))
	}
	msg := fmt.Sprintf("Marked %d item(s) as received.", len(done))
	if received > 0 {
		msg = fmt.Sprintf("Marked %d item(s) as received and added %d units to each.", len(done), received)
	}
	return e.applied(intent.Kind, done, msg)
}

// generateSKUs fills in identifiers for matched records that lack one. The
// taken set starts from the organization's persisted SKUs and grows with each
// generation, so codes minted earlier in the batch also count as collisions.
func (e *Executor) generateSKUs(ctx context.Context, orgID string, intent domain.Intent, matched []domain.Item) domain.Outcome {
	existing, err := e.repo.ListSKUs(ctx, orgID)
	if err != nil {
		e.logger.Error("list skus", zap.Error(err), zap.String("org_id", orgID))
		return failure(intent.Kind, "Could not load the existing SKUs. Nothing was changed.")
	}
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[s] = true
	}

	var done []domain.Item
	var recordErrs []string
	skipped := 0
	for _, it := range matched {
		if it.SKU != "" {
			skipped++
			continue
		}
		code := GenerateSKU(it.Name, it.Category, func(c string) bool { return taken[c] })
		if _, err := e.repo.UpdateItems(ctx, orgID, []string{it.ID}, domain.ItemPatch{SKU: &code}); err != nil {
			e.logger.Error("store sku", zap.Error(err), zap.String("item_id", it.ID))
			recordErrs = append(recordErrs, fmt.Sprintf("%s: %v", it.Name, err))
			break
		}
		taken[code] = true
		done = append(done, it)
	}

	if len(recordErrs) > 0 {
		return e.partial(intent.Kind, done, recordErrs,
			fmt.Sprintf("Generated SKUs for %d item(s) before a storage error stopped the batch.", len(done)))
	}
	if len(done) == 0 {
		return domain.Outcome{
			Success: true,
			Kind:    intent.Kind,
			Message: "All matched items already have SKUs.",
		}
	}
	msg := fmt.Sprintf("Generated SKUs for %d item(s).", len(done))
	if skipped > 0 {
		msg = fmt.Sprintf("Generated SKUs for %d item(s); %d already had one.", len(done), skipped)
	}
	return e.applied(intent.Kind, done, msg)
}

func (e *Executor) applied(kind domain.ActionKind, items []domain.Item, message string) domain.Outcome {
	names, overflow := domain.SampleNames(items, e.policy.NameSampleLimit)
	return domain.Outcome{
		Success:     true,
		Kind:        kind,
		Affected:    len(items),
		Message:     message,
		SampleNames: names,
		Overflow:    overflow,
	}
}

func (e *Executor) partial(kind domain.ActionKind, done []domain.Item, recordErrs []string, message string) domain.Outcome {
	names, overflow := domain.SampleNames(done, e.policy.NameSampleLimit)
	return domain.Outcome{
		Kind:         kind,
		Affected:     len(done),
		Message:      message,
		RecordErrors: recordErrs,
		SampleNames:  names,
		Overflow:     overflow,
	}
}

func failure(kind domain.ActionKind, message string) domain.Outcome {
	return domain.Outcome{Kind: kind, Message: message}
}

func itemIDs(items []domain.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// parseCount reads a non-negative integer. ok is false for anything else.
func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
