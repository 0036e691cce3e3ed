package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/obrennan/stocktalk/internal/core/domain"
	"github.com/obrennan/stocktalk/internal/port"
)

// ErrParseFailure means the text-understanding call produced no usable
// structure. Callers treat it as "not an action", never as a hard error.
var ErrParseFailure = errors.New("message could not be interpreted")

const interpreterSystemPrompt = `You convert a business operator's message about their inventory into one JSON action.

Respond with a single JSON object and nothing else:
{
  "action": "set_expiry" | "set_quantity" | "increase_quantity" | "decrease_quantity" | "set_reorder_threshold" | "create_item" | "delete_item" | "edit_field" | "mark_ordered" | "mark_received" | "generate_sku" | "none",
  "filters": {"invoice": "", "sku": "", "name_contains": "", "category": "", "kind": "", "operational_group": ""},
  "value": "",
  "edit_field": "",
  "new_item": {"name": "", "sku": "", "category": "", "kind": "", "operational_group": "", "quantity": 0, "reorder_threshold": 0},
  "confidence": 0.0
}

Rules:
- Pick exactly one action. Questions and reports ("what's running low?") are "none" with confidence 1.0.
- "set to N" means set_quantity. "add N" or "received N more" means increase_quantity. "sold N", "used N" or "remove N units" means decrease_quantity.
- Use create_item only when the product is not in the inventory list and the message clearly introduces it. Adding stock to a listed product is increase_quantity.
- Quantities in "value" must be a bare integer string such as "20". Dates must be ISO format such as "2026-03-31".
- "kind" filters are "stock" or "operational". edit_field is one of "name", "category", "sku", "operational_group".
- Fill only the filters the message supports. name_contains is the product name fragment as the operator wrote it.
- "confidence" is your certainty in [0,1] that the action and filters are what the operator meant.`

type Interpreter struct {
	llm    port.LLMClient
	logger *zap.Logger
}

func NewInterpreter(llm port.LLMClient, logger *zap.Logger) *Interpreter {
	return &Interpreter{llm: llm, logger: logger}
}

// Interpret classifies one message into an Intent, grounded on a bounded
// summary of the organization's inventory. The summary is read-only context
// for filter extraction.
func (i *Interpreter) Interpret(ctx context.Context, message string, summary []domain.Item) (domain.Intent, error) {
	content, err := i.llm.CompleteWithSystem(ctx, interpreterSystemPrompt, buildUserPrompt(message, summary))
	if err != nil {
		return domain.Intent{}, fmt.Errorf("complete: %w", err)
	}

	raw := extractJSON(content)
	if raw == "" {
		i.logger.Warn("completion carried no JSON object", zap.Int("content_len", len(content)))
		return domain.Intent{}, ErrParseFailure
	}

	var ri rawIntent
	if err := json.Unmarshal([]byte(raw), &ri); err != nil {
		i.logger.Warn("unmarshal intent", zap.Error(err))
		return domain.Intent{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	intent, err := ri.validate()
	if err != nil {
		i.logger.Warn("invalid intent", zap.Error(err))
		return domain.Intent{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return intent, nil
}

func buildUserPrompt(message string, summary []domain.Item) string {
	var b strings.Builder
	b.WriteString("Message: ")
	b.WriteString(message)
	b.WriteString("\n\nInventory:\n")
	if len(summary) == 0 {
		b.WriteString("(no records yet)\n")
	}
	for _, it := range summary {
		fmt.Fprintf(&b, "- %s | sku=%s | invoice=%s | category=%s | kind=%s | qty=%d | threshold=%d | status=%s | expires=%s\n",
			it.Name, orDash(it.SKU), orDash(it.Invoice), orDash(it.Category),
			it.Kind, it.Quantity, it.ReorderThreshold, it.OrderStatus, dateOrDash(it.ExpiresAt))
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

var (
	jsonFencePattern     = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	integerPattern       = regexp.MustCompile(`-?\d+`)
)

// extractJSON pulls the first JSON object out of model output that may wrap
// it in prose or a markdown fence, and repairs trailing commas.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if m := jsonFencePattern.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(content[start:end+1], "$1")
}

// rawIntent mirrors the JSON the model returns. Every field is revalidated
// and normalized before it becomes a domain.Intent.
type rawIntent struct {
	Action     string      `json:"action"`
	Filters    rawFilters  `json:"filters"`
	Value      any         `json:"value"`
	EditField  string      `json:"edit_field"`
	NewItem    *rawNewItem `json:"new_item"`
	Confidence *float64    `json:"confidence"`
}

type rawFilters struct {
	Invoice          string `json:"invoice"`
	SKU              string `json:"sku"`
	NameContains     string `json:"name_contains"`
	Category         string `json:"category"`
	Kind             string `json:"kind"`
	OperationalGroup string `json:"operational_group"`
}

type rawNewItem struct {
	Name             string `json:"name"`
	SKU              string `json:"sku"`
	Category         string `json:"category"`
	Kind             string `json:"kind"`
	OperationalGroup string `json:"operational_group"`
	Quantity         any    `json:"quantity"`
	ReorderThreshold any    `json:"reorder_threshold"`
}

func (r rawIntent) validate() (domain.Intent, error) {
	kind := domain.ActionKind(strings.ToLower(strings.TrimSpace(r.Action)))
	if kind == "" {
		return domain.Intent{}, errors.New("missing action")
	}
	if !kind.Valid() {
		return domain.Intent{}, fmt.Errorf("unknown action %q", r.Action)
	}

	confidence := 0.0
	if r.Confidence != nil {
		confidence = math.Min(math.Max(*r.Confidence, 0), 1)
	}

	intent := domain.Intent{
		Kind: kind,
		Filter: domain.ItemFilter{
			Invoice:          strings.TrimSpace(r.Filters.Invoice),
			SKU:              strings.TrimSpace(r.Filters.SKU),
			NameContains:     strings.TrimSpace(r.Filters.NameContains),
			Category:         strings.TrimSpace(r.Filters.Category),
			Kind:             normalizeItemKind(r.Filters.Kind),
			OperationalGroup: strings.TrimSpace(r.Filters.OperationalGroup),
		},
		Value:      normalizeValue(kind, r.Value),
		EditField:  normalizeEditField(r.EditField),
		Confidence: confidence,
	}

	if r.NewItem != nil {
		item := domain.NewItem{
			Name:             strings.TrimSpace(r.NewItem.Name),
			SKU:              strings.TrimSpace(r.NewItem.SKU),
			Category:         strings.TrimSpace(r.NewItem.Category),
			Kind:             normalizeItemKind(r.NewItem.Kind),
			OperationalGroup: strings.TrimSpace(r.NewItem.OperationalGroup),
			Quantity:         max(scalarInt(r.NewItem.Quantity), 0),
			ReorderThreshold: max(scalarInt(r.NewItem.ReorderThreshold), 0),
		}
		if item.Name != "" {
			intent.NewItem = &item
		}
	}
	if kind == domain.ActionCreateItem && intent.NewItem == nil {
		return domain.Intent{}, errors.New("create_item without a new_item name")
	}

	return intent, nil
}

func normalizeItemKind(s string) domain.ItemKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(domain.ItemKindStock):
		return domain.ItemKindStock
	case string(domain.ItemKindOperational):
		return domain.ItemKindOperational
	}
	return ""
}

// normalizeEditField canonicalizes the aliases models produce. Unknown fields
// pass through so the executor can reject them with a useful message.
func normalizeEditField(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "identifier", "sku":
		return domain.EditFieldSKU
	case "sub_category", "subcategory", "operational_sub_category", "operational_group":
		return domain.EditFieldOperationalGroup
	}
	return s
}

// normalizeValue coerces the model's value field into the canonical string
// form for the kind: bare integers for quantity-like kinds, ISO dates for
// date kinds. An empty result routes the intent to needs-confirmation.
func normalizeValue(kind domain.ActionKind, v any) string {
	s := scalarString(v)
	switch kind {
	case domain.ActionSetQuantity, domain.ActionIncreaseQuantity,
		domain.ActionDecreaseQuantity, domain.ActionSetThreshold,
		domain.ActionMarkReceived:
		return integerPattern.FindString(s)
	case domain.ActionSetExpiry:
		return normalizeDate(s)
	}
	return strings.TrimSpace(s)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"2 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func scalarInt(v any) int {
	n, err := strconv.Atoi(integerPattern.FindString(scalarString(v)))
	if err != nil {
		return 0
	}
	return n
}
