package domain

// ActionKind enumerates the closed set of commands the engine can execute.
type ActionKind string

const (
	ActionNone             ActionKind = "none"
	ActionSetExpiry        ActionKind = "set_expiry"
	ActionSetQuantity      ActionKind = "set_quantity"
	ActionIncreaseQuantity ActionKind = "increase_quantity"
	ActionDecreaseQuantity ActionKind = "decrease_quantity"
	ActionSetThreshold     ActionKind = "set_reorder_threshold"
	ActionCreateItem       ActionKind = "create_item"
	ActionDeleteItem       ActionKind = "delete_item"
	ActionEditField        ActionKind = "edit_field"
	ActionMarkOrdered      ActionKind = "mark_ordered"
	ActionMarkReceived     ActionKind = "mark_received"
	ActionGenerateSKU      ActionKind = "generate_sku"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionNone, ActionSetExpiry, ActionSetQuantity, ActionIncreaseQuantity,
		ActionDecreaseQuantity, ActionSetThreshold, ActionCreateItem,
		ActionDeleteItem, ActionEditField, ActionMarkOrdered,
		ActionMarkReceived, ActionGenerateSKU:
		return true
	}
	return false
}

// RequiresValue reports whether the kind cannot execute without a scalar
// value (a date, a quantity, a threshold, or replacement text).
func (k ActionKind) RequiresValue() bool {
	switch k {
	case ActionSetExpiry, ActionSetQuantity, ActionIncreaseQuantity,
		ActionDecreaseQuantity, ActionSetThreshold, ActionEditField:
		return true
	}
	return false
}

// Editable fields for the edit_field action.
const (
	EditFieldName             = "name"
	EditFieldCategory         = "category"
	EditFieldSKU              = "sku"
	EditFieldOperationalGroup = "operational_group"
)

// ItemFilter selects candidate records. All present predicates are ANDed.
type ItemFilter struct {
	Invoice          string   `json:"invoice,omitempty"`
	SKU              string   `json:"sku,omitempty"`
	NameContains     string   `json:"name_contains,omitempty"`
	Category         string   `json:"category,omitempty"`
	Kind             ItemKind `json:"kind,omitempty"`
	OperationalGroup string   `json:"operational_group,omitempty"`

	// MissingSKU restricts matching to records without a SKU. Set by the
	// resolver's default-filter policy, never by the interpreter.
	MissingSKU bool `json:"-"`

	// Limit caps the number of records returned. Zero means no cap.
	Limit int `json:"-"`
}

func (f ItemFilter) Empty() bool {
	return f.Invoice == "" && f.SKU == "" && f.NameContains == "" &&
		f.Category == "" && f.Kind == "" && f.OperationalGroup == ""
}

// NewItem is the payload for create_item.
type NewItem struct {
	Name             string   `json:"name"`
	SKU              string   `json:"sku,omitempty"`
	Category         string   `json:"category,omitempty"`
	Kind             ItemKind `json:"kind,omitempty"`
	OperationalGroup string   `json:"operational_group,omitempty"`
	Quantity         int      `json:"quantity,omitempty"`
	ReorderThreshold int      `json:"reorder_threshold,omitempty"`
}

// Intent is the validated interpretation of one user message. It lives for a
// single request and is never persisted.
type Intent struct {
	Kind       ActionKind
	Filter     ItemFilter
	Value      string
	EditField  string
	NewItem    *NewItem
	Confidence float64
}
