package domain

import "time"

type ItemKind string

const (
	ItemKindStock       ItemKind = "stock"
	ItemKindOperational ItemKind = "operational"
)

type OrderStatus string

const (
	OrderStatusNone    OrderStatus = "none"
	OrderStatusOrdered OrderStatus = "ordered"
)

type Item struct {
	ID               string
	OrgID            string
	Name             string
	SKU              string
	Invoice          string
	Quantity         int
	ReorderThreshold int
	Category         string
	Kind             ItemKind
	OperationalGroup string
	ExpiresAt        *time.Time
	OrderStatus      OrderStatus
	LastRestockAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ItemPatch carries the fields an update overwrites. Nil fields are left
// untouched.
type ItemPatch struct {
	Name             *string
	SKU              *string
	Category         *string
	OperationalGroup *string
	Quantity         *int
	ReorderThreshold *int
	ExpiresAt        *time.Time
	OrderStatus      *OrderStatus
	LastRestockAt    *time.Time
}
