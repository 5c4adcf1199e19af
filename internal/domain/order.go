package domain

import (
	"context"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is the durable record of a purchase. Exactly one order exists per
// payment session id; the database enforces this because the browser return
// and the provider webhook can race to create it. Shipped and Delivered are
// set by fulfillment processes outside this service.
type Order struct {
	ID              int64
	UserID          string // empty for guest checkouts
	SessionID       string // payment session id, unique
	PaymentIntentID string
	CustomerEmail   string
	CustomerName    string
	PhoneNumber     string
	ShippingAddress string
	TotalCents      int64
	Status          OrderStatus
	CreatedAt       time.Time
	Items           []OrderItem
}

// OrderItem is a line of an order, owned by exactly one order and destroyed
// only by cascading deletion of its parent. Title and price are snapshots.
type OrderItem struct {
	ID             int64
	OrderID        int64
	ProductID      int64
	ProductTitle   string
	Quantity       int32
	UnitPriceCents int64
}

// OrderUpdate carries the reconciliation fields for an existing order.
// The payment intent id is always written; the optional pointers overwrite
// only when non-nil, so gateway blanks never clobber known-good data.
// MarkPaid advances status to paid and never regresses it.
type OrderUpdate struct {
	PaymentIntentID string
	MarkPaid        bool
	CustomerEmail   *string
	CustomerName    *string
	PhoneNumber     *string
	ShippingAddress *string
	TotalCents      *int64
}

// OrderStore is the persistence boundary for the order ledger.
type OrderStore interface {
	// CreateWithItems writes an order and its items atomically. Returns
	// ECONFLICT if an order already exists for the same session id.
	CreateWithItems(ctx context.Context, order *Order) (*Order, error)

	// GetByID fetches an order with its items. Returns ENOTFOUND if absent.
	GetByID(ctx context.Context, id int64) (*Order, error)

	// GetBySessionID fetches an order with its items by payment session id.
	// Returns ENOTFOUND if absent.
	GetBySessionID(ctx context.Context, sessionID string) (*Order, error)

	// ListForCustomer returns a customer's orders newest-first, matched by
	// owning user id or by email.
	ListForCustomer(ctx context.Context, userID, email string) ([]Order, error)

	// Update applies reconciliation fields to the order for sessionID.
	// Status only moves from pending to paid. Returns ENOTFOUND if no
	// order exists for the session.
	Update(ctx context.Context, sessionID string, update OrderUpdate) (*Order, error)
}
