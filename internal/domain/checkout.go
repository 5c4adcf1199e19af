package domain

import (
	"context"
	"strings"
)

// CustomerInfo is the checkout form payload. Validation tags follow the
// required fields of the checkout contract; ShippingAddress flattens the
// address parts into the single string the order ledger stores.
type CustomerInfo struct {
	CustomerName  string `validate:"required"`
	Email         string `validate:"required,email"`
	PhoneNumber   string `validate:"required"`
	StreetAddress string `validate:"required"`
	StreetNumber  string `validate:"required"`
	City          string `validate:"required"`
	Province      string `validate:"required"`
	Country       string `validate:"required"`
}

// ShippingAddress flattens the address fields into one comma-separated line.
func (c CustomerInfo) ShippingAddress() string {
	return strings.Join([]string{
		c.StreetAddress, c.StreetNumber, c.City, c.Province, c.Country,
	}, ", ")
}

// CheckoutRedirect is the result of creating a payment session. For the real
// gateway, URL points at the hosted payment page. In mock mode, MockOrderID
// identifies the already-paid local order and URL points at the local
// success page.
type CheckoutRedirect struct {
	SessionID   string
	URL         string
	Mock        bool
	MockOrderID int64
}

// CheckoutService turns carts into payment sessions and reconciles payment
// outcomes into the order ledger. CreateSession, Reconcile and
// ConfirmPayment are each a single bounded unit of work; Reconcile and
// ConfirmPayment may interleave arbitrarily for the same session id and the
// ledger's uniqueness constraint arbitrates creation.
type CheckoutService interface {
	// Prefill returns the customer info prefilled from the user's stored
	// shipping profile, or zero-valued info if none exists.
	Prefill(ctx context.Context, userID string) (*CustomerInfo, error)

	// CreateSession validates info, requests a hosted payment session for
	// the cart under sessionToken, and eagerly records a pending order.
	// Fails with ErrEmptyCart on an empty cart and a ValidationError on
	// bad info, both without state mutation.
	CreateSession(ctx context.Context, sessionToken string, userID string, info CustomerInfo) (*CheckoutRedirect, error)

	// Reconcile handles the browser's return redirect: it fetches the
	// session's status from the gateway, creates or updates the order, and
	// always clears the cart. Safe to call repeatedly for the same id.
	Reconcile(ctx context.Context, sessionToken string, userID string, sessionID string) (*Order, error)

	// ConfirmPayment handles the gateway's asynchronous payment-completed
	// event: it marks the order paid and stores the payment intent id.
	// Events for unknown session ids are dropped, not retried. Idempotent
	// under duplicate delivery.
	ConfirmPayment(ctx context.Context, sessionID string, paymentIntentID string) error
}
