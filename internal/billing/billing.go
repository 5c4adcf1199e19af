package billing

import (
	"context"
)

// Provider defines the interface for the payment session gateway.
// Implementations can use Stripe or a local mock.
type Provider interface {
	// CreateCheckoutSession creates a hosted payment session from the
	// given line items and returns its id and redirect URL.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSession retrieves the current state of a payment session.
	// The gateway is the single source of truth for payment outcome.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyWebhookSignature verifies that a webhook payload is authentic.
	// Must be called before any state mutation triggered by the event.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// SessionLineItem is one purchasable line passed to the gateway.
type SessionLineItem struct {
	// Name shown on the hosted payment page.
	Name string

	// ImageURL is an absolute URL to the product image.
	ImageURL string

	// UnitAmountCents is the unit price in the smallest currency unit.
	UnitAmountCents int64

	// Quantity of this line item.
	Quantity int32
}

// CheckoutMetadata is the fixed set of fields attached to a payment session.
// Named fields keep the contract with the gateway statically checkable;
// never replace this with an open map.
type CheckoutMetadata struct {
	CustomerName  string
	PhoneNumber   string
	StreetAddress string
	StreetNumber  string
	City          string
	Province      string
	Country       string
}

// CreateCheckoutSessionParams contains parameters for creating a session.
type CreateCheckoutSessionParams struct {
	LineItems []SessionLineItem

	// SuccessURL is where the gateway redirects the browser after payment.
	// It must contain the session id placeholder the gateway substitutes.
	SuccessURL string

	// CancelURL is where the gateway redirects if the shopper backs out.
	CancelURL string

	// Currency code (ISO 4217 lowercase), e.g. "eur".
	Currency string

	// CustomerEmail prefills the email field on the hosted page.
	CustomerEmail string

	// AllowedShippingCountries restricts the address collection form.
	AllowedShippingCountries []string

	// Metadata is echoed back on session retrieval and webhook events.
	Metadata CheckoutMetadata
}

// PaymentAddress is a shipping address reported by the gateway.
type PaymentAddress struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Payment status values reported by the gateway.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// CheckoutSession represents a payment session as the gateway reports it.
type CheckoutSession struct {
	// ID is the gateway session id (cs_...).
	ID string

	// URL is the hosted payment page, set on freshly created sessions.
	URL string

	// PaymentStatus is "paid" or "unpaid".
	PaymentStatus string

	// PaymentIntentID is the gateway's funds-movement identifier, set once
	// a payment attempt exists.
	PaymentIntentID string

	// AmountTotalCents is the session total in the smallest currency unit.
	AmountTotalCents int64

	// CustomerEmail is the email the session was created with.
	CustomerEmail string

	// CustomerName and CustomerPhone come from the hosted page's contact
	// collection and may be blank.
	CustomerName  string
	CustomerPhone string

	// ShippingAddress is the address collected on the hosted page, nil if
	// none was collected.
	ShippingAddress *PaymentAddress
}

// FormatAddress flattens a gateway address into the single line the order
// ledger stores. Returns "" for nil or all-blank addresses.
func FormatAddress(addr *PaymentAddress) string {
	if addr == nil {
		return ""
	}

	parts := make([]string, 0, 6)
	for _, p := range []string{addr.Line1, addr.Line2, addr.City, addr.State, addr.PostalCode, addr.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
