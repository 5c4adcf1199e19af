package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a checkout session does not exist.
	ErrSessionNotFound = errors.New("billing: checkout session not found")

	// ErrInvalidWebhookSignature is returned when webhook signature verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrAmountTooSmall is returned when the session total is below the gateway minimum.
	ErrAmountTooSmall = errors.New("billing: amount too small (minimum EUR 0.50)")

	// ErrNoLineItems is returned when a session is created with no line items.
	ErrNoLineItems = errors.New("billing: at least one line item is required")
)

// StripeError wraps a Stripe API error with additional context.
type StripeError struct {
	Message       string // Human-readable error message
	Code          string // Stripe error code (e.g., "resource_missing")
	RequestID     string // Stripe request ID for debugging
	OriginalError error  // Original error from the Stripe SDK
}

func (e *StripeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (code: %s)", e.Message, e.Code)
	}
	return fmt.Sprintf("stripe: %s", e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.OriginalError
}

// IsTemporary returns true if the error is likely transient and retryable.
func (e *StripeError) IsTemporary() bool {
	return e.Code == "rate_limit" || e.Code == "api_connection_error"
}
