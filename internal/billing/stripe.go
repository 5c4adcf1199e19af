package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using Stripe Checkout.
type StripeProvider struct {
	config StripeConfig
}

// Compile-time check that StripeProvider implements Provider.
var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a new Stripe billing provider.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stripe.Key = config.APIKey

	return &StripeProvider{config: config}, nil
}

// CreateCheckoutSession creates a hosted Stripe Checkout session.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	if len(params.LineItems) == 0 {
		return nil, ErrNoLineItems
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(params.LineItems))
	for i, li := range params.LineItems {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(params.Currency),
			UnitAmount: stripe.Int64(li.UnitAmountCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(li.Name),
			},
		}
		if li.ImageURL != "" {
			priceData.ProductData.Images = stripe.StringSlice([]string{li.ImageURL})
		}
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(int64(li.Quantity)),
		}
	}

	opts := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(params.SuccessURL),
		CancelURL:          stripe.String(params.CancelURL),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
	}
	opts.Context = ctx

	if params.CustomerEmail != "" {
		opts.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if len(params.AllowedShippingCountries) > 0 {
		opts.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(params.AllowedShippingCountries),
		}
	}

	opts.AddMetadata("customer_name", params.Metadata.CustomerName)
	opts.AddMetadata("phone_number", params.Metadata.PhoneNumber)
	opts.AddMetadata("street_address", params.Metadata.StreetAddress)
	opts.AddMetadata("street_number", params.Metadata.StreetNumber)
	opts.AddMetadata("city", params.Metadata.City)
	opts.AddMetadata("province", params.Metadata.Province)
	opts.AddMetadata("country", params.Metadata.Country)

	sess, err := session.New(opts)
	if err != nil {
		return nil, wrapStripeError(err, "failed to create checkout session")
	}

	return convertSession(sess), nil
}

// GetCheckoutSession retrieves a Stripe Checkout session with its payment
// intent expanded.
func (s *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	opts := &stripe.CheckoutSessionParams{}
	opts.Context = ctx
	opts.AddExpand("payment_intent")

	sess, err := session.Get(sessionID, opts)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrSessionNotFound
		}
		return nil, wrapStripeError(err, "failed to retrieve checkout session")
	}

	return convertSession(sess), nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature header against
// the raw payload.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if err := webhook.ValidatePayload(payload, signature, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}
	return nil
}

// convertSession maps the SDK session type onto the provider-agnostic one.
func convertSession(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:               sess.ID,
		URL:              sess.URL,
		PaymentStatus:    string(sess.PaymentStatus),
		AmountTotalCents: sess.AmountTotal,
		CustomerEmail:    sess.CustomerEmail,
	}

	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}

	if details := sess.CustomerDetails; details != nil {
		if out.CustomerEmail == "" {
			out.CustomerEmail = details.Email
		}
		out.CustomerName = details.Name
		out.CustomerPhone = details.Phone
		if details.Address != nil {
			out.ShippingAddress = &PaymentAddress{
				Line1:      details.Address.Line1,
				Line2:      details.Address.Line2,
				City:       details.Address.City,
				State:      details.Address.State,
				PostalCode: details.Address.PostalCode,
				Country:    details.Address.Country,
			}
		}
	}

	return out
}

// wrapStripeError converts SDK errors into StripeError for callers.
func wrapStripeError(err error, message string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &StripeError{
			Message:       message,
			Code:          string(stripeErr.Code),
			RequestID:     stripeErr.RequestID,
			OriginalError: err,
		}
	}
	return &StripeError{Message: message, OriginalError: err}
}
