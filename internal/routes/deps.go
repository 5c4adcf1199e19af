package routes

import (
	"net/http"

	"github.com/rosswilson/skylark/internal/handler/storefront"
)

// StorefrontDeps contains dependencies for storefront routes.
type StorefrontDeps struct {
	// Products
	ProductsHandler *storefront.ProductsHandler

	// Cart
	CartHandler *storefront.CartHandler

	// Checkout
	CheckoutHandler *storefront.CheckoutHandler

	// Order history
	OrdersHandler *storefront.OrdersHandler
}

// WebhookDeps contains dependencies for webhook routes.
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}
