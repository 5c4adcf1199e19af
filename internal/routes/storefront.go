package routes

import (
	"github.com/rosswilson/skylark/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing routes.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Catalog
	r.Get("/products", deps.ProductsHandler.List)
	r.Get("/products/{id}", deps.ProductsHandler.Get)

	// Cart
	r.Get("/cart", deps.CartHandler.View)
	r.Get("/cart/count", deps.CartHandler.Count)
	r.Post("/cart/items", deps.CartHandler.Add)
	r.Put("/cart/items/{productID}", deps.CartHandler.Update)
	r.Delete("/cart/items/{productID}", deps.CartHandler.Remove)

	// Checkout
	r.Get("/checkout", deps.CheckoutHandler.Prefill)
	r.Post("/checkout/session", deps.CheckoutHandler.CreateSession)
	r.Get("/checkout/success", deps.CheckoutHandler.Success)
	r.Get("/checkout/cancel", deps.CheckoutHandler.Cancel)

	// Order history
	r.Get("/orders", deps.OrdersHandler.List)
	r.Get("/orders/{id}", deps.OrdersHandler.Get)
}
