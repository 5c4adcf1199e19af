package routes

import (
	"github.com/rosswilson/skylark/internal/router"
)

// RegisterWebhookRoutes registers all webhook routes.
//
// These routes carry no session middleware: each handler verifies the
// request signature itself (Stripe signature verification).
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhooks/stripe", deps.StripeHandler)
}
