// Package webhook handles asynchronous payment gateway events.
package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/rosswilson/skylark/internal/billing"
	"github.com/rosswilson/skylark/internal/domain"
	"github.com/rosswilson/skylark/internal/handler"
	"github.com/rosswilson/skylark/internal/telemetry"
)

// StripeHandler processes incoming Stripe webhook events.
type StripeHandler struct {
	provider billing.Provider
	checkout domain.CheckoutService
	logger   *slog.Logger
	config   StripeWebhookConfig
}

// StripeWebhookConfig contains configuration for webhook handling.
type StripeWebhookConfig struct {
	// WebhookSecret is the signing secret from the Stripe dashboard.
	WebhookSecret string
}

func NewStripeHandler(provider billing.Provider, checkout domain.CheckoutService, logger *slog.Logger, config StripeWebhookConfig) *StripeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeHandler{
		provider: provider,
		checkout: checkout,
		logger:   logger,
		config:   config,
	}
}

// HandleWebhook verifies and dispatches a webhook delivery.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:8080/webhooks/stripe
//	stripe trigger checkout.session.completed
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook payload", "error", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		h.logger.Warn("webhook missing signature header")
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "", "Missing signature"))
		return
	}

	if err := h.provider.VerifyWebhookSignature(payload, signature, h.config.WebhookSecret); err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid signature"))
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("failed to parse webhook event", "error", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Invalid JSON"))
		return
	}

	h.logger.Info("webhook event received", "type", event.Type, "event_id", event.ID)
	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(string(event.Type)).Inc()
	}
	defer func() {
		if telemetry.Business != nil {
			telemetry.Business.WebhookLatency.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())
		}
	}()

	switch event.Type {
	case "checkout.session.completed":
		if err := h.handleCheckoutSessionCompleted(r, event); err != nil {
			// A non-2xx makes Stripe redeliver. At-least-once delivery is
			// the retry mechanism for transient failures here; deliberate
			// drops (unknown session id) return nil and are acked.
			handler.ErrorResponse(w, r, err)
			return
		}

	default:
		// Acknowledged but not acted on. Stripe sends every event type the
		// endpoint is subscribed to.
		h.logger.Info("ignoring webhook event type", "type", event.Type)
	}

	// Ack verified events we have handled or deliberately dropped so Stripe
	// does not retry them.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received": true}`))
}

func (h *StripeHandler) handleCheckoutSessionCompleted(r *http.Request, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Error("failed to parse checkout session from webhook", "error", err)
		if telemetry.Business != nil {
			telemetry.Business.WebhookFailed.WithLabelValues(string(event.Type), "parse_error").Inc()
		}
		return domain.Errorf(domain.EINVALID, "", "Invalid event payload")
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	h.logger.Info("checkout session completed",
		"session_id", session.ID,
		"payment_intent_id", paymentIntentID,
		"amount_total", session.AmountTotal,
	)

	if err := h.checkout.ConfirmPayment(r.Context(), session.ID, paymentIntentID); err != nil {
		h.logger.Error("failed to confirm payment from webhook", "session_id", session.ID, "error", err)
		if telemetry.Business != nil {
			telemetry.Business.WebhookFailed.WithLabelValues(string(event.Type), "confirm_failed").Inc()
		}
		return err
	}

	if telemetry.Business != nil {
		telemetry.Business.WebhookProcessed.WithLabelValues(string(event.Type)).Inc()
	}
	return nil
}
