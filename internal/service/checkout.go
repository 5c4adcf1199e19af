package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rosswilson/skylark/internal/billing"
	"github.com/rosswilson/skylark/internal/domain"
	"github.com/rosswilson/skylark/internal/telemetry"
)

// CheckoutConfig holds configuration for the checkout orchestrator.
type CheckoutConfig struct {
	// BaseURL is the public origin of this server, used to build the
	// success/cancel URLs and absolute image URLs for the gateway.
	BaseURL string

	// Currency code (ISO 4217 lowercase), e.g. "eur".
	Currency string

	// AllowedShippingCountries restricts the gateway's address form.
	AllowedShippingCountries []string

	// DefaultCountry prefills the checkout form country field.
	DefaultCountry string

	// MockMode bypasses the payment gateway entirely: sessions are
	// synthesized locally and orders are created already paid. For
	// environments without network access to the payment provider.
	MockMode bool
}

type checkoutService struct {
	orders   domain.OrderStore
	carts    domain.CartService
	profiles domain.ProfileStore
	provider billing.Provider
	validate *validator.Validate
	logger   *slog.Logger
	cfg      CheckoutConfig
}

// Compile-time check that checkoutService implements domain.CheckoutService.
var _ domain.CheckoutService = (*checkoutService)(nil)

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(
	orders domain.OrderStore,
	carts domain.CartService,
	profiles domain.ProfileStore,
	provider billing.Provider,
	logger *slog.Logger,
	cfg CheckoutConfig,
) (domain.CheckoutService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("checkout: base URL is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = "Italia"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &checkoutService{
		orders:   orders,
		carts:    carts,
		profiles: profiles,
		provider: provider,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// Prefill returns the checkout form prefilled from the user's stored default
// shipping profile, or default-valued info if no profile exists.
func (s *checkoutService) Prefill(ctx context.Context, userID string) (*domain.CustomerInfo, error) {
	info := &domain.CustomerInfo{Country: s.cfg.DefaultCountry}
	if userID == "" {
		return info, nil
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return info, nil
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, "checkout.prefill", "failed to load shipping profile")
	}

	return &domain.CustomerInfo{
		CustomerName:  profile.FullName,
		Email:         profile.Email,
		PhoneNumber:   profile.PhoneNumber,
		StreetAddress: profile.StreetAddress,
		StreetNumber:  profile.StreetNumber,
		City:          profile.City,
		Province:      profile.Province,
		Country:       profile.Country,
	}, nil
}

// CreateSession turns the cart under sessionToken into a hosted payment
// session and eagerly records a pending order for it.
//
// The profile upsert for authenticated users happens before order creation
// and is independent of whether payment ultimately succeeds. A gateway
// failure aborts the whole operation with the cart preserved, leaving no
// partial order state.
func (s *checkoutService) CreateSession(ctx context.Context, sessionToken string, userID string, info domain.CustomerInfo) (*domain.CheckoutRedirect, error) {
	const op = "checkout.create_session"

	cart, err := s.carts.Get(ctx, sessionToken)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load cart")
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := s.validateInfo(op, info); err != nil {
		return nil, err
	}

	if userID != "" {
		if err := s.upsertProfile(ctx, userID, info); err != nil {
			return nil, err
		}
	}

	if s.cfg.MockMode {
		return s.createMockSession(ctx, sessionToken, userID, cart, info)
	}

	lineItems := make([]billing.SessionLineItem, len(cart.Items))
	for i, item := range cart.Items {
		lineItems[i] = billing.SessionLineItem{
			Name:            item.Title,
			ImageURL:        s.absoluteURL(item.ImageURL),
			UnitAmountCents: item.UnitPriceCents,
			Quantity:        item.Quantity,
		}
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionParams{
		LineItems:                lineItems,
		SuccessURL:               s.cfg.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:                s.cfg.BaseURL + "/checkout/cancel",
		Currency:                 s.cfg.Currency,
		CustomerEmail:            info.Email,
		AllowedShippingCountries: s.cfg.AllowedShippingCountries,
		Metadata: billing.CheckoutMetadata{
			CustomerName:  info.CustomerName,
			PhoneNumber:   info.PhoneNumber,
			StreetAddress: info.StreetAddress,
			StreetNumber:  info.StreetNumber,
			City:          info.City,
			Province:      info.Province,
			Country:       info.Country,
		},
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "payment gateway rejected the checkout session")
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutStarted.WithLabelValues("live").Inc()
	}

	// Eager pending insert. Losing the create race to a near-simultaneous
	// reconciliation is fine: the unique session id constraint reports a
	// conflict and the existing row already holds the order.
	order := s.orderFromCart(cart, info, userID)
	order.SessionID = sess.ID
	order.Status = domain.OrderStatusPending

	if _, err := s.orders.CreateWithItems(ctx, order); err != nil {
		if !domain.IsCode(err, domain.ECONFLICT) {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to record pending order")
		}
		s.logger.Info("pending order already recorded for session", "session_id", sess.ID)
	} else if telemetry.Business != nil {
		telemetry.Business.OrdersCreated.WithLabelValues("checkout").Inc()
	}

	return &domain.CheckoutRedirect{SessionID: sess.ID, URL: sess.URL}, nil
}

// createMockSession bypasses the gateway: it synthesizes a session id,
// records the order directly as paid, and clears the cart. Behavior is
// otherwise identical to the live path with a synchronous payment
// confirmation.
func (s *checkoutService) createMockSession(ctx context.Context, sessionToken, userID string, cart *domain.Cart, info domain.CustomerInfo) (*domain.CheckoutRedirect, error) {
	const op = "checkout.create_session"

	order := s.orderFromCart(cart, info, userID)
	order.SessionID = "mock_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	order.Status = domain.OrderStatusPaid

	created, err := s.orders.CreateWithItems(ctx, order)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to record mock order")
	}

	if err := s.carts.Clear(ctx, sessionToken); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to clear cart")
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutStarted.WithLabelValues("mock").Inc()
		telemetry.Business.OrdersCreated.WithLabelValues("mock").Inc()
		telemetry.Business.OrderValue.Observe(float64(created.TotalCents))
	}
	s.logger.Info("mock checkout completed", "session_id", created.SessionID, "order_id", created.ID)

	return &domain.CheckoutRedirect{
		SessionID:   created.SessionID,
		URL:         fmt.Sprintf("%s/checkout/success?mock_order_id=%d", s.cfg.BaseURL, created.ID),
		Mock:        true,
		MockOrderID: created.ID,
	}, nil
}

// Reconcile handles the browser's return redirect after payment. The gateway
// is the single source of truth for payment outcome; local state is moved to
// match it. Safe to call repeatedly for the same session id, because
// browsers replay return navigations.
func (s *checkoutService) Reconcile(ctx context.Context, sessionToken string, userID string, sessionID string) (*domain.Order, error) {
	const op = "checkout.reconcile"

	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	sess, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, billing.ErrSessionNotFound) {
			return nil, domain.NotFound(op, "payment session", sessionID)
		}
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "failed to fetch payment session status")
	}

	paid := sess.PaymentStatus == billing.PaymentStatusPaid

	order, err := s.orders.GetBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		order, err = s.applyReconciliation(ctx, sessionID, sess, paid)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to update order")
		}
	case domain.IsCode(err, domain.ENOTFOUND):
		// Eager creation raced or was skipped. The current cart is the
		// last available source for line items; it is cleared below.
		order, err = s.createFromReconcile(ctx, sessionToken, userID, sessionID, sess, paid)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to look up order")
	}

	if err := s.carts.Clear(ctx, sessionToken); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to clear cart")
	}

	if paid && telemetry.Business != nil {
		telemetry.Business.CheckoutCompleted.WithLabelValues("reconcile").Inc()
	}

	return order, nil
}

// createFromReconcile inserts the order from the current cart plus whatever
// the gateway reports. A conflict means a concurrent reconciliation created
// the row first; fall back to updating it.
func (s *checkoutService) createFromReconcile(ctx context.Context, sessionToken, userID, sessionID string, sess *billing.CheckoutSession, paid bool) (*domain.Order, error) {
	const op = "checkout.reconcile"

	cart, err := s.carts.Get(ctx, sessionToken)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load cart")
	}

	order := &domain.Order{
		UserID:          userID,
		SessionID:       sessionID,
		PaymentIntentID: sess.PaymentIntentID,
		CustomerEmail:   sess.CustomerEmail,
		CustomerName:    sess.CustomerName,
		PhoneNumber:     sess.CustomerPhone,
		ShippingAddress: billing.FormatAddress(sess.ShippingAddress),
		TotalCents:      sess.AmountTotalCents,
		Status:          domain.OrderStatusPending,
	}
	if paid {
		order.Status = domain.OrderStatusPaid
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      item.ProductID,
			ProductTitle:   item.Title,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	created, err := s.orders.CreateWithItems(ctx, order)
	if err == nil {
		if telemetry.Business != nil {
			telemetry.Business.OrdersCreated.WithLabelValues("reconcile").Inc()
			telemetry.Business.OrderValue.Observe(float64(created.TotalCents))
		}
		return created, nil
	}
	if !domain.IsCode(err, domain.ECONFLICT) {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to record order")
	}

	updated, err := s.applyReconciliation(ctx, sessionID, sess, paid)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to update order after create conflict")
	}
	return updated, nil
}

// applyReconciliation overwrites order fields with gateway values, skipping
// blanks so known-good data is never clobbered. Status only ever advances.
func (s *checkoutService) applyReconciliation(ctx context.Context, sessionID string, sess *billing.CheckoutSession, paid bool) (*domain.Order, error) {
	update := domain.OrderUpdate{
		PaymentIntentID: sess.PaymentIntentID,
		MarkPaid:        paid,
		CustomerEmail:   nonBlank(sess.CustomerEmail),
		CustomerName:    nonBlank(sess.CustomerName),
		PhoneNumber:     nonBlank(sess.CustomerPhone),
		ShippingAddress: nonBlank(billing.FormatAddress(sess.ShippingAddress)),
	}
	if sess.AmountTotalCents > 0 {
		total := sess.AmountTotalCents
		update.TotalCents = &total
	}

	return s.orders.Update(ctx, sessionID, update)
}

// ConfirmPayment handles the gateway's asynchronous payment-completed event.
// Orders are never created from this path; events for unknown session ids
// are dropped with a log line, because eager creation or Reconcile is
// expected to have produced the row. Idempotent under duplicate delivery.
func (s *checkoutService) ConfirmPayment(ctx context.Context, sessionID string, paymentIntentID string) error {
	const op = "checkout.confirm_payment"

	_, err := s.orders.Update(ctx, sessionID, domain.OrderUpdate{
		PaymentIntentID: paymentIntentID,
		MarkPaid:        true,
	})
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			s.logger.Warn("dropping payment confirmation for unknown session", "session_id", sessionID)
			if telemetry.Business != nil {
				telemetry.Business.WebhookDropped.WithLabelValues("order_not_found").Inc()
			}
			return nil
		}
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to mark order paid")
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutCompleted.WithLabelValues("webhook").Inc()
	}
	s.logger.Info("order marked paid via webhook", "session_id", sessionID, "payment_intent_id", paymentIntentID)
	return nil
}

// validateInfo runs struct validation and converts field failures into a
// domain.ValidationError the handler can hand back to the form.
func (s *checkoutService) validateInfo(op string, info domain.CustomerInfo) error {
	err := s.validate.Struct(info)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(err, domain.EINVALID, op, "invalid customer info")
	}

	var ve error
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "email":
			ve = domain.AddFieldError(ve, fe.Field(), "must be a valid email address")
		default:
			ve = domain.AddFieldError(ve, fe.Field(), "is required")
		}
	}
	return ve
}

// upsertProfile stores the submitted address as the user's default shipping
// profile. A deliberate convenience write, independent of payment outcome.
func (s *checkoutService) upsertProfile(ctx context.Context, userID string, info domain.CustomerInfo) error {
	_, err := s.profiles.Upsert(ctx, &domain.ShippingProfile{
		UserID:        userID,
		FullName:      strings.TrimSpace(info.CustomerName),
		Email:         strings.TrimSpace(info.Email),
		PhoneNumber:   strings.TrimSpace(info.PhoneNumber),
		StreetAddress: strings.TrimSpace(info.StreetAddress),
		StreetNumber:  strings.TrimSpace(info.StreetNumber),
		City:          strings.TrimSpace(info.City),
		Province:      strings.TrimSpace(info.Province),
		Country:       strings.TrimSpace(info.Country),
	})
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "checkout.upsert_profile", "failed to save shipping profile")
	}
	return nil
}

func (s *checkoutService) orderFromCart(cart *domain.Cart, info domain.CustomerInfo, userID string) *domain.Order {
	order := &domain.Order{
		UserID:          userID,
		CustomerEmail:   info.Email,
		CustomerName:    info.CustomerName,
		PhoneNumber:     info.PhoneNumber,
		ShippingAddress: info.ShippingAddress(),
		TotalCents:      cart.TotalCents(),
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      item.ProductID,
			ProductTitle:   item.Title,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return order
}

// absoluteURL prefixes site-relative image paths with the public origin so
// the gateway can fetch them.
func (s *checkoutService) absoluteURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.cfg.BaseURL + path
}

func nonBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
