package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MockProvider is a mock payment gateway for testing. It simulates session
// creation and retrieval without calling the Stripe API.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing session creation behavior.
	CreateCheckoutSessionFunc func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSessionFunc allows customizing session retrieval behavior.
	GetCheckoutSessionFunc func(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior.
	VerifyWebhookSignatureFunc func(payload []byte, signature string, secret string) error

	// Sessions stores created sessions for retrieval.
	Sessions map[string]*CheckoutSession

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// Compile-time check that MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock payment gateway.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions: make(map[string]*CheckoutSession),
		CallLog:  []string{},
	}
}

// CreateCheckoutSession creates a mock session in "unpaid" state.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckoutSession(%d items)", len(params.LineItems)))

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	if len(params.LineItems) == 0 {
		return nil, ErrNoLineItems
	}

	var total int64
	for _, li := range params.LineItems {
		total += li.UnitAmountCents * int64(li.Quantity)
	}

	id := "cs_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	sess := &CheckoutSession{
		ID:               id,
		URL:              "https://checkout.example.com/pay/" + id,
		PaymentStatus:    PaymentStatusUnpaid,
		AmountTotalCents: total,
		CustomerEmail:    params.CustomerEmail,
	}

	m.Sessions[sess.ID] = sess
	return sess, nil
}

// GetCheckoutSession retrieves a stored mock session.
func (m *MockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCheckoutSession(%s)", sessionID))

	if m.GetCheckoutSessionFunc != nil {
		return m.GetCheckoutSessionFunc(ctx, sessionID)
	}

	sess, exists := m.Sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// VerifyWebhookSignature accepts any non-empty signature by default.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}

	if signature == "" {
		return ErrInvalidWebhookSignature
	}
	return nil
}

// MarkPaid transitions a stored session to paid with the given intent id.
// Test helper simulating the shopper completing payment on the hosted page.
func (m *MockProvider) MarkPaid(sessionID, paymentIntentID string) {
	if sess, ok := m.Sessions[sessionID]; ok {
		sess.PaymentStatus = PaymentStatusPaid
		sess.PaymentIntentID = paymentIntentID
	}
}
