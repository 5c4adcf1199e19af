package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  StripeConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  StripeConfig{APIKey: "sk_test_abc", WebhookSecret: "whsec_abc"},
			wantErr: false,
		},
		{
			name:    "missing API key",
			config:  StripeConfig{WebhookSecret: "whsec_abc"},
			wantErr: true,
		},
		{
			name:    "missing webhook secret",
			config:  StripeConfig{APIKey: "sk_test_abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripeConfig_IsTestMode(t *testing.T) {
	testConfig := StripeConfig{APIKey: "sk_test_abc"}
	assert.True(t, testConfig.IsTestMode())

	liveConfig := StripeConfig{APIKey: "sk_live_abc"}
	assert.False(t, liveConfig.IsTestMode())
}

func TestNewStripeProvider_RejectsIncompleteConfig(t *testing.T) {
	_, err := NewStripeProvider(StripeConfig{})
	require.Error(t, err)

	_, err = NewStripeProvider(StripeConfig{APIKey: "sk_test_abc", WebhookSecret: "whsec_abc"})
	require.NoError(t, err)
}

// TestCreateCheckoutSession exercises the session creation contract through
// the mock provider.
func TestCreateCheckoutSession(t *testing.T) {
	tests := []struct {
		name      string
		params    CreateCheckoutSessionParams
		setupMock func(*MockProvider)
		wantErr   error
	}{
		{
			name: "creates session with valid params",
			params: CreateCheckoutSessionParams{
				LineItems: []SessionLineItem{
					{Name: "Aurora Print", UnitAmountCents: 2999, Quantity: 2},
				},
				SuccessURL:    "https://shop.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}",
				CancelURL:     "https://shop.example.com/checkout/cancel",
				Currency:      "eur",
				CustomerEmail: "mario@example.com",
			},
			wantErr: nil,
		},
		{
			name:    "rejects empty line items",
			params:  CreateCheckoutSessionParams{Currency: "eur"},
			wantErr: ErrNoLineItems,
		},
		{
			name: "propagates gateway errors",
			params: CreateCheckoutSessionParams{
				LineItems: []SessionLineItem{{Name: "Aurora Print", UnitAmountCents: 2999, Quantity: 1}},
			},
			setupMock: func(m *MockProvider) {
				m.CreateCheckoutSessionFunc = func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
					return nil, errors.New("rate limited")
				}
			},
			wantErr: errors.New("rate limited"),
		},
		{
			name: "metadata carried as named fields",
			params: CreateCheckoutSessionParams{
				LineItems: []SessionLineItem{{Name: "Aurora Print", UnitAmountCents: 2999, Quantity: 1}},
				Metadata: CheckoutMetadata{
					CustomerName: "Mario Rossi",
					City:         "Torino",
					Country:      "Italia",
				},
			},
			setupMock: func(m *MockProvider) {
				m.CreateCheckoutSessionFunc = func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
					if params.Metadata.CustomerName == "" {
						return nil, errors.New("customer name missing from metadata")
					}
					return &CheckoutSession{ID: "cs_test_meta", PaymentStatus: PaymentStatusUnpaid}, nil
				}
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider()
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			sess, err := mock.CreateCheckoutSession(context.Background(), tt.params)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				return
			}

			require.NoError(t, err)
			require.NotNil(t, sess)
			assert.NotEmpty(t, sess.ID)
			assert.Equal(t, PaymentStatusUnpaid, sess.PaymentStatus)
		})
	}
}
