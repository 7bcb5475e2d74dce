package adapter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutSession is the provider-side session a customer completes to pay
// the deposit or full amount for a reservation.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// PaymentProvider defines the Anti-Corruption Layer interface for the
// external payment service. This abstraction decouples the booking domain
// from the provider API.
type PaymentProvider interface {
	// CreateCheckout opens a checkout session for the given amount and
	// returns the URL the customer is redirected to.
	CreateCheckout(ctx context.Context, reservationID uuid.UUID, amountCents int64, currency, customerEmail string) (CheckoutSession, error)

	// CancelCheckout voids an open checkout session.
	CancelCheckout(ctx context.Context, sessionID string) error

	// CreateRefund refunds a settled payment.
	CreateRefund(ctx context.Context, sessionID string, amountCents int64) error
}

// MockPaymentProvider is a development/testing implementation of
// PaymentProvider. It simulates provider behavior without a real account.
type MockPaymentProvider struct {
	logger *zap.Logger
}

// NewMockPaymentProvider creates a new mock provider for development.
func NewMockPaymentProvider(logger *zap.Logger) *MockPaymentProvider {
	return &MockPaymentProvider{logger: logger}
}

// CreateCheckout simulates opening a checkout session and returns mock IDs.
func (m *MockPaymentProvider) CreateCheckout(ctx context.Context, reservationID uuid.UUID, amountCents int64, currency, customerEmail string) (CheckoutSession, error) {
	sessionID := fmt.Sprintf("cs_mock_%s", uuid.New().String()[:8])
	session := CheckoutSession{
		SessionID:   sessionID,
		CheckoutURL: fmt.Sprintf("https://pay.example.com/checkout/%s", sessionID),
	}

	m.logger.Info("[MOCK PAYMENT] checkout session created",
		zap.String("session_id", sessionID),
		zap.String("reservation_id", reservationID.String()),
		zap.Int64("amount_cents", amountCents),
		zap.String("currency", currency),
		zap.String("customer_email", customerEmail),
	)

	return session, nil
}

// CancelCheckout simulates voiding a checkout session.
func (m *MockPaymentProvider) CancelCheckout(ctx context.Context, sessionID string) error {
	m.logger.Info("[MOCK PAYMENT] checkout session cancelled",
		zap.String("session_id", sessionID),
	)
	return nil
}

// CreateRefund simulates refunding a settled payment.
func (m *MockPaymentProvider) CreateRefund(ctx context.Context, sessionID string, amountCents int64) error {
	m.logger.Info("[MOCK PAYMENT] refund created",
		zap.String("session_id", sessionID),
		zap.Int64("amount_cents", amountCents),
	)
	return nil
}
