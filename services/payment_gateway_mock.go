package services

import (
	"sync"

	"github.com/shutterpress/shutterpress-api/models"
)

// MockPaymentGateway is a scriptable PaymentGateway for testing. It records
// every call and replays canned responses.
type MockPaymentGateway struct {
	mu sync.Mutex

	CheckoutCalls []string // tx_refs passed to CreateCheckout
	VerifyCalls   []string // tx_refs passed to VerifyTransaction

	CheckoutErr   error
	CheckoutRef   string
	VerifyErr     error
	VerifyResult  *VerificationResult
}

// NewMockPaymentGateway creates a mock gateway that approves everything
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		CheckoutRef: "https://mock.checkout.test/pay",
	}
}

// CreateCheckout records the call and returns the scripted session or error.
func (m *MockPaymentGateway) CreateCheckout(order *models.Order, txRef, scenario string) (*CheckoutSession, error) {
	m.mu.Lock()
	m.CheckoutCalls = append(m.CheckoutCalls, txRef)
	m.mu.Unlock()

	if m.CheckoutErr != nil {
		return nil, m.CheckoutErr
	}
	return &CheckoutSession{
		CheckoutRef:           m.CheckoutRef + "/" + txRef,
		ExternalTransactionID: "mock-" + txRef,
		TestMode:              true,
	}, nil
}

// VerifyTransaction records the call and returns the scripted result or error.
func (m *MockPaymentGateway) VerifyTransaction(txRef, scenario string) (*VerificationResult, error) {
	m.mu.Lock()
	m.VerifyCalls = append(m.VerifyCalls, txRef)
	m.mu.Unlock()

	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	if m.VerifyResult != nil {
		return m.VerifyResult, nil
	}
	return &VerificationResult{
		Succeeded: true,
		Payload:   map[string]string{"tx_ref": txRef, "status": "successful"},
	}, nil
}
