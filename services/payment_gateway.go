package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shutterpress/shutterpress-api/models"
)

// Gateway scenario flags accepted by the sandbox. A real gateway would
// ignore them.
const (
	ScenarioTestSuccess = "test_success"
	ScenarioTestFailure = "test_failure"
	ScenarioSuccess     = "success"
	ScenarioFailure     = "failure"
)

// ErrGatewayDeclined is returned by a gateway when a checkout is refused.
var ErrGatewayDeclined = errors.New("payment declined by gateway")

// CheckoutSession is what a gateway hands back when a checkout is opened.
type CheckoutSession struct {
	CheckoutRef           string
	ExternalTransactionID string
	TestMode              bool
}

// VerificationResult is the gateway's answer when a transaction is verified.
type VerificationResult struct {
	Succeeded bool
	Payload   map[string]string
}

// PaymentGateway abstracts the payment processor so the workflow logic does
// not depend on any particular provider. The only implementation today is
// the sandbox; a real integration slots in behind the same interface.
type PaymentGateway interface {
	// CreateCheckout opens a checkout session for the given order and
	// transaction reference.
	CreateCheckout(order *models.Order, txRef, scenario string) (*CheckoutSession, error)

	// VerifyTransaction reports the outcome of a previously opened checkout.
	VerifyTransaction(txRef, scenario string) (*VerificationResult, error)
}

// SandboxGateway simulates a payment processor locally. Outcomes are driven
// entirely by the caller-supplied scenario flag; no network calls are made.
type SandboxGateway struct{}

// NewSandboxGateway creates a sandbox payment gateway
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

// CreateCheckout simulates opening a checkout session. The test_failure
// scenario declines immediately, as a processor rejecting the card would.
func (g *SandboxGateway) CreateCheckout(order *models.Order, txRef, scenario string) (*CheckoutSession, error) {
	if scenario == ScenarioTestFailure {
		return nil, fmt.Errorf("%w: scenario %q", ErrGatewayDeclined, scenario)
	}

	return &CheckoutSession{
		CheckoutRef:           fmt.Sprintf("https://sandbox.checkout.shutterpress.test/pay/%s", txRef),
		ExternalTransactionID: uuid.NewString(),
		TestMode:              true,
	}, nil
}

// VerifyTransaction simulates the processor's verification callback.
func (g *SandboxGateway) VerifyTransaction(txRef, scenario string) (*VerificationResult, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	if scenario == ScenarioFailure {
		return &VerificationResult{
			Succeeded: false,
			Payload: map[string]string{
				"tx_ref":      txRef,
				"status":      "failed",
				"reason":      "sandbox verification failed",
				"verified_at": now,
			},
		}, nil
	}

	return &VerificationResult{
		Succeeded: true,
		Payload: map[string]string{
			"tx_ref":       txRef,
			"status":       "successful",
			"processor":    "sandbox",
			"processor_id": uuid.NewString(),
			"verified_at":  now,
		},
	}, nil
}
