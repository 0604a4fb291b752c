package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/shutterpress/shutterpress-api/metrics"
	"github.com/shutterpress/shutterpress-api/models"
)

// txRefPrefix prefixes every transaction reference issued by this service.
const txRefPrefix = "SPS"

// PaymentService drives the payment workflow: it opens checkouts against the
// gateway, verifies their outcomes, and reconciles order state from them.
type PaymentService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	currency string
	now      func() time.Time // overridable in tests
}

// NewPaymentService creates a payment service backed by the given gateway.
func NewPaymentService(db *gorm.DB, gateway PaymentGateway, currency string) *PaymentService {
	return &PaymentService{
		db:       db,
		gateway:  gateway,
		currency: currency,
		now:      time.Now,
	}
}

// SetClock overrides the service clock (primarily for testing)
func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

// InitializeResult is returned when a checkout is opened for an order.
type InitializeResult struct {
	CheckoutRef string `json:"checkout_ref"`
	TxRef       string `json:"tx_ref"`
	PaymentID   uint   `json:"payment_id"`
}

// VerifyResult pairs the payment attempt with the order state after
// verification.
type VerifyResult struct {
	Payment *models.Payment `json:"payment"`
	Order   *models.Order   `json:"order"`
}

// Initialize opens a checkout for the order and records a pending payment
// attempt. The order row itself is not touched until verification. A
// declined checkout leaves no payment row behind.
func (s *PaymentService) Initialize(orderID, customerID uint, scenario string) (*InitializeResult, error) {
	order, err := s.findCustomerOrder(orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: order %d", ErrAlreadyPaid, orderID)
	}

	txRef := s.newTxRef(order.ID)
	session, err := s.gateway.CreateCheckout(order, txRef, scenario)
	if err != nil {
		if errors.Is(err, ErrGatewayDeclined) {
			metrics.PaymentsFailedTotal.Inc()
			log.Printf("[payments] checkout declined order_id=%d tx_ref=%s", order.ID, txRef)
		}
		return nil, err
	}

	payment := models.Payment{
		OrderID:               order.ID,
		CustomerID:            order.CustomerID,
		Amount:                order.TotalPrice,
		Currency:              s.currency,
		TxRef:                 txRef,
		ExternalTransactionID: session.ExternalTransactionID,
		Status:                models.PaymentAttemptPending,
		PaymentMethod:         "sandbox",
		TestMode:              session.TestMode,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, err
	}

	metrics.PaymentsInitializedTotal.Inc()
	log.Printf("[payments] initialized order_id=%d payment_id=%d tx_ref=%s amount=%.2f", order.ID, payment.ID, txRef, payment.Amount)

	return &InitializeResult{
		CheckoutRef: session.CheckoutRef,
		TxRef:       txRef,
		PaymentID:   payment.ID,
	}, nil
}

// Verify settles a payment attempt from the gateway's verification outcome.
// On success the payment completes and the order flips to in-progress/paid;
// the two writes are sequential, not transactional. On failure only the
// payment row is touched and the order stays pending for a retry.
//
// Re-verifying an already completed attempt re-confirms the terminal state
// instead of reverting it.
func (s *PaymentService) Verify(txRef, scenario string) (*VerifyResult, error) {
	var payment models.Payment
	err := s.db.Where("tx_ref = ?", txRef).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: payment %q", ErrNotFound, txRef)
	}
	if err != nil {
		return nil, err
	}

	// Terminal attempts stay terminal.
	if payment.Status == models.PaymentAttemptCompleted {
		order, err := s.loadOrder(payment.OrderID)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Payment: &payment, Order: order}, nil
	}

	result, err := s.gateway.VerifyTransaction(txRef, scenario)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !result.Succeeded {
		payment.Status = models.PaymentAttemptFailed
		payment.VerificationResponse = result.Payload
		if err := s.db.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
			"status":                models.PaymentAttemptFailed,
			"verification_response": result.Payload,
		}).Error; err != nil {
			return nil, err
		}

		metrics.PaymentsFailedTotal.Inc()
		log.Printf("[payments] verification failed payment_id=%d tx_ref=%s", payment.ID, txRef)

		order, err := s.loadOrder(payment.OrderID)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Payment: &payment, Order: order}, nil
	}

	payment.Status = models.PaymentAttemptCompleted
	payment.PaidAt = &now
	payment.VerificationResponse = result.Payload
	if err := s.db.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
		"status":                models.PaymentAttemptCompleted,
		"paid_at":               now,
		"verification_response": result.Payload,
	}).Error; err != nil {
		return nil, err
	}

	// Second write; a crash here leaves the payment completed and the
	// order unpaid until replayed.
	if err := s.db.Model(&models.Order{}).Where("id = ?", payment.OrderID).Updates(map[string]interface{}{
		"status":               models.OrderStatusInProgress,
		"payment_status":       models.PaymentStatusPaid,
		"payment_id":           payment.ID,
		"last_payment_attempt": now,
	}).Error; err != nil {
		return nil, err
	}

	metrics.PaymentsCompletedTotal.Inc()
	metrics.RevenueTotal.Add(payment.Amount)
	log.Printf("[payments] completed payment_id=%d order_id=%d tx_ref=%s amount=%.2f", payment.ID, payment.OrderID, txRef, payment.Amount)

	order, err := s.loadOrder(payment.OrderID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Payment: &payment, Order: order}, nil
}

// GetStatus returns the most recent payment attempt for one of the
// customer's orders.
func (s *PaymentService) GetStatus(orderID, customerID uint) (*models.Payment, error) {
	if _, err := s.findCustomerOrder(orderID, customerID); err != nil {
		return nil, err
	}

	var payment models.Payment
	err := s.db.Where("order_id = ?", orderID).Order("created_at DESC").First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no payment for order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// AdminSetPaymentStatus forces the order-level payment status. Forcing paid
// on an order with no linked payment synthesizes a completed manual payment;
// otherwise the linked payment is mapped onto the attempt vocabulary.
func (s *PaymentService) AdminSetPaymentStatus(orderID uint, newStatus string) (*models.Order, error) {
	if !models.ValidPaymentStatus(newStatus) {
		return nil, fmt.Errorf("%w: invalid payment status %q", ErrValidation, newStatus)
	}

	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if order.PaymentID == nil {
		if newStatus == models.PaymentStatusPaid {
			payment := models.Payment{
				OrderID:       order.ID,
				CustomerID:    order.CustomerID,
				Amount:        order.TotalPrice,
				Currency:      s.currency,
				TxRef:         s.newTxRef(order.ID),
				Status:        models.PaymentAttemptCompleted,
				PaymentMethod: "manual",
				PaidAt:        &now,
			}
			if err := s.db.Create(&payment).Error; err != nil {
				return nil, err
			}
			if err := s.db.Model(order).Update("payment_id", payment.ID).Error; err != nil {
				return nil, err
			}
			log.Printf("[payments] admin synthesized manual payment payment_id=%d order_id=%d", payment.ID, order.ID)
		}
	} else {
		attemptStatus := mapOrderPaymentStatus(newStatus)
		updates := map[string]interface{}{"status": attemptStatus}
		if attemptStatus == models.PaymentAttemptCompleted {
			updates["paid_at"] = now
		}
		if err := s.db.Model(&models.Payment{}).Where("id = ?", *order.PaymentID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(order).Update("payment_status", newStatus).Error; err != nil {
		return nil, err
	}

	log.Printf("[payments] admin forced payment status order_id=%d payment_status=%s", order.ID, newStatus)
	return s.loadOrder(orderID)
}

// mapOrderPaymentStatus translates the order-level payment vocabulary onto
// the attempt vocabulary.
func mapOrderPaymentStatus(orderStatus string) string {
	switch orderStatus {
	case models.PaymentStatusPaid:
		return models.PaymentAttemptCompleted
	case models.PaymentStatusFailed:
		return models.PaymentAttemptFailed
	case models.PaymentStatusRefunded, models.PaymentStatusExpired:
		return models.PaymentAttemptCancelled
	default:
		return models.PaymentAttemptPending
	}
}

// newTxRef derives a transaction reference from the order id and the
// wall clock. Collisions are not formally bounded but require two refs for
// the same order in the same millisecond.
func (s *PaymentService) newTxRef(orderID uint) string {
	return fmt.Sprintf("%s-%d-%d", txRefPrefix, orderID, s.now().UnixMilli())
}

func (s *PaymentService) findCustomerOrder(orderID, customerID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ? AND customer_id = ?", orderID, customerID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *PaymentService) loadOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
