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

// OrderService owns the order lifecycle: creation, the pay-later window,
// lazy expiry reconciliation, and payability decisions.
type OrderService struct {
	db             *gorm.DB
	pricing        *PricingConfig
	payLaterWindow time.Duration
	now            func() time.Time // overridable in tests
}

// NewOrderService creates an order service with the given price tables and
// pay-later window.
func NewOrderService(db *gorm.DB, pricing *PricingConfig, payLaterWindow time.Duration) *OrderService {
	return &OrderService{
		db:             db,
		pricing:        pricing,
		payLaterWindow: payLaterWindow,
		now:            time.Now,
	}
}

// SetClock overrides the service clock (primarily for testing)
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// Pricing returns the injected price tables.
func (s *OrderService) Pricing() *PricingConfig {
	return s.pricing
}

// CreateOrderInput carries everything needed to create an order.
type CreateOrderInput struct {
	CustomerID      uint
	ServiceType     string
	ServiceName     string
	SelectedOptions map[string]string
	OrderDetails    models.OrderDetails
	InputMethod     string
	Files           []models.OrderFile
	TotalPrice      float64
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// OrderFilters narrows customer order listings.
type OrderFilters struct {
	Status        string
	PaymentStatus string
}

// PayableOrder is an order annotated with the time left in its pay-later window.
type PayableOrder struct {
	models.Order
	TimeRemainingSeconds int64 `json:"time_remaining_seconds"`
}

// CreateOrder validates the submission and persists a new pending order with
// a fresh pay-later window.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if !models.ValidServiceType(input.ServiceType) {
		return nil, fmt.Errorf("%w: invalid service type %q", ErrValidation, input.ServiceType)
	}
	if input.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: total price must not be negative", ErrValidation)
	}
	if input.OrderDetails.CustomerName == "" || input.OrderDetails.Email == "" || input.OrderDetails.Address == "" {
		return nil, fmt.Errorf("%w: customer name, email and address are required", ErrValidation)
	}

	expiry := s.now().Add(s.payLaterWindow)
	order := models.Order{
		ServiceType:     input.ServiceType,
		ServiceName:     input.ServiceName,
		SelectedOptions: input.SelectedOptions,
		OrderDetails:    input.OrderDetails,
		InputMethod:     input.InputMethod,
		Files:           input.Files,
		TotalPrice:      input.TotalPrice,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		CustomerID:      input.CustomerID,
		AllowPayLater:   true,
		PaymentExpiry:   &expiry,
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(order.ServiceType).Inc()
	log.Printf("[orders] created order_id=%d customer_id=%d service=%s total=%.2f", order.ID, order.CustomerID, order.ServiceType, order.TotalPrice)
	return &order, nil
}

// ListOrdersForCustomer returns one page of the customer's orders, newest
// first. Pending orders whose pay-later window has lapsed are persisted as
// expired before being returned; no background sweep exists.
func (s *OrderService) ListOrdersForCustomer(customerID uint, filters OrderFilters, page, limit int) ([]models.Order, *Pagination, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&models.Order{}).Where("customer_id = ?", customerID)
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filters.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if err := s.reconcileExpired(orders); err != nil {
		return nil, nil, err
	}

	return orders, paginate(page, limit, total), nil
}

// GetOrderForCustomer returns one of the customer's orders, reconciling a
// lapsed pay-later window on the way out.
func (s *OrderService) GetOrderForCustomer(orderID, customerID uint) (*models.Order, error) {
	order, err := s.findCustomerOrder(orderID, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.reconcileExpired([]models.Order{*order}); err != nil {
		return nil, err
	}
	// Re-read after reconciliation so the caller sees the persisted state.
	return s.findCustomerOrder(orderID, customerID)
}

// ListPendingPayable returns the customer's orders that can still be paid:
// payment pending and the pay-later window not yet closed. Each entry is
// annotated with the time remaining.
func (s *OrderService) ListPendingPayable(customerID uint, page, limit int) ([]PayableOrder, *Pagination, error) {
	page, limit = normalizePage(page, limit)
	now := s.now()

	query := s.db.Model(&models.Order{}).
		Where("customer_id = ?", customerID).
		Where("payment_status = ?", models.PaymentStatusPending).
		Where("payment_expiry IS NULL OR payment_expiry > ?", now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	payable := make([]PayableOrder, 0, len(orders))
	for _, order := range orders {
		payable = append(payable, PayableOrder{
			Order:                order,
			TimeRemainingSeconds: int64(models.PaymentTimeRemaining(&order, now).Seconds()),
		})
	}

	return payable, paginate(page, limit, total), nil
}

// ExtendForLater restarts the pay-later window on a pending order and resets
// the attempt counter.
func (s *OrderService) ExtendForLater(orderID, customerID uint) (*models.Order, error) {
	order, err := s.findCustomerOrder(orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: order %d is not awaiting payment", ErrNotFound, orderID)
	}

	expiry := s.now().Add(s.payLaterWindow)
	updates := map[string]interface{}{
		"payment_expiry":   expiry,
		"payment_attempts": 0,
		"allow_pay_later":  true,
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, err
	}

	log.Printf("[orders] pay-later window extended order_id=%d until=%s", order.ID, expiry.Format(time.RFC3339))
	return order, nil
}

// PrepareResume readies a pending order for another payment attempt. A still
// payable order is returned as-is; one whose window lapsed gets a fresh
// window and an incremented attempt counter.
func (s *OrderService) PrepareResume(orderID, customerID uint) (*models.Order, error) {
	order, err := s.findCustomerOrder(orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: order %d is not awaiting payment", ErrInvalidState, orderID)
	}

	now := s.now()
	if models.CanPay(order, now) {
		return order, nil
	}

	if models.IsPaymentExpired(order, now) {
		// Auto-renew the window on a resume attempt.
		expiry := now.Add(s.payLaterWindow)
		updates := map[string]interface{}{
			"payment_expiry":   expiry,
			"payment_attempts": order.PaymentAttempts + 1,
		}
		if err := s.db.Model(order).Updates(updates).Error; err != nil {
			return nil, err
		}
		log.Printf("[orders] resume renewed pay-later window order_id=%d attempts=%d", order.ID, order.PaymentAttempts)
		return order, nil
	}

	return nil, fmt.Errorf("%w: order %d cannot be resumed", ErrInvalidState, orderID)
}

// findCustomerOrder loads an order owned by the given customer.
func (s *OrderService) findCustomerOrder(orderID, customerID uint) (*models.Order, error) {
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

// reconcileExpired persists the expired payment status for any pending order
// whose pay-later window has lapsed, and mirrors the change on the in-memory
// slice so callers see the reconciled state.
func (s *OrderService) reconcileExpired(orders []models.Order) error {
	now := s.now()
	for i := range orders {
		order := &orders[i]
		if order.PaymentStatus != models.PaymentStatusPending || !models.IsPaymentExpired(order, now) {
			continue
		}
		if err := s.db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("payment_status", models.PaymentStatusExpired).Error; err != nil {
			return err
		}
		order.PaymentStatus = models.PaymentStatusExpired
		metrics.OrdersExpiredTotal.Inc()
		log.Printf("[orders] payment window lapsed, marked expired order_id=%d", order.ID)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func paginate(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
