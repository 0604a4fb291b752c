package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/shutterpress/shutterpress-api/models"
)

// AdminOrderFilters narrows the admin order listing.
type AdminOrderFilters struct {
	Status        string
	PaymentStatus string
	ServiceType   string
	Search        string // matches customer name or email on the order details
}

// OrderStats are the aggregate figures shown on the admin dashboard.
type OrderStats struct {
	PendingCount int64   `json:"pending_count"`
	PaidCount    int64   `json:"paid_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// updatableOrderFields is the allow-list for admin field updates. Everything
// else on the order is owned by the lifecycle and payment workflows.
var updatableOrderFields = map[string]bool{
	"service_name":         true,
	"details_phone":        true,
	"details_address":      true,
	"details_instructions": true,
	"details_description":  true,
	"allow_pay_later":      true,
}

// ListAllOrders returns one page of all orders for the admin view, with the
// customer relation loaded.
func (s *OrderService) ListAllOrders(filters AdminOrderFilters, page, limit int) ([]models.Order, *Pagination, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&models.Order{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filters.PaymentStatus)
	}
	if filters.ServiceType != "" {
		query = query.Where("service_type = ?", filters.ServiceType)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("details_customer_name LIKE ? OR details_email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var orders []models.Order
	if err := query.Preload("Customer").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if err := s.reconcileExpired(orders); err != nil {
		return nil, nil, err
	}

	return orders, paginate(page, limit, total), nil
}

// GetOrderStats returns the aggregate order figures.
func (s *OrderService) GetOrderStats() (*OrderStats, error) {
	var stats OrderStats

	if err := s.db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPending).
		Count(&stats.PendingCount).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Count(&stats.PaidCount).Error; err != nil {
		return nil, err
	}

	var revenue struct{ Total float64 }
	if err := s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Where("payment_status = ?", models.PaymentStatusPaid).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue.Total

	return &stats, nil
}

// GetOrder loads any order by id, with the customer relation.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Customer").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves an order to a new fulfilment status.
func (s *OrderService) UpdateStatus(orderID uint, newStatus string) (*models.Order, error) {
	if !models.ValidOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: invalid order status %q", ErrValidation, newStatus)
	}

	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(order).Update("status", newStatus).Error; err != nil {
		return nil, err
	}

	log.Printf("[orders] admin status update order_id=%d status=%s", order.ID, newStatus)
	return order, nil
}

// UpdateOrderFields applies an allow-listed subset of field updates.
func (s *OrderService) UpdateOrderFields(orderID uint, fields map[string]interface{}) (*models.Order, error) {
	updates := map[string]interface{}{}
	for key, value := range fields {
		if !updatableOrderFields[key] {
			return nil, fmt.Errorf("%w: field %q is not updatable", ErrValidation, key)
		}
		updates[key] = value
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields supplied", ErrValidation)
	}

	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetOrder(orderID)
}

// DeleteOrder removes an order and any payment rows linked to it.
func (s *OrderService) DeleteOrder(orderID uint) error {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}

	if err := s.db.Where("order_id = ?", order.ID).Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	if err := s.db.Delete(order).Error; err != nil {
		return err
	}

	log.Printf("[orders] admin deleted order_id=%d (payments cascaded)", order.ID)
	return nil
}
