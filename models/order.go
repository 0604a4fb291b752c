package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in-progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses as tracked on the order
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
	PaymentStatusExpired  = "expired"
)

// Service types offered by the studio
const (
	ServiceTypePrinting = "printing"
	ServiceTypePhoto    = "photo"
	ServiceTypeDesign   = "design"
)

// OrderDetails holds the customer-supplied contact and job information,
// embedded in the orders table.
type OrderDetails struct {
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Instructions string `json:"instructions"`
	Description  string `json:"description"`
}

// OrderFile is metadata for a customer reference file attached to an order.
// Only metadata lives on the order row; the bytes go to S3.
type OrderFile struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Type  string `json:"type"`
	S3Key string `json:"s3_key,omitempty"`
}

// Order represents a print/photo/design order in the system
type Order struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	ServiceType        string            `gorm:"not null;index" json:"service_type"` // printing, photo, design
	ServiceName        string            `json:"service_name"`
	SelectedOptions    map[string]string `gorm:"serializer:json" json:"selected_options"`
	OrderDetails       OrderDetails      `gorm:"embedded;embeddedPrefix:details_" json:"order_details"`
	InputMethod        string            `gorm:"default:'describe'" json:"input_method"` // upload or describe
	Files              []OrderFile       `gorm:"serializer:json" json:"files"`
	TotalPrice         float64           `gorm:"not null;check:total_price >= 0" json:"total_price"`
	Status             string            `gorm:"not null;default:'pending';index" json:"status"`
	PaymentStatus      string            `gorm:"not null;default:'pending';index" json:"payment_status"`
	CustomerID         uint              `gorm:"not null;index" json:"customer_id"` // foreign key to users table
	Customer           User              `gorm:"foreignKey:CustomerID" json:"customer"`
	PaymentID          *uint             `gorm:"index" json:"payment_id"` // set once a payment completes
	AllowPayLater      bool              `gorm:"default:true" json:"allow_pay_later"`
	PaymentExpiry      *time.Time        `json:"payment_expiry"` // end of the pay-later window
	PaymentAttempts    int               `gorm:"default:0" json:"payment_attempts"`
	LastPaymentAttempt *time.Time        `json:"last_payment_attempt"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsPaymentExpired reports whether the pay-later window has closed at the
// given instant. Orders without an expiry never expire.
func IsPaymentExpired(order *Order, now time.Time) bool {
	if order.PaymentExpiry == nil {
		return false
	}
	return now.After(*order.PaymentExpiry)
}

// CanPay reports whether the order is currently payable: not already paid,
// not marked expired, and still inside the pay-later window.
func CanPay(order *Order, now time.Time) bool {
	if order.PaymentStatus == PaymentStatusPaid || order.PaymentStatus == PaymentStatusExpired {
		return false
	}
	if IsPaymentExpired(order, now) {
		return false
	}
	return true
}

// PaymentTimeRemaining returns how long the order stays payable from the
// given instant. Zero means the window has closed or was never set.
func PaymentTimeRemaining(order *Order, now time.Time) time.Duration {
	if order.PaymentExpiry == nil {
		return 0
	}
	remaining := order.PaymentExpiry.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ValidServiceType reports whether the given service type is one the studio offers.
func ValidServiceType(serviceType string) bool {
	switch serviceType {
	case ServiceTypePrinting, ServiceTypePhoto, ServiceTypeDesign:
		return true
	}
	return false
}

// ValidOrderStatus reports whether the given status is in the order status vocabulary.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether the given status is in the order-level
// payment status vocabulary.
func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusExpired:
		return true
	}
	return false
}
