package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment attempt statuses
const (
	PaymentAttemptPending   = "pending"
	PaymentAttemptCompleted = "completed"
	PaymentAttemptFailed    = "failed"
	PaymentAttemptCancelled = "cancelled"
)

// Payment represents a single payment attempt against an order. The gateway
// in this deployment is a sandbox, so rows are created with TestMode set.
type Payment struct {
	ID                    uint              `gorm:"primaryKey" json:"id"`
	OrderID               uint              `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Order                 Order             `gorm:"foreignKey:OrderID" json:"-"`    // don't include full order in JSON
	CustomerID            uint              `gorm:"not null;index" json:"customer_id"`
	Amount                float64           `gorm:"not null;check:amount >= 0" json:"amount"`
	Currency              string            `gorm:"not null;default:'USD'" json:"currency"`
	TxRef                 string            `gorm:"uniqueIndex;not null" json:"tx_ref"` // gateway transaction reference
	ExternalTransactionID string            `json:"external_transaction_id"`
	Status                string            `gorm:"not null;default:'pending';index" json:"status"` // pending, completed, failed, cancelled
	PaymentMethod         string            `gorm:"default:'sandbox'" json:"payment_method"`
	PaidAt                *time.Time        `json:"paid_at"` // set when the attempt completes
	VerificationResponse  map[string]string `gorm:"serializer:json" json:"verification_response"`
	TestMode              bool              `gorm:"default:false" json:"test_mode"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	DeletedAt             gorm.DeletedAt    `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
