package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// OrderPayment is the one-to-one payment record for an order. GatewayRef is
// the gateway bill code assigned at order-creation time; the webhook must
// match against it before any state change.
type OrderPayment struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	GatewayRef    string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"gateway_ref"`
	Amount        float64        `gorm:"not null" json:"amount"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TransactionID string         `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`
	RawPayload    string         `gorm:"type:text" json:"-"` // last-seen gateway payload, kept for audit
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
