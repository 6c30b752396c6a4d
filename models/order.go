package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order lifecycle statuses. An order is created as pending, moved to paid
// or failed by the payment webhook, and onward by the admin fulfillment API.
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusFailed     = "failed"
)

type Order struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string     `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	// Guest checkout contact snapshot. Exactly one of UserID or the guest
	// fields is populated.
	GuestName  string `gorm:"type:varchar(255)" json:"guest_name,omitempty"`
	GuestEmail string `gorm:"type:varchar(255)" json:"guest_email,omitempty"`
	GuestPhone string `gorm:"type:varchar(32)" json:"guest_phone,omitempty"`

	ShippingName     string `gorm:"type:varchar(255);not null" json:"shipping_name"`
	ShippingEmail    string `gorm:"type:varchar(255);not null" json:"shipping_email"`
	ShippingPhone    string `gorm:"type:varchar(32);not null" json:"shipping_phone"`
	ShippingAddress  string `gorm:"type:text;not null" json:"shipping_address"`
	ShippingCity     string `gorm:"type:varchar(128);not null" json:"shipping_city"`
	ShippingPostcode string `gorm:"type:varchar(16);not null" json:"shipping_postcode"`

	Subtotal     float64 `gorm:"not null" json:"subtotal"`
	ShippingCost float64 `gorm:"not null" json:"shipping_cost"`
	Total        float64 `gorm:"not null" json:"total"`

	Status         string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TrackingNumber string `gorm:"type:varchar(64)" json:"tracking_number,omitempty"`
	Courier        string `gorm:"type:varchar(64)" json:"courier,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderItems []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
	Payment    *OrderPayment `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
}

// OrderItem is a snapshot of the product at order time; line totals are
// immutable after creation and do not follow later product price changes.
type OrderItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id,omitempty"`
	ProductName string     `gorm:"type:varchar(255);not null" json:"product_name"`
	Price       float64    `gorm:"not null" json:"price"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	LineTotal   float64    `gorm:"not null" json:"line_total"`
}
