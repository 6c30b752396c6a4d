package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirfaris/storefront-backend/models"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.OrderPayment) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.OrderPayment, error)
}

type gormPaymentRepo struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new PaymentRepository backed by GORM
func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.OrderPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.OrderPayment, error) {
	var payment models.OrderPayment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
