package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirfaris/storefront-backend/models"
)

// ErrOrderFinalized is returned by MarkPaid/MarkFailed when the order is no
// longer pending. A duplicate webhook delivery lands here and is treated as
// a no-op by the caller.
var ErrOrderFinalized = errors.New("order already finalized")

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *models.Order) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindAll(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Order, error)
	MarkPaid(ctx context.Context, order *models.Order, transactionID, rawPayload string) error
	MarkFailed(ctx context.Context, orderID uuid.UUID, rawPayload string) error
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new instance of GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateWithItems persists the order and its item snapshots in one write.
func (r *GormOrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByIDWithItems retrieves an order with its items preloaded
func (r *GormOrderRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindAll retrieves orders with optional status filter and pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("OrderItems").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateFields applies a set of column updates to an order and returns the
// refreshed row. An update that matches no row surfaces as
// gorm.ErrRecordNotFound.
func (r *GormOrderRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Order, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByIDWithItems(ctx, id)
}

// MarkPaid finalizes a successful payment in a single transaction: the order
// moves to paid, the payment row is completed, and stock is decremented per
// item. The status update is a compare-and-swap on pending so that two
// near-simultaneous webhook deliveries cannot both apply the decrements.
func (r *GormOrderRepository) MarkPaid(ctx context.Context, order *models.Order, transactionID, rawPayload string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":  models.OrderStatusPaid,
				"paid_at": &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderFinalized
		}

		if err := tx.Model(&models.OrderPayment{}).
			Where("order_id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":         models.PaymentStatusCompleted,
				"transaction_id": transactionID,
				"raw_payload":    rawPayload,
			}).Error; err != nil {
			return err
		}

		for _, item := range order.OrderItems {
			if item.ProductID == nil {
				continue
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", *item.ProductID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkFailed records a failed payment: order and payment move to failed,
// the raw payload is kept for audit, stock is untouched.
func (r *GormOrderRepository) MarkFailed(ctx context.Context, orderID uuid.UUID, rawPayload string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("status", models.OrderStatusFailed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderFinalized
		}

		return tx.Model(&models.OrderPayment{}).
			Where("order_id = ?", orderID).
			Updates(map[string]interface{}{
				"status":      models.PaymentStatusFailed,
				"raw_payload": rawPayload,
			}).Error
	})
}
