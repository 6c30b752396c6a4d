package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirfaris/storefront-backend/models"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	FindPublished(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	FindPublishedByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindPublishedByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new instance of GormProductRepository
func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// FindPublished retrieves published products with pagination
func (r *GormProductRepository) FindPublished(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("published = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// FindPublishedByID retrieves a single published product
func (r *GormProductRepository) FindPublishedByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ? AND published = ?", id, true).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindPublishedByIDs retrieves the published products among the given ids.
// Callers compare the result size against the id set to detect unavailable
// products.
func (r *GormProductRepository) FindPublishedByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND published = ?", ids, true).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
