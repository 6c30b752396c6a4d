package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amirfaris/storefront-backend/cache"
	"github.com/amirfaris/storefront-backend/repository"
)

// ProductController serves the public catalog reads. Responses are cached in
// Redis when a cache is configured; cache misses and failures fall through
// to the database.
type ProductController struct {
	productRepo repository.ProductRepository
	cache       *cache.ProductCache
	logger      *zap.Logger
}

// NewProductController creates a new ProductController.
func NewProductController(repo repository.ProductRepository, productCache *cache.ProductCache, logger *zap.Logger) *ProductController {
	return &ProductController{productRepo: repo, cache: productCache, logger: logger}
}

// ListProducts handles GET /products
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	if pc.cache != nil {
		if payload, ok := pc.cache.GetProductList(c.Request.Context(), page, limit); ok {
			c.Data(http.StatusOK, "application/json", payload)
			return
		}
	}

	products, total, err := pc.productRepo.FindPublished(c.Request.Context(), page, limit)
	if err != nil {
		pc.logger.Error("Failed to fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	body := gin.H{
		"products": products,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	}

	if pc.cache != nil {
		if payload, err := json.Marshal(body); err == nil {
			pc.cache.SetProductList(c.Request.Context(), page, limit, payload)
		}
	}

	c.JSON(http.StatusOK, body)
}

// GetProduct handles GET /products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if pc.cache != nil {
		if product, ok := pc.cache.GetProduct(c.Request.Context(), id); ok {
			c.JSON(http.StatusOK, product)
			return
		}
	}

	product, err := pc.productRepo.FindPublishedByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		pc.logger.Error("Failed to fetch product", zap.String("product_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	if pc.cache != nil {
		pc.cache.SetProduct(c.Request.Context(), product)
	}

	c.JSON(http.StatusOK, product)
}
