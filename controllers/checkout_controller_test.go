package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/controllers"
	"github.com/amirfaris/storefront-backend/models"
	"github.com/amirfaris/storefront-backend/services"
)

type mockProductRepo struct {
	products []models.Product
}

func (m *mockProductRepo) FindPublished(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	return m.products, int64(len(m.products)), nil
}
func (m *mockProductRepo) FindPublishedByID(_ context.Context, _ uuid.UUID) (*models.Product, error) {
	if len(m.products) == 0 {
		return nil, nil
	}
	return &m.products[0], nil
}
func (m *mockProductRepo) FindPublishedByIDs(_ context.Context, _ []uuid.UUID) ([]models.Product, error) {
	return m.products, nil
}

func setupCheckoutRouter(productRepo *mockProductRepo, gateway *mockGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := services.NewCheckoutService(
		productRepo,
		&webhookOrderRepo{},
		&mockPaymentRepo{},
		gateway,
		services.NewShippingCalculator(300),
		zap.NewNop(),
	)
	c := controllers.NewCheckoutController(svc, "http://localhost:8080", zap.NewNop())
	r.POST("/checkout", c.Checkout)
	return r
}

func TestCheckout_Success(t *testing.T) {
	p := models.Product{ID: uuid.New(), Name: "Protein Powder", Price: 100, InStock: true, StockQuantity: 10, Published: true}
	r := setupCheckoutRouter(&mockProductRepo{products: []models.Product{p}}, &mockGateway{billCode: "bill-xyz"})

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": p.ID.String(), "quantity": 2},
		},
		"shipping": map[string]interface{}{
			"full_name": "Aisyah Rahman",
			"email":     "aisyah@example.com",
			"phone":     "0123456789",
			"address":   "12 Jalan Ampang",
			"city":      "Shah Alam",
			"postcode":  "40000",
		},
	}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "https://gateway.test/bill-xyz", resp["payment_url"])
	assert.NotEmpty(t, resp["order_id"])
}

func TestCheckout_InvalidBody(t *testing.T) {
	r := setupCheckoutRouter(&mockProductRepo{}, &mockGateway{})

	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	p := models.Product{ID: uuid.New(), Name: "Protein Powder", Price: 100, InStock: true, StockQuantity: 1, Published: true}
	r := setupCheckoutRouter(&mockProductRepo{products: []models.Product{p}}, &mockGateway{})

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": p.ID.String(), "quantity": 5},
		},
		"shipping": map[string]interface{}{
			"full_name": "Aisyah Rahman",
			"email":     "aisyah@example.com",
			"phone":     "0123456789",
			"address":   "12 Jalan Ampang",
			"city":      "Shah Alam",
			"postcode":  "40000",
		},
	}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Contains(t, resp["error"], "Protein Powder")
}
