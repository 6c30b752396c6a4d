package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/models"
	"github.com/amirfaris/storefront-backend/repository"
)

// CheckoutRequest is the client-submitted cart plus shipping details. The
// only client-controlled inputs that reach pricing are product id and
// quantity; prices always come from the product rows.
type CheckoutRequest struct {
	Items    []CheckoutItem `json:"items" binding:"required"`
	Shipping ShippingInfo   `json:"shipping" binding:"required"`
}

type CheckoutItem struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
}

type ShippingInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
}

// CheckoutResponse is returned to the client on a successful checkout.
type CheckoutResponse struct {
	PaymentURL string `json:"payment_url"`
	OrderID    string `json:"order_id"`
}

// CheckoutService validates a cart into a pending order and initiates the
// gateway payment for it.
type CheckoutService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	gateway     PaymentGateway
	shipping    *ShippingCalculator
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	gateway PaymentGateway,
	shipping *ShippingCalculator,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		shipping:    shipping,
		logger:      logger,
	}
}

// Checkout builds and persists a pending order, then creates the gateway
// bill and payment row. A gateway failure leaves the pending order in place
// so the client can retry.
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest, userID *uuid.UUID, returnURL, callbackURL string) (*CheckoutResponse, *ServiceError) {
	order, svcErr := s.CreateOrder(ctx, req, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	billCode, err := s.gateway.CreateBill(ctx, &CreateBillRequest{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		PayorName:   order.ShippingName,
		PayorEmail:  order.ShippingEmail,
		PayorPhone:  order.ShippingPhone,
		ReturnURL:   returnURL,
		CallbackURL: callbackURL,
	})
	if err != nil {
		s.logger.Error("Payment initiation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 502, Message: "Failed to initiate payment, please try again"}
	}

	payment := &models.OrderPayment{
		OrderID:    order.ID,
		GatewayRef: billCode,
		Amount:     order.Total,
		Status:     models.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to persist payment record",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to save payment record"}
	}

	return &CheckoutResponse{
		PaymentURL: s.gateway.PaymentURL(billCode),
		OrderID:    order.ID.String(),
	}, nil
}

// CreateOrder validates the cart against canonical product data and persists
// the priced pending order with its item snapshots. Stock is checked but not
// decremented; decrement happens once payment is confirmed.
func (s *CheckoutService) CreateOrder(ctx context.Context, req *CheckoutRequest, userID *uuid.UUID) (*models.Order, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Cart is empty"}
	}
	if req.Shipping.FullName == "" || req.Shipping.Address == "" || req.Shipping.City == "" || req.Shipping.Postcode == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "Shipping address is incomplete"}
	}

	// Aggregate quantities per product before validation so the same product
	// split across multiple cart lines cannot evade a single stock check.
	quantities := make(map[uuid.UUID]int, len(req.Items))
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &ServiceError{StatusCode: 400, Message: "Item quantity must be a positive number"}
		}
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: "Invalid product id: " + item.ProductID}
		}
		if _, seen := quantities[id]; !seen {
			ids = append(ids, id)
		}
		quantities[id] += item.Quantity
	}

	products, err := s.productRepo.FindPublishedByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to fetch products for checkout", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to validate cart"}
	}
	if len(products) != len(ids) {
		return nil, &ServiceError{StatusCode: 404, Message: "One or more products are unavailable"}
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(products))
	for i := range products {
		p := products[i]
		qty := quantities[p.ID]
		if !p.InStock || p.StockQuantity < qty {
			return nil, &ServiceError{
				StatusCode: 400,
				Message:    fmt.Sprintf("Insufficient stock for %s: only %d available", p.Name, p.StockQuantity),
			}
		}

		lineTotal := p.Price * float64(qty)
		subtotal += lineTotal
		productID := p.ID
		items = append(items, models.OrderItem{
			ProductID:   &productID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    qty,
			LineTotal:   lineTotal,
		})
	}

	shippingCost := s.shipping.Cost(req.Shipping.Postcode, subtotal)

	order := &models.Order{
		OrderNumber:      generateOrderNumber(),
		UserID:           userID,
		ShippingName:     req.Shipping.FullName,
		ShippingEmail:    req.Shipping.Email,
		ShippingPhone:    sanitizePhone(req.Shipping.Phone),
		ShippingAddress:  req.Shipping.Address,
		ShippingCity:     req.Shipping.City,
		ShippingPostcode: req.Shipping.Postcode,
		Subtotal:         subtotal,
		ShippingCost:     shippingCost,
		Total:            subtotal + shippingCost,
		Status:           models.OrderStatusPending,
		OrderItems:       items,
	}
	if userID == nil {
		order.GuestName = req.Shipping.FullName
		order.GuestEmail = req.Shipping.Email
		order.GuestPhone = order.ShippingPhone
	}

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		s.logger.Error("Failed to persist order", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create order"}
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

// sanitizePhone strips everything but digits so stored phone numbers have a
// consistent format for downstream lookups.
func sanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// generateOrderNumber produces a human-facing order number independent of
// the internal order id.
func generateOrderNumber() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// rand.Read failing is effectively impossible; fall back to a
		// timestamp-only suffix.
		return fmt.Sprintf("ORD-%s-%d", time.Now().UTC().Format("20060102"), time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix)))
}
