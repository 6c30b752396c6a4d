package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amirfaris/storefront-backend/models"
	"github.com/amirfaris/storefront-backend/repository"
)

// allowedStatusTransitions are the statuses the fulfillment API may set.
// Payment-side transitions (paid, failed) belong to the webhook reconciler.
var allowedFulfillmentStatuses = map[string]bool{
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
}

// UpdateOrderStatusRequest is the admin status patch. Only the fields below
// are ever applied; anything else a client submits is ignored.
type UpdateOrderStatusRequest struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Courier        string `json:"courier,omitempty"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderService is the admin-facing fulfillment API: browsing orders and
// moving them through post-payment statuses.
type OrderService struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repository.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{orderRepo: orderRepo, logger: logger}
}

// ListOrders retrieves paginated orders with an optional status filter.
func (s *OrderService) ListOrders(ctx context.Context, status string, page, limit int) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindAll(ctx, status, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// GetOrder retrieves one order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}
	return order, nil
}

// UpdateOrderStatus patches an order's fulfillment status from an explicit
// allow-list of fields, stamping shipped_at/delivered_at automatically.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusRequest) (*models.Order, *ServiceError) {
	if req.OrderID == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "order_id is required"}
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid order_id"}
	}
	if req.Status == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "status is required"}
	}
	if !allowedFulfillmentStatuses[req.Status] {
		return nil, &ServiceError{StatusCode: 400, Message: "Unsupported status: " + req.Status}
	}

	updates := map[string]interface{}{
		"status": req.Status,
	}
	if req.TrackingNumber != "" {
		updates["tracking_number"] = req.TrackingNumber
	}
	if req.Courier != "" {
		updates["courier"] = req.Courier
	}

	now := time.Now()
	switch req.Status {
	case models.OrderStatusShipped:
		updates["shipped_at"] = &now
	case models.OrderStatusDelivered:
		updates["delivered_at"] = &now
	}

	order, err := s.orderRepo.UpdateFields(ctx, orderID, updates)
	if err != nil {
		s.logger.Error("Failed to update order status",
			zap.String("order_id", req.OrderID),
			zap.String("status", req.Status),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update order"}
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", req.OrderID),
		zap.String("status", req.Status),
	)
	return order, nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
