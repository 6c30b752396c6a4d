package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amirfaris/storefront-backend/models"
	"github.com/amirfaris/storefront-backend/repository"
)

// CallbackStatusSuccess is the gateway's callback status value for a
// successful payment.
const CallbackStatusSuccess = "1"

// amountTolerance absorbs floating-point drift when comparing the
// gateway-reported paid amount against the expected order total.
const amountTolerance = 0.01

// WebhookCallback is the parsed form payload of the gateway's asynchronous
// payment notification.
type WebhookCallback struct {
	OrderRef      string `form:"order_id"`
	Status        string `form:"status"`
	BillCode      string `form:"billcode"`
	TransactionID string `form:"transaction_id"`
}

// EventPublisher publishes payment events after reconciliation. Publishing
// is best-effort; failures are logged, never surfaced to the gateway.
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event models.PaymentEvent) error
}

// StockCacheInvalidator drops cached product entries after a stock change.
type StockCacheInvalidator interface {
	InvalidateProduct(ctx context.Context, id uuid.UUID)
}

// WebhookService reconciles gateway callbacks into final order, payment and
// stock state exactly once. Callbacks may arrive multiple times or from an
// untrusted origin; the stored gateway reference and a server-to-server
// re-verification are the trust anchors.
type WebhookService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	gateway     PaymentGateway
	events      EventPublisher
	cache       StockCacheInvalidator
	logger      *zap.Logger
}

// NewWebhookService creates a new WebhookService. events and cache may be
// nil when the corresponding integration is not configured.
func NewWebhookService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	gateway PaymentGateway,
	events EventPublisher,
	cache StockCacheInvalidator,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		events:      events,
		cache:       cache,
		logger:      logger,
	}
}

// HandleCallback processes one gateway notification. A nil return means the
// callback was accepted (whether the order ended paid, failed, or was a
// duplicate delivery) and the gateway should receive a 2xx acknowledgment.
func (s *WebhookService) HandleCallback(ctx context.Context, cb *WebhookCallback) *ServiceError {
	if cb.OrderRef == "" || cb.Status == "" || cb.BillCode == "" {
		return &ServiceError{StatusCode: 400, Message: "Missing required callback fields"}
	}
	success := cb.Status == CallbackStatusSuccess
	if success && cb.TransactionID == "" {
		return &ServiceError{StatusCode: 400, Message: "Missing transaction id"}
	}

	orderID, err := uuid.Parse(cb.OrderRef)
	if err != nil {
		return &ServiceError{StatusCode: 400, Message: "Invalid order reference"}
	}

	payment, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to load payment record", zap.String("order_id", cb.OrderRef), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to process callback"}
	}

	// Ownership check: the callback must reference the bill code assigned at
	// order-creation time. Anything else is treated as forged.
	if payment.GatewayRef != cb.BillCode {
		s.logger.Warn("Callback bill code does not match payment record",
			zap.String("order_id", cb.OrderRef),
			zap.String("callback_billcode", cb.BillCode),
		)
		return &ServiceError{StatusCode: 403, Message: "Callback does not match payment record"}
	}

	rawPayload, _ := json.Marshal(cb)

	if !success {
		return s.reconcileFailed(ctx, orderID, payment, string(rawPayload))
	}
	return s.reconcilePaid(ctx, orderID, payment, cb.TransactionID, string(rawPayload))
}

func (s *WebhookService) reconcilePaid(ctx context.Context, orderID uuid.UUID, payment *models.OrderPayment, transactionID, rawPayload string) *ServiceError {
	// Never trust the callback alone: re-verify the bill server-to-server.
	transactions, err := s.gateway.GetBillTransactions(ctx, payment.GatewayRef)
	if err != nil {
		s.logger.Error("Gateway verification call failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return &ServiceError{StatusCode: 502, Message: "Failed to verify payment with gateway"}
	}

	var verified *BillTransaction
	for i := range transactions {
		if transactions[i].BillPaymentStatus == BillPaymentStatusSuccess {
			verified = &transactions[i]
			break
		}
	}
	if verified == nil {
		return &ServiceError{StatusCode: 403, Message: "Payment could not be verified"}
	}

	paidAmount, err := strconv.ParseFloat(verified.BillPaymentAmount, 64)
	if err != nil || math.Abs(paidAmount-payment.Amount) > amountTolerance {
		s.logger.Warn("Verified amount does not match expected total",
			zap.String("order_id", orderID.String()),
			zap.String("reported", verified.BillPaymentAmount),
			zap.Float64("expected", payment.Amount),
		)
		return &ServiceError{StatusCode: 403, Message: "Paid amount does not match order total"}
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to process callback"}
	}

	// Idempotency guard: a duplicate delivery for an already-paid order is
	// expected and harmless.
	if order.Status == models.OrderStatusPaid {
		s.logger.Info("Skipping duplicate payment callback",
			zap.String("order_id", orderID.String()),
		)
		return nil
	}

	if err := s.orderRepo.MarkPaid(ctx, order, transactionID, rawPayload); err != nil {
		if errors.Is(err, repository.ErrOrderFinalized) {
			// Lost the race against a concurrent delivery; nothing to redo.
			return nil
		}
		s.logger.Error("Failed to finalize paid order",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return &ServiceError{StatusCode: 500, Message: "Failed to process callback"}
	}

	s.logger.Info("Order paid",
		zap.String("order_id", orderID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("amount", payment.Amount),
	)

	if s.cache != nil {
		for _, item := range order.OrderItems {
			if item.ProductID != nil {
				s.cache.InvalidateProduct(ctx, *item.ProductID)
			}
		}
	}
	s.publishEvent(ctx, models.PaymentEvent{
		Type:        "payment_succeeded",
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      payment.Amount,
		GatewayRef:  payment.GatewayRef,
		Timestamp:   time.Now().UTC(),
	})
	return nil
}

func (s *WebhookService) reconcileFailed(ctx context.Context, orderID uuid.UUID, payment *models.OrderPayment, rawPayload string) *ServiceError {
	if err := s.orderRepo.MarkFailed(ctx, orderID, rawPayload); err != nil {
		if errors.Is(err, repository.ErrOrderFinalized) {
			return nil
		}
		s.logger.Error("Failed to record failed payment",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return &ServiceError{StatusCode: 500, Message: "Failed to process callback"}
	}

	s.logger.Info("Order payment failed", zap.String("order_id", orderID.String()))

	s.publishEvent(ctx, models.PaymentEvent{
		Type:       "payment_failed",
		OrderID:    orderID.String(),
		Amount:     payment.Amount,
		GatewayRef: payment.GatewayRef,
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

func (s *WebhookService) publishEvent(ctx context.Context, event models.PaymentEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPaymentEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish payment event",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
