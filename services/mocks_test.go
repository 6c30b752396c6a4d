package services_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirfaris/storefront-backend/models"
	"github.com/amirfaris/storefront-backend/services"
)

// ---- mock product repository ----

type mockProductRepo struct {
	products []models.Product
	err      error
}

func (m *mockProductRepo) FindPublished(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	return m.products, int64(len(m.products)), m.err
}

func (m *mockProductRepo) FindPublishedByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, m.err
}

func (m *mockProductRepo) FindPublishedByIDs(_ context.Context, _ []uuid.UUID) ([]models.Product, error) {
	return m.products, m.err
}

// ---- mock order repository ----

type mockOrderRepo struct {
	createErr    error
	createdOrder *models.Order

	findOrder *models.Order
	findErr   error

	listOrders []models.Order
	listTotal  int64
	listErr    error

	updatedFields map[string]interface{}
	updatedOrder  *models.Order
	updateErr     error

	markPaidCalled bool
	markPaidOrder  *models.Order
	markPaidTxnID  string
	markPaidErr    error

	markFailedCalled bool
	markFailedErr    error
}

func (m *mockOrderRepo) CreateWithItems(_ context.Context, order *models.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.createdOrder = order
	return nil
}

func (m *mockOrderRepo) FindByIDWithItems(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return m.findOrder, m.findErr
}

func (m *mockOrderRepo) FindAll(_ context.Context, _ string, _, _ int) ([]models.Order, int64, error) {
	return m.listOrders, m.listTotal, m.listErr
}

func (m *mockOrderRepo) UpdateFields(_ context.Context, _ uuid.UUID, updates map[string]interface{}) (*models.Order, error) {
	m.updatedFields = updates
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updatedOrder, nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, order *models.Order, transactionID, _ string) error {
	m.markPaidCalled = true
	m.markPaidOrder = order
	m.markPaidTxnID = transactionID
	return m.markPaidErr
}

func (m *mockOrderRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error {
	m.markFailedCalled = true
	return m.markFailedErr
}

// ---- mock payment repository ----

type mockPaymentRepo struct {
	createErr error
	created   *models.OrderPayment

	payment *models.OrderPayment
	findErr error
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *models.OrderPayment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = payment
	return nil
}

func (m *mockPaymentRepo) FindByOrderID(_ context.Context, _ uuid.UUID) (*models.OrderPayment, error) {
	return m.payment, m.findErr
}

// ---- mock payment gateway ----

type mockGateway struct {
	billCode      string
	createErr     error
	createBillReq *services.CreateBillRequest

	transactions []services.BillTransaction
	txErr        error
}

func (m *mockGateway) CreateBill(_ context.Context, req *services.CreateBillRequest) (string, error) {
	m.createBillReq = req
	return m.billCode, m.createErr
}

func (m *mockGateway) PaymentURL(billCode string) string {
	return "https://gateway.test/" + billCode
}

func (m *mockGateway) GetBillTransactions(_ context.Context, _ string) ([]services.BillTransaction, error) {
	return m.transactions, m.txErr
}

// ---- mock event publisher ----

type mockEventPublisher struct {
	events []models.PaymentEvent
	err    error
}

func (m *mockEventPublisher) PublishPaymentEvent(_ context.Context, event models.PaymentEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// ---- mock cache invalidator ----

type mockInvalidator struct {
	invalidated []uuid.UUID
}

func (m *mockInvalidator) InvalidateProduct(_ context.Context, id uuid.UUID) {
	m.invalidated = append(m.invalidated, id)
}
