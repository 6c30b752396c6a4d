package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrPaymentInitiation is returned when the gateway does not return a usable
// bill code. The order is left pending so the client can retry checkout.
var ErrPaymentInitiation = errors.New("payment gateway did not return a bill code")

// BillPaymentStatusSuccess is the gateway's per-transaction status value for
// a settled payment.
const BillPaymentStatusSuccess = "1"

// PaymentGateway is the outbound interface to the hosted-payment-page
// provider. It is implemented by GatewayClient and mocked in tests.
type PaymentGateway interface {
	CreateBill(ctx context.Context, req *CreateBillRequest) (string, error)
	PaymentURL(billCode string) string
	GetBillTransactions(ctx context.Context, billCode string) ([]BillTransaction, error)
}

// CreateBillRequest carries everything the gateway needs to host a payment
// page for one order.
type CreateBillRequest struct {
	OrderID     string
	OrderNumber string
	Amount      float64 // major units; converted to cents on the wire
	PayorName   string
	PayorEmail  string
	PayorPhone  string
	ReturnURL   string
	CallbackURL string
}

// BillTransaction is one transaction record from the gateway's verification
// endpoint.
type BillTransaction struct {
	BillPaymentStatus    string `json:"billpaymentStatus"`
	BillPaymentAmount    string `json:"billpaymentAmount"`
	BillPaymentInvoiceNo string `json:"billpaymentInvoiceNo"`
}

// GatewayClient talks to the payment gateway's HTTP API with form-encoded
// requests and a bounded timeout.
type GatewayClient struct {
	baseURL      string
	secretKey    string
	categoryCode string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewGatewayClient creates a GatewayClient.
func NewGatewayClient(baseURL, secretKey, categoryCode string, logger *zap.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		secretKey:    secretKey,
		categoryCode: categoryCode,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

// CreateBill registers a bill with the gateway and returns its bill code.
// Any response shape without a bill code maps to ErrPaymentInitiation.
func (g *GatewayClient) CreateBill(ctx context.Context, req *CreateBillRequest) (string, error) {
	form := url.Values{}
	form.Set("userSecretKey", g.secretKey)
	form.Set("categoryCode", g.categoryCode)
	form.Set("billName", "Order "+req.OrderNumber)
	form.Set("billDescription", "Payment for order "+req.OrderNumber)
	form.Set("billPriceSetting", "1")
	form.Set("billPayorInfo", "1")
	form.Set("billAmount", fmt.Sprintf("%d", int(math.Round(req.Amount*100))))
	form.Set("billReturnUrl", req.ReturnURL)
	form.Set("billCallbackUrl", req.CallbackURL)
	form.Set("billExternalReferenceNo", req.OrderID)
	form.Set("billTo", req.PayorName)
	form.Set("billEmail", req.PayorEmail)
	form.Set("billPhone", req.PayorPhone)

	body, err := g.postForm(ctx, g.baseURL+"/index.php/api/createBill", form)
	if err != nil {
		return "", err
	}

	var results []struct {
		BillCode string `json:"BillCode"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		g.logger.Warn("Gateway returned non-JSON-array bill response",
			zap.ByteString("body", body),
		)
		return "", ErrPaymentInitiation
	}
	if len(results) == 0 || results[0].BillCode == "" {
		g.logger.Warn("Gateway bill response missing bill code",
			zap.ByteString("body", body),
		)
		return "", ErrPaymentInitiation
	}

	return results[0].BillCode, nil
}

// PaymentURL returns the hosted payment page URL for a bill code.
func (g *GatewayClient) PaymentURL(billCode string) string {
	return g.baseURL + "/" + billCode
}

// GetBillTransactions re-verifies a bill server-to-server and returns its
// transaction records.
func (g *GatewayClient) GetBillTransactions(ctx context.Context, billCode string) ([]BillTransaction, error) {
	form := url.Values{}
	form.Set("billCode", billCode)

	body, err := g.postForm(ctx, g.baseURL+"/index.php/api/getBillTransactions", form)
	if err != nil {
		return nil, err
	}

	var transactions []BillTransaction
	if err := json.Unmarshal(body, &transactions); err != nil {
		return nil, fmt.Errorf("unexpected gateway transactions response: %w", err)
	}
	return transactions, nil
}

func (g *GatewayClient) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("Gateway returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.String("endpoint", endpoint),
		)
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return body, nil
}
