package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/services"
)

func billRequest() *services.CreateBillRequest {
	return &services.CreateBillRequest{
		OrderID:     "9f1c7a40-0000-0000-0000-000000000001",
		OrderNumber: "ORD-20260830-A1B2",
		Amount:      208.00,
		PayorName:   "Aisyah Rahman",
		PayorEmail:  "aisyah@example.com",
		PayorPhone:  "60123456789",
		ReturnURL:   "https://shop.test/payment/return",
		CallbackURL: "https://shop.test/payment/webhook",
	}
}

func TestCreateBill_Success(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/index.php/api/createBill", r.URL.Path)
		_ = r.ParseForm()
		gotForm = map[string]string{
			"billAmount":              r.PostFormValue("billAmount"),
			"billExternalReferenceNo": r.PostFormValue("billExternalReferenceNo"),
			"billPriceSetting":        r.PostFormValue("billPriceSetting"),
			"billTo":                  r.PostFormValue("billTo"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"BillCode":"xk9w2p1q"}]`))
	}))
	defer server.Close()

	client := services.NewGatewayClient(server.URL, "secret", "cat01", zap.NewNop())

	billCode, err := client.CreateBill(context.Background(), billRequest())

	assert.NoError(t, err)
	assert.Equal(t, "xk9w2p1q", billCode)
	// Amount is sent in minor units.
	assert.Equal(t, "20800", gotForm["billAmount"])
	assert.Equal(t, "9f1c7a40-0000-0000-0000-000000000001", gotForm["billExternalReferenceNo"])
	assert.Equal(t, "1", gotForm["billPriceSetting"])
	assert.Equal(t, "Aisyah Rahman", gotForm["billTo"])
}

func TestCreateBill_ArrayWithoutCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"msg":"error"}]`))
	}))
	defer server.Close()

	client := services.NewGatewayClient(server.URL, "secret", "cat01", zap.NewNop())

	_, err := client.CreateBill(context.Background(), billRequest())

	assert.ErrorIs(t, err, services.ErrPaymentInitiation)
}

func TestCreateBill_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[KEY-DID-NOT-EXIST]`))
	}))
	defer server.Close()

	client := services.NewGatewayClient(server.URL, "secret", "cat01", zap.NewNop())

	_, err := client.CreateBill(context.Background(), billRequest())

	assert.ErrorIs(t, err, services.ErrPaymentInitiation)
}

func TestCreateBill_EmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := services.NewGatewayClient(server.URL, "secret", "cat01", zap.NewNop())

	_, err := client.CreateBill(context.Background(), billRequest())

	assert.ErrorIs(t, err, services.ErrPaymentInitiation)
}

func TestGetBillTransactions_ParsesRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/index.php/api/getBillTransactions", r.URL.Path)
		_ = r.ParseForm()
		assert.Equal(t, "xk9w2p1q", r.PostFormValue("billCode"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"billpaymentStatus":"1","billpaymentAmount":"208.00","billpaymentInvoiceNo":"TP0001"}]`))
	}))
	defer server.Close()

	client := services.NewGatewayClient(server.URL, "secret", "cat01", zap.NewNop())

	txs, err := client.GetBillTransactions(context.Background(), "xk9w2p1q")

	assert.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, services.BillPaymentStatusSuccess, txs[0].BillPaymentStatus)
	assert.Equal(t, "208.00", txs[0].BillPaymentAmount)
}

func TestGetBillTransactions_GatewayDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := services.NewGatewayClient(server.URL, "secret", "cat01", zap.NewNop())

	_, err := client.GetBillTransactions(context.Background(), "xk9w2p1q")

	assert.Error(t, err)
}

func TestPaymentURL(t *testing.T) {
	client := services.NewGatewayClient("https://gateway.test/", "secret", "cat01", zap.NewNop())
	assert.Equal(t, "https://gateway.test/xk9w2p1q", client.PaymentURL("xk9w2p1q"))
}
