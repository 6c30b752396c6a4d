package models

import "time"

// PaymentEvent is the message published to Kafka after a webhook callback
// has been reconciled. Publishing is best-effort and never blocks the
// webhook acknowledgment.
type PaymentEvent struct {
	Type        string    `json:"type"` // payment_succeeded | payment_failed
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Amount      float64   `json:"amount"`
	GatewayRef  string    `json:"gateway_ref"`
	Timestamp   time.Time `json:"timestamp"`
}
