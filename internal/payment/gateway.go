// Package payment talks to the payment gateway: order creation, payment
// lookup, refunds and checkout signature verification.
package payment

import (
	"context"
	"errors"
)

var (
	ErrGateway         = errors.New("payment gateway error")
	ErrPaymentNotFound = errors.New("payment not found")
)

// Order is a gateway-side order the checkout widget collects payment for.
// Amounts are in subunits (paise).
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Payment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Captured bool   `json:"captured"`
	Refunded int64  `json:"amount_refunded"`
}

type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	// Refund refunds amount subunits; 0 refunds whatever is left.
	Refund(ctx context.Context, paymentID string, amount int64, notes map[string]string) (*Refund, error)
	KeyID() string
}
