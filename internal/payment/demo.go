package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DemoGateway stands in for the real gateway when no keys are configured.
// It keeps orders and payments in memory and signs payments with the same
// Signer the verification endpoint uses, so the whole checkout flow can be
// exercised offline.
type DemoGateway struct {
	signer *Signer

	mu       sync.Mutex
	orders   map[string]*Order
	payments map[string]*Payment
}

func NewDemoGateway(signer *Signer) *DemoGateway {
	return &DemoGateway{
		signer:   signer,
		orders:   make(map[string]*Order),
		payments: make(map[string]*Payment),
	}
}

func demoID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

func (g *DemoGateway) KeyID() string {
	return "rzp_test_demo"
}

func (g *DemoGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, _ map[string]string) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrGateway)
	}
	o := &Order{ID: demoID("order"), Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}

	g.mu.Lock()
	g.orders[o.ID] = o
	g.mu.Unlock()

	cp := *o
	return &cp, nil
}

// Pay simulates the customer completing checkout for orderID and returns
// the payment id and signature the checkout widget would hand back.
func (g *DemoGateway) Pay(orderID, email string) (paymentID, signature string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.orders[orderID]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown order %s", ErrGateway, orderID)
	}
	p := &Payment{
		ID:       demoID("pay"),
		OrderID:  o.ID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Status:   "captured",
		Method:   "card",
		Email:    email,
		Captured: true,
	}
	g.payments[p.ID] = p
	o.Status = "paid"
	return p.ID, g.signer.Sign(o.ID, p.ID), nil
}

func (g *DemoGateway) FetchPayment(_ context.Context, paymentID string) (*Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.payments[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (g *DemoGateway) Refund(_ context.Context, paymentID string, amount int64, _ map[string]string) (*Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.payments[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	left := p.Amount - p.Refunded
	if amount == 0 {
		amount = left
	}
	if amount <= 0 || amount > left {
		return nil, fmt.Errorf("%w: refund amount %d exceeds refundable %d", ErrGateway, amount, left)
	}
	p.Refunded += amount
	if p.Refunded == p.Amount {
		p.Status = "refunded"
	}
	return &Refund{ID: demoID("rfnd"), PaymentID: p.ID, Amount: amount, Status: "processed"}, nil
}
