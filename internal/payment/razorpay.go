package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

type razorpayGateway struct {
	client *razorpay.Client
	keyID  string
}

// NewRazorpay builds the gateway client once at start-up; handlers receive
// it through the services.
func NewRazorpay(keyID, keySecret string) (Gateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret are required")
	}
	return &razorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
	}, nil
}

func (g *razorpayGateway) KeyID() string {
	return g.keyID
}

// The SDK has no context support, so calls run in a goroutine and the caller
// stops waiting when ctx is done.
func call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := fn()
		done <- result{body, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrGateway, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, r.err)
		}
		return r.body, nil
	}
}

func toAnyMap(notes map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(notes))
	for k, v := range notes {
		out[k] = v
	}
	return out
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = toAnyMap(notes)
	}

	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.client.Order.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}
	return &Order{
		ID:       str(body, "id"),
		Amount:   num(body, "amount"),
		Currency: str(body, "currency"),
		Receipt:  str(body, "receipt"),
		Status:   str(body, "status"),
	}, nil
}

func (g *razorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.client.Payment.Fetch(paymentID, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	captured, _ := body["captured"].(bool)
	return &Payment{
		ID:       str(body, "id"),
		OrderID:  str(body, "order_id"),
		Amount:   num(body, "amount"),
		Currency: str(body, "currency"),
		Status:   str(body, "status"),
		Method:   str(body, "method"),
		Email:    str(body, "email"),
		Contact:  str(body, "contact"),
		Captured: captured,
		Refunded: num(body, "amount_refunded"),
	}, nil
}

func (g *razorpayGateway) Refund(ctx context.Context, paymentID string, amount int64, notes map[string]string) (*Refund, error) {
	if amount == 0 {
		p, err := g.FetchPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		amount = p.Amount - p.Refunded
	}

	data := map[string]interface{}{}
	if len(notes) > 0 {
		data["notes"] = toAnyMap(notes)
	}

	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.client.Payment.Refund(paymentID, int(amount), data, nil)
	})
	if err != nil {
		return nil, err
	}
	return &Refund{
		ID:        str(body, "id"),
		PaymentID: str(body, "payment_id"),
		Amount:    num(body, "amount"),
		Status:    str(body, "status"),
	}, nil
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// num reads a JSON number, which the SDK decodes as float64.
func num(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}
