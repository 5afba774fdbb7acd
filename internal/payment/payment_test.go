package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reference(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignerMatchesReference(t *testing.T) {
	s := NewSigner("test_secret")
	sig := s.Sign("order_123", "pay_456")
	assert.Equal(t, reference("test_secret", "order_123", "pay_456"), sig)
	assert.True(t, s.Verify("order_123", "pay_456", sig))
}

func mutate(s string, i int) string {
	b := []byte(s)
	if b[i] == 'a' {
		b[i] = 'b'
	} else {
		b[i] = 'a'
	}
	return string(b)
}

func TestSignerRejectsAnySingleCharMutation(t *testing.T) {
	s := NewSigner("test_secret")
	orderID, paymentID := "order_ABC123", "pay_XYZ789"
	sig := s.Sign(orderID, paymentID)

	for i := range orderID {
		assert.False(t, s.Verify(mutate(orderID, i), paymentID, sig), "order id mutated at %d", i)
	}
	for i := range paymentID {
		assert.False(t, s.Verify(orderID, mutate(paymentID, i), sig), "payment id mutated at %d", i)
	}
	for i := range sig {
		assert.False(t, s.Verify(orderID, paymentID, mutate(sig, i)), "signature mutated at %d", i)
	}
	assert.False(t, s.Verify(orderID, paymentID, ""))
	assert.False(t, NewSigner("other").Verify(orderID, paymentID, sig))
}

func TestDemoGatewayFlow(t *testing.T) {
	ctx := context.Background()
	signer := NewSigner("demo")
	g := NewDemoGateway(signer)

	o, err := g.CreateOrder(ctx, 150000, "INR", "rcpt_1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), o.Amount)

	payID, sig, err := g.Pay(o.ID, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, signer.Verify(o.ID, payID, sig))

	p, err := g.FetchPayment(ctx, payID)
	require.NoError(t, err)
	assert.True(t, p.Captured)
	assert.Equal(t, o.ID, p.OrderID)

	r, err := g.Refund(ctx, payID, 50000, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), r.Amount)

	r, err = g.Refund(ctx, payID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), r.Amount)

	_, err = g.Refund(ctx, payID, 1, nil)
	assert.ErrorIs(t, err, ErrGateway)

	_, err = g.FetchPayment(ctx, "pay_missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = g.CreateOrder(ctx, 0, "INR", "rcpt_2", nil)
	assert.ErrorIs(t, err, ErrGateway)
}

func TestNewRazorpayRequiresKeys(t *testing.T) {
	_, err := NewRazorpay("", "secret")
	assert.Error(t, err)

	g, err := NewRazorpay("rzp_test_key", "secret")
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_key", g.KeyID())
}

func TestNum(t *testing.T) {
	m := map[string]interface{}{"a": float64(1999), "b": 5, "c": "x"}
	assert.Equal(t, int64(1999), num(m, "a"))
	assert.Equal(t, int64(5), num(m, "b"))
	assert.Equal(t, int64(0), num(m, "c"))
	assert.Equal(t, int64(0), num(m, "missing"))
}
