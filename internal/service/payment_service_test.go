package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
)

func TestCreatePaymentOrder(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()

	order, err := f.payments.CreateOrder(ctx, &models.CreatePaymentOrderRequest{Amount: 1499.5})
	require.NoError(t, err)
	assert.Equal(t, int64(149950), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.True(t, strings.HasPrefix(order.Receipt, "rcpt_"))
	assert.NotContains(t, order.Receipt, "-")
	assert.Equal(t, f.gateway.KeyID(), order.KeyID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GatewayCalls.WithLabelValues("create_order", "ok")))
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()

	order, err := f.payments.CreateOrder(ctx, &models.CreatePaymentOrderRequest{Amount: 100})
	require.NoError(t, err)
	payID, sig, err := f.gateway.Pay(order.ID, "alice@example.com")
	require.NoError(t, err)

	got, err := f.payments.Verify(ctx, &models.VerifyPaymentRequest{
		RazorpayOrderID:   order.ID,
		RazorpayPaymentID: payID,
		RazorpaySignature: sig,
		Email:             "alice@example.com",
		Name:              "Alice",
		Amount:            100,
	})
	require.NoError(t, err)
	assert.Equal(t, payID, got)

	assert.Eventually(t, func() bool { return len(f.mail.Messages()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, f.mail.Messages()[0].HTML, payID)

	_, err = f.payments.Verify(ctx, &models.VerifyPaymentRequest{
		RazorpayOrderID:   order.ID,
		RazorpayPaymentID: payID,
		RazorpaySignature: strings.Repeat("0", len(sig)),
	})
	assert.ErrorIs(t, err, ErrPaymentVerification)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentVerifications.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentVerifications.WithLabelValues("invalid")))
}

func TestRefundMarksOrders(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	p := f.product(t, "P1", 1000, "9")

	gwOrder, err := f.payments.CreateOrder(ctx, &models.CreatePaymentOrderRequest{Amount: 2000})
	require.NoError(t, err)
	payID, _, err := f.gateway.Pay(gwOrder.ID, "alice@example.com")
	require.NoError(t, err)

	req := orderRequest(alice.ID.Hex(), p, models.PaymentMethodRazorpay)
	req.PaymentID = payID
	req.PaymentStatus = models.PaymentStatusCompleted
	order, err := f.orders.Create(ctx, req)
	require.NoError(t, err)

	res, err := f.payments.Refund(ctx, &models.RefundRequest{PaymentID: payID, Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), res.Refund.Amount)
	assert.Equal(t, int64(0), res.OrdersUpdated)

	res, err = f.payments.Refund(ctx, &models.RefundRequest{PaymentID: payID})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), res.Refund.Amount)
	assert.Equal(t, int64(1), res.OrdersUpdated)

	stored, err := f.orders.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, stored.PaymentStatus)

	fetched, err := f.payments.FetchPayment(ctx, payID)
	require.NoError(t, err)
	assert.Equal(t, fetched.Amount, fetched.Refunded)

	_, err = f.payments.FetchPayment(ctx, "pay_unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.payments.Refund(ctx, &models.RefundRequest{PaymentID: payID, Amount: 1})
	assert.ErrorIs(t, err, ErrGateway)
}
