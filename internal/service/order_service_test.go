package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
)

func orderRequest(userID string, p *models.Product, method string) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: p.ID, Name: p.Name, Image: "http://img/p.png", Price: p.Price, Size: "9", Quantity: 2},
		},
		ShippingAddress: models.ShippingAddress{
			FullName: "Alice",
			Email:    "alice@example.com",
			Phone:    "9999999999",
			Street:   "1 Main St",
			City:     "Pune",
			State:    "MH",
			ZipCode:  "411001",
			Country:  "India",
		},
		PaymentMethod: method,
		Subtotal:      2 * p.Price,
		Shipping:      0,
		Tax:           0,
		Total:         2 * p.Price,
	}
}

func TestCreateOrderPersistsPayloadAndClearsCart(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	p := f.product(t, "P1", 1000, "9")

	_, err := f.carts.Add(ctx, &models.AddToCartRequest{UserID: alice.ID.Hex(), ProductID: p.ID.Hex(), Size: "9", Quantity: 2})
	require.NoError(t, err)

	req := orderRequest(alice.ID.Hex(), p, models.PaymentMethodRazorpay)
	req.PaymentID = "pay_123"
	req.PaymentStatus = models.PaymentStatusCompleted
	// Deliberately not what the server would quote.
	req.Shipping = 7
	req.Total = 2007

	order, err := f.orders.Create(ctx, req)
	require.NoError(t, err)

	stored, err := f.orders.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, req.Items, stored.Items)
	assert.Equal(t, req.ShippingAddress, stored.ShippingAddress)
	assert.Equal(t, 2007.0, stored.Total)
	assert.Equal(t, 7.0, stored.Shipping)
	assert.Equal(t, "pay_123", stored.PaymentID)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrderTotalMismatches))

	cart, err := f.carts.Get(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalAmount)

	orders, err := f.orders.ListByUser(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCreateOrderEnforcedTotals(t *testing.T) {
	opts := defaultOrderOptions()
	opts.EnforceTotals = true
	f := newFixture(t, opts)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	p := f.product(t, "P1", 1000, "9")

	req := orderRequest(alice.ID.Hex(), p, models.PaymentMethodRazorpay)
	req.Total = 1

	_, err := f.orders.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = orderRequest(alice.ID.Hex(), p, models.PaymentMethodRazorpay)
	_, err = f.orders.Create(ctx, req)
	assert.NoError(t, err)
}

func TestCODOrderRequiresOTPAndSendsConfirmation(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	p := f.product(t, "P1", 1000, "9")

	req := orderRequest(alice.ID.Hex(), p, models.PaymentMethodCOD)
	_, err := f.orders.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	code, err := f.otps.Issue(ctx, models.OTPPurposeCheckout, "alice@example.com")
	require.NoError(t, err)
	req.OTP = code

	order, err := f.orders.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)

	assert.Eventually(t, func() bool {
		for _, m := range f.mail.Messages() {
			if len(m.To) == 1 && m.To[0] == "alice@example.com" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	// The code is spent.
	_, err = f.orders.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestCODOrderWithoutOTPWhenDisabled(t *testing.T) {
	opts := defaultOrderOptions()
	opts.RequireCODOTP = false
	f := newFixture(t, opts)
	alice := f.register(t, "alice@example.com")
	p := f.product(t, "P1", 1000, "9")

	_, err := f.orders.Create(context.Background(), orderRequest(alice.ID.Hex(), p, models.PaymentMethodCOD))
	assert.NoError(t, err)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	p := f.product(t, "P1", 1000, "9")

	_, err := f.orders.Create(ctx, orderRequest("64b000000000000000000000", p, models.PaymentMethodRazorpay))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.Create(ctx, orderRequest("bad", p, models.PaymentMethodRazorpay))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderStatusTransitions(t *testing.T) {
	f := newFixture(t, defaultOrderOptions())
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	p := f.product(t, "P1", 1000, "9")

	order, err := f.orders.Create(ctx, orderRequest(alice.ID.Hex(), p, models.PaymentMethodRazorpay))
	require.NoError(t, err)
	id := order.ID.Hex()

	_, err = f.orders.UpdateStatus(ctx, id, models.OrderStatusShipped)
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, id, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := f.orders.UpdateStatus(ctx, id, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	_, err = f.orders.UpdateStatus(ctx, id, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	all, err := f.orders.List(ctx, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
