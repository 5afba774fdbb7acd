package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-backend/internal/models"
)

func TestCartTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []models.CartItem
		want  float64
	}{
		{"empty", nil, 0},
		{"single line", []models.CartItem{{Price: 1000, Quantity: 3}}, 3000},
		{"float drift", []models.CartItem{{Price: 0.1, Quantity: 1}, {Price: 0.2, Quantity: 1}}, 0.3},
		{"mixed", []models.CartItem{{Price: 19.99, Quantity: 2}, {Price: 5.01, Quantity: 1}}, 44.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CartTotal(tt.items))
		})
	}
}

func TestRulesQuote(t *testing.T) {
	items := []models.OrderItem{{Price: 400, Quantity: 2}, {Price: 100, Quantity: 1}}

	rules := Rules{ShippingFee: 50, FreeShippingAbove: 1000, TaxRate: 0.18}
	q := rules.Quote(items)
	assert.Equal(t, 900.0, q.Subtotal)
	assert.Equal(t, 50.0, q.Shipping)
	assert.Equal(t, 162.0, q.Tax)
	assert.Equal(t, 1112.0, q.Total)
	assert.True(t, q.Matches(900, 50, 162, 1112))
	assert.False(t, q.Matches(900, 50, 162, 1000))

	free := Rules{ShippingFee: 50, FreeShippingAbove: 900}.Quote(items)
	assert.Equal(t, 0.0, free.Shipping)
	assert.Equal(t, 900.0, free.Total)

	assert.Equal(t, Quote{}, rules.Quote(nil))
}

func TestConsistent(t *testing.T) {
	assert.True(t, Consistent(100, 10, 18, 128))
	assert.True(t, Consistent(0.1, 0.2, 0, 0.3))
	assert.False(t, Consistent(100, 10, 18, 127.99))
}

func TestSubunits(t *testing.T) {
	assert.Equal(t, int64(100000), ToSubunits(1000))
	assert.Equal(t, int64(1999), ToSubunits(19.99))
	assert.Equal(t, int64(1), ToSubunits(0.005))
	assert.Equal(t, 19.99, FromSubunits(1999))
}
