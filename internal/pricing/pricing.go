// Package pricing does the money arithmetic for carts, orders and the
// payment gateway on decimals so totals never pick up float drift.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront-backend/internal/models"
)

// SubunitsPerUnit is the gateway's minor-unit factor (paise per rupee).
const SubunitsPerUnit = 100

var hundred = decimal.NewFromInt(SubunitsPerUnit)

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func line(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// CartTotal sums price*quantity over the cart lines.
func CartTotal(items []models.CartItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(line(item.Price, item.Quantity))
	}
	return round(total)
}

// Subtotal sums price*quantity over the order lines.
func Subtotal(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(line(item.Price, item.Quantity))
	}
	return round(total)
}

// Rules decide shipping and tax for a subtotal.
type Rules struct {
	ShippingFee       float64
	FreeShippingAbove float64 // 0 disables free shipping
	TaxRate           float64 // fraction, 0.18 for 18%
}

type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Quote prices order lines the way the server would have.
func (r Rules) Quote(items []models.OrderItem) Quote {
	subtotal := decimal.NewFromFloat(Subtotal(items))

	shipping := decimal.NewFromFloat(r.ShippingFee)
	if r.FreeShippingAbove > 0 && subtotal.GreaterThanOrEqual(decimal.NewFromFloat(r.FreeShippingAbove)) {
		shipping = decimal.Zero
	}
	if len(items) == 0 {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(decimal.NewFromFloat(r.TaxRate)).Round(2)
	total := subtotal.Add(shipping).Add(tax)

	return Quote{
		Subtotal: round(subtotal),
		Shipping: round(shipping),
		Tax:      round(tax),
		Total:    round(total),
	}
}

// Matches reports whether the client supplied figures agree with q to the
// cent.
func (q Quote) Matches(subtotal, shipping, tax, total float64) bool {
	return equalCents(q.Subtotal, subtotal) &&
		equalCents(q.Shipping, shipping) &&
		equalCents(q.Tax, tax) &&
		equalCents(q.Total, total)
}

// Consistent reports whether total == subtotal+shipping+tax to the cent.
func Consistent(subtotal, shipping, tax, total float64) bool {
	sum := decimal.NewFromFloat(subtotal).
		Add(decimal.NewFromFloat(shipping)).
		Add(decimal.NewFromFloat(tax))
	return equalCents(round(sum), total)
}

func equalCents(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}

// ToSubunits converts a major-unit amount to the gateway's integer minor
// units, rounding half away from zero.
func ToSubunits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// FromSubunits converts gateway minor units back to major units.
func FromSubunits(subunits int64) float64 {
	return round(decimal.NewFromInt(subunits).Div(hundred))
}
