// Package pricing holds the money arithmetic shared by the repositories and
// services. Everything here is pure: no database access, no clocks.
package pricing

import (
	"github.com/shopspring/decimal"

	"go-pos-inventory/internal/model"
)

// MoneyPlaces is the scale of every persisted money column.
const MoneyPlaces = 2

// SecondaryPrice derives the USD price of a BOB amount from the latest rate.
// It returns nil when no rate has been recorded yet. Division rounds half-up
// to two places so repeated recalculation never drifts.
func SecondaryPrice(price decimal.Decimal, latest *model.ExchangeRate) *decimal.Decimal {
	if latest == nil || !latest.Rate.IsPositive() {
		return nil
	}
	usd := price.DivRound(latest.Rate, MoneyPlaces)
	return &usd
}

// Reprice re-expresses a USD price in BOB at a new rate.
func Reprice(secondary decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return secondary.Mul(rate).Round(MoneyPlaces)
}

// LineTotal is quantity × unit price at money scale.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(MoneyPlaces)
}

// ApplySecondaryPrice refreshes the derived USD price of p in place.
func ApplySecondaryPrice(p *model.Product, latest *model.ExchangeRate) {
	p.PriceSecondary = SecondaryPrice(p.Price, latest)
}

// ApplyLineTotal brings the unit price to money scale and refreshes the
// derived total of a sale line in place, so the stored line always equals
// quantity × stored unit price.
func ApplyLineTotal(item *model.SaleItem) {
	item.UnitPrice = item.UnitPrice.Round(MoneyPlaces)
	item.LineTotal = LineTotal(item.Quantity, item.UnitPrice)
}
