package invoice

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// Totals are the amounts derived from an invoice.
type Totals struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	// FinalTotal is Subtotal - TotalDiscount and is never clamped.
	FinalTotal decimal.Decimal
}

// ComputeTotals derives subtotal, discount sum and final total.
// Values are exact; round only when formatting.
func ComputeTotals(inv models.Invoice) Totals {
	subtotal := money.Sum(lo.Map(inv.Items, func(it models.LineItem, _ int) decimal.Decimal {
		return LineTotal(it)
	})...)
	discounts := money.Sum(lo.Map(inv.Discounts, func(d models.Discount, _ int) decimal.Decimal {
		return d.Amount
	})...)
	return Totals{
		Subtotal:      subtotal,
		TotalDiscount: discounts,
		FinalTotal:    subtotal.Sub(discounts),
	}
}

// LineTotal is the item's quantity times its unit price.
func LineTotal(item models.LineItem) decimal.Decimal {
	return money.LineTotal(item.Quantity, item.UnitPrice)
}
