package model

import "github.com/shopspring/decimal"

// LineItem is a single product position of a checkout.
type LineItem struct {
	ProductID int64
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal returns price multiplied by quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums subtotals of all items.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
