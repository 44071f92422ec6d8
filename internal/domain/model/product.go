package model

// Product is the stock record of a catalog product.
type Product struct {
	ID    int64
	Name  string
	Stock int
}

// StockChange reports a single stock decrement.
type StockChange struct {
	Product  Product
	OldStock int
}

// ThresholdKind classifies stock level crossings.
type ThresholdKind string

const (
	ThresholdLow ThresholdKind = "low"
	ThresholdOut ThresholdKind = "out"
)

// LowStockLevel is the stock level at or below which a product counts as running low.
const LowStockLevel = 3

// ThresholdEvent is produced when a decrement crosses a stock threshold.
type ThresholdEvent struct {
	Kind    ThresholdKind
	Product Product
}
