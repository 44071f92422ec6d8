package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes processing lifecycle.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order describes a paid, confirmed order.
type Order struct {
	ID           int64
	Number       int64
	UserID       int64
	Items        []LineItem
	Total        decimal.Decimal
	Address      string
	Delivery     *string
	Status       OrderStatus
	TrackingLink *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PaymentID    string
	Type         CheckoutType
	Customer     Customer
}

// OrderFromPending builds the confirmed order for a paid pending order.
// Number, payment id and creation time are preserved.
func OrderFromPending(p PendingOrder, now time.Time) Order {
	var paymentID string
	if p.PaymentID != nil {
		paymentID = *p.PaymentID
	}
	items := make([]LineItem, len(p.Items))
	copy(items, p.Items)
	return Order{
		Number:    p.Number,
		UserID:    p.UserID,
		Items:     items,
		Total:     Total(items),
		Address:   p.Address,
		Delivery:  p.Delivery,
		Status:    OrderStatusNew,
		CreatedAt: p.CreatedAt,
		UpdatedAt: now,
		PaymentID: paymentID,
		Type:      p.Type,
		Customer:  p.Customer,
	}
}
