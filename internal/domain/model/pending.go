package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutType tells whether checkout was started for a single product or the whole cart.
type CheckoutType string

const (
	CheckoutSingle CheckoutType = "single"
	CheckoutCart   CheckoutType = "cart"
)

// PendingOrder is a checkout awaiting payment confirmation.
type PendingOrder struct {
	ID        int64
	Number    int64
	UserID    int64
	Items     []LineItem
	Address   string
	Delivery  *string
	Type      CheckoutType
	CreatedAt time.Time
	PaymentID *string
	Customer  Customer
}

// Total returns amount to be charged for the pending order.
func (p PendingOrder) Total() decimal.Decimal {
	return Total(p.Items)
}

// HasPayment reports whether a gateway payment was already attached.
func (p PendingOrder) HasPayment() bool {
	return p.PaymentID != nil && *p.PaymentID != ""
}

// PendingDraft carries checkout input before identifiers are assigned.
type PendingDraft struct {
	UserID   int64
	Items    []LineItem
	Address  string
	Delivery *string
	Type     CheckoutType
	Customer Customer
}
