package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutItem is one cart line of a checkout request.
type CheckoutItem struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"qty" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutCustomer is the contact snapshot sent by the frontend.
type CheckoutCustomer struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// CheckoutRequest describes a purchase.
type CheckoutRequest struct {
	Type     string           `json:"type"`
	Items    []CheckoutItem   `json:"items" binding:"required"`
	Address  string           `json:"address"`
	Delivery *string          `json:"delivery"`
	Customer CheckoutCustomer `json:"customer"`
}

// CheckoutResponse returns the pending order and where to pay for it.
type CheckoutResponse struct {
	PendingID  int64           `json:"pending_id"`
	Number     int64           `json:"number"`
	Total      decimal.Decimal `json:"total"`
	PaymentURL string          `json:"payment_url"`
}

// ErrorResponse carries a user-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OrderItem is one line of a confirmed order.
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// OrderResponse represents a confirmed order.
type OrderResponse struct {
	Number       int64           `json:"number"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Items        []OrderItem     `json:"items"`
	Address      string          `json:"address,omitempty"`
	Delivery     *string         `json:"delivery,omitempty"`
	TrackingLink *string         `json:"tracking_link,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
