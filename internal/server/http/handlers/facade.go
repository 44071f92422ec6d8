package handlers

import (
	"context"

	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/usecase"
)

// SessionFacade describes frontend authentication required by handlers.
type SessionFacade interface {
	OpenSession(ctx context.Context, userID int64, apiKey string) (string, error)
	ParseToken(token string) (int64, error)
}

// CheckoutFacade encapsulates checkout and order history.
type CheckoutFacade interface {
	Checkout(ctx context.Context, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
}

// PaymentFacade handles gateway notifications.
type PaymentFacade interface {
	PaymentsEnabled() bool
	ConfirmPayment(ctx context.Context, pendingID int64, paymentID string) (usecase.FinalizeResult, error)
}

// HealthFacade reports readiness of the backing store.
type HealthFacade interface {
	Healthy(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	SessionFacade
	CheckoutFacade
	PaymentFacade
	HealthFacade
}
