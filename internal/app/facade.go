package app

import (
	"context"

	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade exposes use cases to the HTTP layer.
type StorefrontFacade struct {
	sessions *usecase.SessionUseCase
	checkout *usecase.CheckoutUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	health   HealthChecker
}

func NewStorefrontFacade(
	sessions *usecase.SessionUseCase,
	checkout *usecase.CheckoutUseCase,
	orders *usecase.OrderUseCase,
	payments *usecase.PaymentUseCase,
	health HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{sessions: sessions, checkout: checkout, orders: orders, payments: payments, health: health}
}

func (f *StorefrontFacade) OpenSession(ctx context.Context, userID int64, apiKey string) (string, error) {
	return f.sessions.Open(ctx, userID, apiKey)
}

func (f *StorefrontFacade) ParseToken(token string) (int64, error) {
	return f.sessions.ParseToken(token)
}

func (f *StorefrontFacade) Checkout(ctx context.Context, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error) {
	return f.checkout.Checkout(ctx, req)
}

func (f *StorefrontFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StorefrontFacade) PaymentsEnabled() bool {
	return f.payments.Enabled()
}

func (f *StorefrontFacade) ConfirmPayment(ctx context.Context, pendingID int64, paymentID string) (usecase.FinalizeResult, error) {
	return f.payments.Confirm(ctx, pendingID, paymentID)
}

func (f *StorefrontFacade) Healthy(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
