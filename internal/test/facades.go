package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/usecase"
)

// CheckoutFacadeStub provides controllable behaviour for checkout and order endpoints.
type CheckoutFacadeStub struct {
	CheckoutFn func(context.Context, usecase.CheckoutRequest) (*usecase.CheckoutResult, error)
	OrdersFn   func(context.Context, int64) ([]model.Order, error)
}

// Checkout delegates to provided function or returns a default pending order.
func (s CheckoutFacadeStub) Checkout(ctx context.Context, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, req)
	}
	pending := model.PendingOrder{ID: 1, Number: 1001, UserID: req.UserID, Items: req.Items, Type: req.Type}
	return &usecase.CheckoutResult{Pending: pending, PaymentURL: "https://pay.example/confirm"}, nil
}

// Orders returns predefined orders for given user.
func (s CheckoutFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{
		ID:        1,
		Number:    1001,
		UserID:    userID,
		Total:     decimal.NewFromInt(100),
		Status:    model.OrderStatusNew,
		PaymentID: "pay-1",
		CreatedAt: time.Unix(0, 0).UTC(),
	}}, nil
}

// ConfirmCall stores arguments of ConfirmPayment invocations.
type ConfirmCall struct {
	PendingID int64
	PaymentID string
}

// PaymentFacadeStub records webhook confirmations.
type PaymentFacadeStub struct {
	Disabled  bool
	ConfirmFn func(context.Context, int64, string) (usecase.FinalizeResult, error)

	mu    sync.Mutex
	calls []ConfirmCall
}

// PaymentsEnabled reports configured gateway state.
func (s *PaymentFacadeStub) PaymentsEnabled() bool { return !s.Disabled }

// ConfirmPayment records the call and delegates to ConfirmFn.
func (s *PaymentFacadeStub) ConfirmPayment(ctx context.Context, pendingID int64, paymentID string) (usecase.FinalizeResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ConfirmCall{PendingID: pendingID, PaymentID: paymentID})
	s.mu.Unlock()
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, pendingID, paymentID)
	}
	return usecase.FinalizeResult{Outcome: usecase.OutcomeFinalized}, nil
}

// Calls returns recorded confirmations.
func (s *PaymentFacadeStub) Calls() []ConfirmCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ConfirmCall(nil), s.calls...)
}

// HealthFacadeStub returns a configured health error.
type HealthFacadeStub struct {
	Err error
}

// Healthy returns configured error.
func (s HealthFacadeStub) Healthy(context.Context) error { return s.Err }

// StorefrontFacadeStub aggregates facade dependencies for HTTP layer tests.
type StorefrontFacadeStub struct {
	SessionFacadeStub
	CheckoutFacadeStub
	*PaymentFacadeStub
	HealthFacadeStub
}

// NewStorefrontFacadeStub returns stub with default behaviour everywhere.
func NewStorefrontFacadeStub() StorefrontFacadeStub {
	return StorefrontFacadeStub{PaymentFacadeStub: &PaymentFacadeStub{}}
}
