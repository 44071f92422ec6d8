package test

import (
	"context"
	"sync"

	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/usecase"
)

// ResolverStub mimics payment resolution for worker tests.
type ResolverStub struct {
	Disabled  bool
	ResolveFn func(context.Context, usecase.Check) (usecase.PaymentState, error)

	mu     sync.Mutex
	checks []usecase.Check
}

// Enabled reports configured gateway state.
func (s *ResolverStub) Enabled() bool { return !s.Disabled }

// Resolve records the check and delegates to ResolveFn, defaulting to pending.
func (s *ResolverStub) Resolve(ctx context.Context, c usecase.Check) (usecase.PaymentState, error) {
	s.mu.Lock()
	s.checks = append(s.checks, c)
	s.mu.Unlock()
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, c)
	}
	return usecase.PaymentStatePending, nil
}

// Checks returns recorded checks.
func (s *ResolverStub) Checks() []usecase.Check {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]usecase.Check(nil), s.checks...)
}

// CountFor returns number of checks recorded for pendingID.
func (s *ResolverStub) CountFor(pendingID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.checks {
		if c.PendingID == pendingID {
			n++
		}
	}
	return n
}

// PendingListerStub returns preconfigured awaiting payments.
type PendingListerStub struct {
	Orders []model.PendingOrder
	Err    error
}

// ListAwaitingPayment returns configured orders.
func (s PendingListerStub) ListAwaitingPayment(context.Context) ([]model.PendingOrder, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.PendingOrder(nil), s.Orders...), nil
}

// AwaitingPending builds a pending order carrying paymentID.
func AwaitingPending(id, userID int64, paymentID string) model.PendingOrder {
	return model.PendingOrder{ID: id, Number: 1000 + id, UserID: userID, PaymentID: &paymentID, Type: model.CheckoutSingle}
}
