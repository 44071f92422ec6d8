package repository

import (
	"context"

	"github.com/polkiloo/storebot/internal/domain/model"
)

// PendingRepository describes persistence operations with pending orders.
type PendingRepository interface {
	Create(ctx context.Context, draft model.PendingDraft) (*model.PendingOrder, error)
	Get(ctx context.Context, id int64) (*model.PendingOrder, error)
	// AttachPayment sets payment id only when none is attached yet.
	AttachPayment(ctx context.Context, id int64, paymentID string) error
	ListAwaitingPayment(ctx context.Context) ([]model.PendingOrder, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
