package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storebot/internal/domain/model"
)

// OrderRepository describes persistence operations with confirmed orders.
type OrderRepository interface {
	// CreateFromPending converts pending order into confirmed order in a single
	// atomic step keyed by payment identifier. The pending record is removed in
	// the same step. created is false when an order with the same payment id
	// already existed.
	CreateFromPending(ctx context.Context, pendingID int64, now time.Time) (order *model.Order, created bool, err error)
	GetByPaymentID(ctx context.Context, paymentID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
}
