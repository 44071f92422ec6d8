package worker

import (
	"context"
	"errors"
	"time"

	"github.com/polkiloo/storebot/internal/adapter/gateway"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/usecase"
)

// PaymentResolver exposes the payment checks required by the workers.
type PaymentResolver interface {
	Enabled() bool
	Resolve(ctx context.Context, c usecase.Check) (usecase.PaymentState, error)
}

// PendingLister lists pending orders that carry a payment id.
type PendingLister interface {
	ListAwaitingPayment(ctx context.Context) ([]model.PendingOrder, error)
}

// backoff returns how long to wait before the next status query.
func backoff(err error, interval time.Duration) time.Duration {
	var transient *gateway.TransientError
	if errors.As(err, &transient) && transient.RetryAfter > interval {
		return transient.RetryAfter
	}
	return interval
}
