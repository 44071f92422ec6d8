package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/domain/repository"
	"github.com/polkiloo/storebot/internal/metrics"
)

// Trigger names the mechanism that observed a payment resolution.
type Trigger string

const (
	TriggerWebhook Trigger = "webhook"
	TriggerPoller  Trigger = "poller"
	TriggerSweeper Trigger = "sweeper"
)

// Outcome is the result kind of a finalization attempt.
type Outcome string

const (
	OutcomeFinalized        Outcome = "finalized"
	OutcomeAlreadyFinalized Outcome = "already_finalized"
	OutcomeNotFound         Outcome = "not_found"
	// OutcomeUnmatched means a pushed payment named no known pending order.
	OutcomeUnmatched        Outcome = "unmatched"
)

// Resolution reports that the payment of a pending order may have succeeded.
type Resolution struct {
	PendingID int64
	Trigger   Trigger
}

// FinalizeResult describes what a finalization attempt did.
type FinalizeResult struct {
	Outcome Outcome
	Order   *model.Order
	Events  []model.ThresholdEvent
}

// FinalizeUseCase turns paid pending orders into confirmed orders exactly once per payment.
type FinalizeUseCase struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	inventory *InventoryUseCase
	notifier  *NotificationDispatcher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewFinalizeUseCase constructs FinalizeUseCase.
func NewFinalizeUseCase(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	inventory *InventoryUseCase,
	notifier *NotificationDispatcher,
	mt *metrics.Metrics,
	logger *slog.Logger,
) *FinalizeUseCase {
	return &FinalizeUseCase{
		orders:    orders,
		carts:     carts,
		inventory: inventory,
		notifier:  notifier,
		metrics:   mt,
		logger:    logger,
		now:       time.Now,
	}
}

// Finalize confirms the pending order named by r. The order row is created and
// the pending row removed in one store operation; later calls for the same
// payment observe AlreadyFinalized or NotFound. Stock, cart and notification
// steps run only for the call that created the order and never fail it.
// An error is returned only when the store operation itself failed.
func (u *FinalizeUseCase) Finalize(ctx context.Context, r Resolution) (FinalizeResult, error) {
	logger := u.logger.With(slog.Int64("pending_id", r.PendingID), slog.String("trigger", string(r.Trigger)))

	order, created, err := u.orders.CreateFromPending(ctx, r.PendingID, u.now())
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.metrics.FinalizeOutcome(string(r.Trigger), string(OutcomeNotFound))
			logger.Debug("pending order already consumed")
			return FinalizeResult{Outcome: OutcomeNotFound}, nil
		}
		u.metrics.FinalizeOutcome(string(r.Trigger), "error")
		logger.Error("finalize failed", slog.Any("error", err))
		return FinalizeResult{}, fmt.Errorf("finalize pending order %d: %w", r.PendingID, err)
	}

	logger = logger.With(slog.String("payment_id", order.PaymentID), slog.Int64("number", order.Number))

	// Side effects must survive cancellation of the triggering request.
	ctx = context.WithoutCancel(ctx)

	if !created {
		u.metrics.FinalizeOutcome(string(r.Trigger), string(OutcomeAlreadyFinalized))
		logger.Info("payment already finalized", slog.String("outcome", string(OutcomeAlreadyFinalized)))
		u.notifier.SendUser(ctx, order.UserID, orderAlreadyConfirmedText(*order))
		return FinalizeResult{Outcome: OutcomeAlreadyFinalized, Order: order}, nil
	}

	u.metrics.FinalizeOutcome(string(r.Trigger), string(OutcomeFinalized))
	logger.Info("order finalized", slog.String("outcome", string(OutcomeFinalized)), slog.String("total", order.Total.StringFixed(2)))

	events, err := u.inventory.Decrement(ctx, order.Items)
	if err != nil {
		logger.Warn("stock update incomplete", slog.Any("error", err))
	}

	if order.Type == model.CheckoutCart {
		if err := u.carts.Clear(ctx, order.UserID); err != nil {
			logger.Warn("cart clear failed", slog.Any("error", err))
		}
	}

	u.notifier.SendUser(ctx, order.UserID, orderConfirmedText(*order))
	u.notifier.SendAdmins(ctx, adminNewOrderText(*order))
	for _, ev := range events {
		u.notifier.SendAdmins(ctx, thresholdText(ev))
	}

	return FinalizeResult{Outcome: OutcomeFinalized, Order: order, Events: events}, nil
}
