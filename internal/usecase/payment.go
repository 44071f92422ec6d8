package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/polkiloo/storebot/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/domain/repository"
)

// PaymentState is what a single status check concluded.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateFinalized PaymentState = "finalized"
	PaymentStateFailed    PaymentState = "failed"
)

// Check identifies one payment to inspect.
type Check struct {
	PendingID int64
	UserID    int64
	PaymentID string
	Trigger   Trigger
}

// PaymentUseCase inspects gateway payments and routes terminal statuses.
type PaymentUseCase struct {
	gateway  gateway.Client
	pending  repository.PendingRepository
	orders   repository.OrderRepository
	finalize *FinalizeUseCase
	notifier *NotificationDispatcher
	logger   *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(
	gw gateway.Client,
	pending repository.PendingRepository,
	orders repository.OrderRepository,
	finalize *FinalizeUseCase,
	notifier *NotificationDispatcher,
	logger *slog.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{gateway: gw, pending: pending, orders: orders, finalize: finalize, notifier: notifier, logger: logger}
}

// Enabled reports whether payment statuses can be resolved at all.
func (u *PaymentUseCase) Enabled() bool {
	return u.gateway.Enabled()
}

// Resolve queries the gateway once. Succeeded payments are finalized;
// canceled or expired ones drop the pending order and notify the user.
// Any other status, or a gateway error, leaves the pending order untouched.
func (u *PaymentUseCase) Resolve(ctx context.Context, c Check) (PaymentState, error) {
	status, err := u.gateway.GetStatus(ctx, c.PaymentID)
	if err != nil {
		return PaymentStatePending, fmt.Errorf("payment status %s: %w", c.PaymentID, err)
	}

	switch {
	case status == model.PaymentStatusSucceeded:
		res, err := u.finalize.Finalize(ctx, Resolution{PendingID: c.PendingID, Trigger: c.Trigger})
		if err != nil {
			return PaymentStatePending, err
		}
		if res.Outcome == OutcomeNotFound && c.Trigger == TriggerPoller {
			u.acknowledge(ctx, c)
		}
		return PaymentStateFinalized, nil
	case status.Failed():
		return PaymentStateFailed, u.fail(ctx, c, status)
	default:
		return PaymentStatePending, nil
	}
}

// Confirm finalizes a pending order whose payment the gateway pushed as succeeded.
// When the push arrives before checkout attached the payment id, paymentID is
// attached first. A push naming an unknown pending order, or a different payment
// than the one attached, yields OutcomeUnmatched and finalizes nothing.
func (u *PaymentUseCase) Confirm(ctx context.Context, pendingID int64, paymentID string) (FinalizeResult, error) {
	logger := u.logger.With(slog.Int64("pending_id", pendingID), slog.String("payment_id", paymentID))

	p, err := u.pending.Get(ctx, pendingID)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		logger.Info("webhook names no pending order")
		return FinalizeResult{Outcome: OutcomeUnmatched}, nil
	case err != nil:
		return FinalizeResult{}, fmt.Errorf("load pending order %d: %w", pendingID, err)
	case !p.HasPayment() && paymentID != "":
		if err := u.pending.AttachPayment(ctx, pendingID, paymentID); err != nil {
			switch {
			case errors.Is(err, domainErrors.ErrAlreadyExists):
				logger.Warn("pending order got another payment attached")
				return FinalizeResult{Outcome: OutcomeUnmatched}, nil
			case errors.Is(err, domainErrors.ErrNotFound):
				// Consumed between lookup and attach; Finalize reports it.
			default:
				return FinalizeResult{}, fmt.Errorf("attach payment: %w", err)
			}
		} else {
			logger.Info("payment attached from webhook")
		}
	case p.HasPayment() && paymentID != "" && *p.PaymentID != paymentID:
		logger.Warn("webhook payment does not match pending order", slog.String("attached", *p.PaymentID))
		return FinalizeResult{Outcome: OutcomeUnmatched}, nil
	}

	return u.finalize.Finalize(ctx, Resolution{PendingID: pendingID, Trigger: TriggerWebhook})
}

// acknowledge tells the user a watched payment went through when another
// trigger confirmed the order first.
func (u *PaymentUseCase) acknowledge(ctx context.Context, c Check) {
	order, err := u.orders.GetByPaymentID(ctx, c.PaymentID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("lookup confirmed order", slog.String("payment_id", c.PaymentID), slog.Any("error", err))
		}
		return
	}
	u.notifier.SendUser(context.WithoutCancel(ctx), order.UserID, PaymentAcceptedText())
}

func (u *PaymentUseCase) fail(ctx context.Context, c Check, status model.PaymentStatus) error {
	deleted, err := u.pending.Delete(ctx, c.PendingID)
	if err != nil {
		return fmt.Errorf("drop pending order %d: %w", c.PendingID, err)
	}
	u.logger.Info("payment failed",
		slog.Int64("pending_id", c.PendingID),
		slog.String("payment_id", c.PaymentID),
		slog.String("status", string(status)),
		slog.String("trigger", string(c.Trigger)),
		slog.Bool("removed", deleted),
	)
	if !deleted {
		return nil
	}

	text := PaymentVoidText()
	if c.Trigger == TriggerPoller {
		text = PaymentFailedText()
	}
	u.notifier.SendUser(context.WithoutCancel(ctx), c.UserID, text)
	return nil
}
