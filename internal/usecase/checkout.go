package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/polkiloo/storebot/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/domain/repository"
)

// Watcher starts status polling for a freshly created payment.
type Watcher interface {
	Watch(pendingID, userID int64, paymentID string) bool
}

// CheckoutRequest is the frontend's description of a purchase.
type CheckoutRequest struct {
	UserID   int64
	Type     model.CheckoutType
	Items    []model.LineItem
	Address  string
	Delivery *string
	Customer model.Customer
}

// CheckoutResult carries the pending order and where to pay for it.
type CheckoutResult struct {
	Pending    model.PendingOrder
	PaymentURL string
}

// CheckoutUseCase creates pending orders and their gateway payments.
type CheckoutUseCase struct {
	pending repository.PendingRepository
	gateway gateway.Client
	watcher Watcher
	logger  *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(pending repository.PendingRepository, gw gateway.Client, watcher Watcher, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{pending: pending, gateway: gw, watcher: watcher, logger: logger}
}

// Checkout validates the request, stores a pending order, creates the payment,
// attaches it and starts watching it.
//
// A failed payment creation removes the pending order, since the customer
// never got a link to pay it.
func (u *CheckoutUseCase) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	draft, err := normalizeCheckout(req)
	if err != nil {
		return nil, err
	}
	if !u.gateway.Enabled() {
		return nil, gateway.ErrNotConfigured
	}

	pending, err := u.pending.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create pending order: %w", err)
	}
	logger := u.logger.With(slog.Int64("pending_id", pending.ID), slog.Int64("number", pending.Number))

	payment, err := u.gateway.CreatePayment(ctx, *pending)
	if err != nil {
		if _, derr := u.pending.Delete(context.WithoutCancel(ctx), pending.ID); derr != nil {
			logger.Warn("drop unpaid pending order", slog.Any("error", derr))
		}
		logger.Error("create payment failed", slog.Bool("permanent", gateway.IsPermanent(err)), slog.Any("error", err))
		return nil, err
	}

	if err := u.pending.AttachPayment(ctx, pending.ID, payment.ID); err != nil {
		logger.Error("attach payment failed", slog.String("payment_id", payment.ID), slog.Any("error", err))
		return nil, fmt.Errorf("attach payment: %w", err)
	}
	pending.PaymentID = &payment.ID

	if !u.watcher.Watch(pending.ID, pending.UserID, payment.ID) {
		logger.Debug("payment already watched", slog.String("payment_id", payment.ID))
	}

	logger.Info("checkout created", slog.String("payment_id", payment.ID))
	return &CheckoutResult{Pending: *pending, PaymentURL: payment.ConfirmationURL}, nil
}

func normalizeCheckout(req CheckoutRequest) (model.PendingDraft, error) {
	if req.UserID <= 0 || len(req.Items) == 0 {
		return model.PendingDraft{}, domainErrors.ErrInvalidCheckout
	}

	kind := req.Type
	switch kind {
	case "":
		kind = model.CheckoutSingle
	case model.CheckoutSingle, model.CheckoutCart:
	default:
		return model.PendingDraft{}, fmt.Errorf("%w: unknown checkout type %q", domainErrors.ErrInvalidCheckout, kind)
	}

	items := make([]model.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 || it.Price.IsNegative() {
			return model.PendingDraft{}, fmt.Errorf("%w: invalid item %d", domainErrors.ErrInvalidCheckout, it.ProductID)
		}
		it.Name = strings.TrimSpace(it.Name)
		items = append(items, it)
	}

	var delivery *string
	if req.Delivery != nil && strings.TrimSpace(*req.Delivery) != "" {
		d := strings.TrimSpace(*req.Delivery)
		delivery = &d
	}

	customer := model.NewCustomer(req.UserID, req.Customer.Username, req.Customer.FullName, req.Customer.Phone, req.Customer.Email)

	return model.PendingDraft{
		UserID:   req.UserID,
		Items:    items,
		Address:  strings.TrimSpace(req.Address),
		Delivery: delivery,
		Type:     kind,
		Customer: customer,
	}, nil
}

// IsCheckoutRejected reports errors caused by the request rather than the system.
func IsCheckoutRejected(err error) bool {
	return errors.Is(err, domainErrors.ErrInvalidCheckout)
}
