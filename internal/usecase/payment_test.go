package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/domain/model"
)

func TestResolveCanceledPaymentNeverProducesOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var pending model.PendingOrder
	for i := 0; i < 7; i++ {
		pending = h.paidPending(t, 42, model.CheckoutSingle, "pay-"+string(rune('a'+i)), item(1, 1, 10))
	}
	require.Equal(t, int64(7), pending.ID)
	h.gateway.statuses[*pending.PaymentID] = model.PaymentStatusCanceled

	state, err := h.payments.Resolve(ctx, Check{PendingID: 7, UserID: 42, PaymentID: *pending.PaymentID, Trigger: TriggerSweeper})
	require.NoError(t, err)
	assert.Equal(t, PaymentStateFailed, state)

	_, err = h.store.Pending().Get(ctx, 7)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	res, err := h.finalize.Finalize(ctx, Resolution{PendingID: 7, Trigger: TriggerWebhook})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, res.Outcome)

	_, err = h.store.Orders().GetByPaymentID(ctx, *pending.PaymentID)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
	assert.Equal(t, []string{PaymentVoidText()}, h.messenger.to(42))
}

func TestResolveFailureNotifiesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.paidPending(t, 42, model.CheckoutSingle, "pay-1", item(1, 1, 10))
	h.gateway.statuses["pay-1"] = model.PaymentStatusExpired

	check := Check{PendingID: pending.ID, UserID: 42, PaymentID: "pay-1", Trigger: TriggerPoller}
	for i := 0; i < 2; i++ {
		state, err := h.payments.Resolve(ctx, check)
		require.NoError(t, err)
		assert.Equal(t, PaymentStateFailed, state)
	}
	assert.Equal(t, []string{PaymentFailedText()}, h.messenger.to(42))
}

func TestResolveSucceededFinalizes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.paidPending(t, 42, model.CheckoutSingle, "pay-1", item(1, 1, 10))
	h.gateway.statuses["pay-1"] = model.PaymentStatusSucceeded

	state, err := h.payments.Resolve(ctx, Check{PendingID: pending.ID, UserID: 42, PaymentID: "pay-1", Trigger: TriggerPoller})
	require.NoError(t, err)
	assert.Equal(t, PaymentStateFinalized, state)
	assert.Equal(t, 1, h.store.OrderCount())
}

func TestResolvePollerAcknowledgesOrderConfirmedElsewhere(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.paidPending(t, 42, model.CheckoutSingle, "pay-1", item(1, 1, 10))
	h.gateway.statuses["pay-1"] = model.PaymentStatusSucceeded

	res, err := h.payments.Confirm(ctx, pending.ID, "pay-1")
	require.NoError(t, err)
	require.Equal(t, OutcomeFinalized, res.Outcome)

	state, err := h.payments.Resolve(ctx, Check{PendingID: pending.ID, UserID: 42, PaymentID: "pay-1", Trigger: TriggerPoller})
	require.NoError(t, err)
	assert.Equal(t, PaymentStateFinalized, state)
	assert.Equal(t, 1, h.store.OrderCount())

	msgs := h.messenger.to(42)
	require.Len(t, msgs, 2)
	assert.Equal(t, PaymentAcceptedText(), msgs[1])

	state, err = h.payments.Resolve(ctx, Check{PendingID: pending.ID, UserID: 42, PaymentID: "pay-1", Trigger: TriggerSweeper})
	require.NoError(t, err)
	assert.Equal(t, PaymentStateFinalized, state)
	assert.Len(t, h.messenger.to(42), 2)
}

func TestResolvePollerSilentWithoutOrder(t *testing.T) {
	h := newHarness(t)
	h.gateway.statuses["pay-gone"] = model.PaymentStatusSucceeded

	state, err := h.payments.Resolve(context.Background(), Check{PendingID: 77, UserID: 42, PaymentID: "pay-gone", Trigger: TriggerPoller})
	require.NoError(t, err)
	assert.Equal(t, PaymentStateFinalized, state)
	assert.Empty(t, h.messenger.to(42))
}

func TestResolveLeavesPendingUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.paidPending(t, 42, model.CheckoutSingle, "pay-1", item(1, 1, 10))

	for _, status := range []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusWaitingForCapture} {
		h.gateway.statuses["pay-1"] = status
		state, err := h.payments.Resolve(ctx, Check{PendingID: pending.ID, UserID: 42, PaymentID: "pay-1", Trigger: TriggerSweeper})
		require.NoError(t, err)
		assert.Equal(t, PaymentStatePending, state)
	}

	h.gateway.statusErr = errors.New("timeout")
	state, err := h.payments.Resolve(ctx, Check{PendingID: pending.ID, UserID: 42, PaymentID: "pay-1", Trigger: TriggerSweeper})
	assert.Error(t, err)
	assert.Equal(t, PaymentStatePending, state)

	_, err = h.store.Pending().Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Zero(t, h.store.OrderCount())
	assert.True(t, h.payments.Enabled())
}

func TestConfirmAttachesMissingPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p, err := h.store.Pending().Create(ctx, model.PendingDraft{UserID: 42, Items: []model.LineItem{item(1, 1, 10)}, Type: model.CheckoutSingle})
	require.NoError(t, err)

	res, err := h.payments.Confirm(ctx, p.ID, "pay-early")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinalized, res.Outcome)

	order, err := h.store.Orders().GetByPaymentID(ctx, "pay-early")
	require.NoError(t, err)
	assert.Equal(t, p.Number, order.Number)
}

func TestConfirmIgnoresMismatchedPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.paidPending(t, 42, model.CheckoutSingle, "pay-1", item(1, 1, 10))

	res, err := h.payments.Confirm(ctx, pending.ID, "pay-other")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnmatched, res.Outcome)

	_, err = h.store.Pending().Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Zero(t, h.store.OrderCount())
}

func TestConfirmTwiceFinalizesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.paidPending(t, 42, model.CheckoutSingle, "pay-1", item(1, 1, 10))

	first, err := h.payments.Confirm(ctx, pending.ID, "pay-1")
	require.NoError(t, err)
	second, err := h.payments.Confirm(ctx, pending.ID, "pay-1")
	require.NoError(t, err)

	assert.Equal(t, OutcomeFinalized, first.Outcome)
	assert.Equal(t, OutcomeUnmatched, second.Outcome)
	assert.Equal(t, 1, h.store.OrderCount())
}

func TestConfirmUnknownPending(t *testing.T) {
	h := newHarness(t)
	res, err := h.payments.Confirm(context.Background(), 999, "pay-x")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnmatched, res.Outcome)
	assert.Zero(t, h.store.OrderCount())
	assert.Empty(t, h.messenger.to(42))
}

func TestConfirmConsumedPendingIsUnmatched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := h.paidPending(t, 42, model.CheckoutSingle, "pay-1", item(1, 1, 10))
	_, err := h.finalize.Finalize(ctx, Resolution{PendingID: pending.ID, Trigger: TriggerPoller})
	require.NoError(t, err)

	res, err := h.payments.Confirm(ctx, pending.ID, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnmatched, res.Outcome)
	assert.Equal(t, 1, h.store.OrderCount())
	assert.Len(t, h.messenger.to(42), 1)
}
