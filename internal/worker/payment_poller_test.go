package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/storebot/internal/adapter/gateway"
	"github.com/polkiloo/storebot/internal/metrics"
	testhelpers "github.com/polkiloo/storebot/internal/test"
	"github.com/polkiloo/storebot/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitReport(t *testing.T, ch <-chan PollReport) PollReport {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for poll report")
		return PollReport{}
	}
}

func TestNewPaymentPollerDefaults(t *testing.T) {
	p := NewPaymentPoller(&testhelpers.ResolverStub{}, 0, 0, nil, discardLogger())
	assert.Equal(t, 5*time.Second, p.interval)
	assert.Equal(t, 1, p.maxAttempts)
}

func TestPaymentPollerFinalizes(t *testing.T) {
	var calls int32
	resolver := &testhelpers.ResolverStub{ResolveFn: func(context.Context, usecase.Check) (usecase.PaymentState, error) {
		if atomic.AddInt32(&calls, 1) < 2 {
			return usecase.PaymentStatePending, nil
		}
		return usecase.PaymentStateFinalized, nil
	}}
	results := make(chan PollReport, 1)
	p := NewPaymentPoller(resolver, time.Millisecond, 10, metrics.New(), discardLogger(), WithResults(results))
	defer p.Stop()

	require.True(t, p.Watch(1, 42, "pay-1"))
	r := waitReport(t, results)

	assert.Equal(t, PollReport{PendingID: 1, PaymentID: "pay-1", Result: PollFinalized, Attempts: 2}, r)
	checks := resolver.Checks()
	require.NotEmpty(t, checks)
	assert.Equal(t, usecase.TriggerPoller, checks[0].Trigger)
	assert.Equal(t, int64(42), checks[0].UserID)
}

func TestPaymentPollerFailedStops(t *testing.T) {
	resolver := &testhelpers.ResolverStub{ResolveFn: func(context.Context, usecase.Check) (usecase.PaymentState, error) {
		return usecase.PaymentStateFailed, nil
	}}
	results := make(chan PollReport, 1)
	p := NewPaymentPoller(resolver, time.Millisecond, 10, nil, discardLogger(), WithResults(results))
	defer p.Stop()

	require.True(t, p.Watch(3, 42, "pay-3"))
	r := waitReport(t, results)
	assert.Equal(t, PollFailed, r.Result)
	assert.Equal(t, 1, resolver.CountFor(3))
}

func TestPaymentPollerExhaustsBudget(t *testing.T) {
	resolver := &testhelpers.ResolverStub{ResolveFn: func(context.Context, usecase.Check) (usecase.PaymentState, error) {
		return usecase.PaymentStatePending, errors.New("gateway down")
	}}
	results := make(chan PollReport, 1)
	p := NewPaymentPoller(resolver, time.Millisecond, 3, nil, discardLogger(), WithResults(results))
	defer p.Stop()

	require.True(t, p.Watch(5, 42, "pay-5"))
	r := waitReport(t, results)
	assert.Equal(t, PollExhausted, r.Result)
	assert.Equal(t, 3, r.Attempts)
	assert.Equal(t, 3, resolver.CountFor(5))
}

func TestPaymentPollerWatchIsDeduplicated(t *testing.T) {
	resolver := &testhelpers.ResolverStub{}
	p := NewPaymentPoller(resolver, time.Hour, 10, nil, discardLogger())

	assert.True(t, p.Watch(1, 42, "pay-1"))
	assert.False(t, p.Watch(1, 42, "pay-1"))
	assert.True(t, p.Watch(2, 42, "pay-2"))
	assert.Equal(t, 2, p.Active())

	p.Stop()
	assert.Equal(t, 0, p.Active())
	assert.False(t, p.Watch(3, 42, "pay-3"))
}

func TestPaymentPollerDisabledGateway(t *testing.T) {
	p := NewPaymentPoller(&testhelpers.ResolverStub{Disabled: true}, time.Millisecond, 10, nil, discardLogger())
	defer p.Stop()

	assert.False(t, p.Watch(1, 42, "pay-1"))
	assert.False(t, NewPaymentPoller(&testhelpers.ResolverStub{}, time.Millisecond, 1, nil, discardLogger()).Watch(1, 42, ""))
}

func TestPaymentPollerStopAbandonsTasks(t *testing.T) {
	resolver := &testhelpers.ResolverStub{}
	results := make(chan PollReport, 1)
	p := NewPaymentPoller(resolver, time.Hour, 10, nil, discardLogger(), WithResults(results))

	require.True(t, p.Watch(9, 42, "pay-9"))

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return")
	}
	assert.Zero(t, resolver.CountFor(9))
	select {
	case r := <-results:
		assert.Equal(t, PollAbandoned, r.Result)
	default:
	}
}

func TestBackoffHonoursRetryAfter(t *testing.T) {
	interval := time.Second
	assert.Equal(t, interval, backoff(nil, interval))
	assert.Equal(t, interval, backoff(errors.New("boom"), interval))
	assert.Equal(t, interval, backoff(&gateway.TransientError{Err: errors.New("x"), RetryAfter: time.Millisecond}, interval))
	assert.Equal(t, 3*time.Second, backoff(&gateway.TransientError{Err: errors.New("x"), RetryAfter: 3 * time.Second}, interval))
}
