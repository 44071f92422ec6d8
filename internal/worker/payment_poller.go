package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/storebot/internal/metrics"
	"github.com/polkiloo/storebot/internal/usecase"
)

// PollResult is the terminal state of a poll task.
type PollResult string

const (
	PollFinalized PollResult = "finalized"
	PollFailed    PollResult = "failed"
	PollExhausted PollResult = "exhausted"
	PollAbandoned PollResult = "abandoned"
)

// PollReport describes how a poll task ended.
type PollReport struct {
	PendingID int64
	PaymentID string
	Result    PollResult
	Attempts  int
}

// PollerOption customizes PaymentPoller.
type PollerOption func(*PaymentPoller)

// WithResults makes the poller publish every task report on ch.
func WithResults(ch chan<- PollReport) PollerOption {
	return func(p *PaymentPoller) { p.results = ch }
}

// PaymentPoller supervises one status polling task per pending order.
type PaymentPoller struct {
	resolver    PaymentResolver
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
	metrics     *metrics.Metrics
	results     chan<- PollReport

	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	tasks   map[int64]struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewPaymentPoller constructs poller pool.
func NewPaymentPoller(resolver PaymentResolver, interval time.Duration, maxAttempts int, mt *metrics.Metrics, logger *slog.Logger, opts ...PollerOption) *PaymentPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	base, cancel := context.WithCancel(context.Background())
	p := &PaymentPoller{
		resolver:    resolver,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
		metrics:     mt,
		base:        base,
		cancel:      cancel,
		tasks:       make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Watch starts polling paymentID unless pendingID is already watched.
// It reports whether a new task was started.
func (p *PaymentPoller) Watch(pendingID, userID int64, paymentID string) bool {
	if !p.resolver.Enabled() || paymentID == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	if _, ok := p.tasks[pendingID]; ok {
		return false
	}
	p.tasks[pendingID] = struct{}{}
	p.wg.Add(1)
	p.metrics.PollTaskStarted()

	go p.run(usecase.Check{PendingID: pendingID, UserID: userID, PaymentID: paymentID, Trigger: usecase.TriggerPoller})
	return true
}

// Active returns number of running tasks.
func (p *PaymentPoller) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// Stop cancels all tasks and waits for them. Unresolved payments are left to the sweeper.
func (p *PaymentPoller) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *PaymentPoller) run(c usecase.Check) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		delete(p.tasks, c.PendingID)
		p.mu.Unlock()
		p.metrics.PollTaskDone()
	}()

	logger := p.logger.With(slog.Int64("pending_id", c.PendingID), slog.String("payment_id", c.PaymentID))
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-p.base.Done():
			p.report(logger, PollReport{PendingID: c.PendingID, PaymentID: c.PaymentID, Result: PollAbandoned, Attempts: attempt - 1})
			return
		case <-timer.C:
		}

		state, err := p.resolver.Resolve(p.base, c)
		if err != nil {
			logger.Debug("payment poll failed", slog.Int("attempt", attempt), slog.Any("error", err))
		}
		switch state {
		case usecase.PaymentStateFinalized:
			p.report(logger, PollReport{PendingID: c.PendingID, PaymentID: c.PaymentID, Result: PollFinalized, Attempts: attempt})
			return
		case usecase.PaymentStateFailed:
			p.report(logger, PollReport{PendingID: c.PendingID, PaymentID: c.PaymentID, Result: PollFailed, Attempts: attempt})
			return
		}
		timer.Reset(backoff(err, p.interval))
	}

	p.report(logger, PollReport{PendingID: c.PendingID, PaymentID: c.PaymentID, Result: PollExhausted, Attempts: p.maxAttempts})
}

func (p *PaymentPoller) report(logger *slog.Logger, r PollReport) {
	logger.Info("payment poll finished", slog.String("result", string(r.Result)), slog.Int("attempts", r.Attempts))
	if p.results == nil {
		return
	}
	select {
	case p.results <- r:
	case <-p.base.Done():
	}
}
