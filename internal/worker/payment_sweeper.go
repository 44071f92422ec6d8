package worker

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/metrics"
	"github.com/polkiloo/storebot/internal/usecase"
)

// SweepReport summarizes a single sweeper pass.
type SweepReport struct {
	Checked   int
	Finalized int
	Failed    int
	// Payments lists each checked payment ordered by pending id.
	Payments []SweepItem
}

// SweepItem is the outcome of checking one payment.
type SweepItem struct {
	PendingID int64
	PaymentID string
	State     usecase.PaymentState
	Err       error
}

// PaymentSweeper periodically re-checks every pending order that has a payment id.
type PaymentSweeper struct {
	resolver PaymentResolver
	pending  PendingLister
	interval time.Duration
	workers  int
	metrics  *metrics.Metrics
	logger   *slog.Logger

	pass   sync.Mutex
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPaymentSweeper constructs sweeper.
func NewPaymentSweeper(resolver PaymentResolver, pending PendingLister, interval time.Duration, workers int, mt *metrics.Metrics, logger *slog.Logger) *PaymentSweeper {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	if workers <= 0 {
		workers = 1
	}
	return &PaymentSweeper{
		resolver: resolver,
		pending:  pending,
		interval: interval,
		workers:  workers,
		metrics:  mt,
		logger:   logger,
	}
}

// Start runs one pass immediately and then one per interval.
func (s *PaymentSweeper) Start(ctx context.Context) {
	if !s.resolver.Enabled() {
		s.logger.Debug("payment gateway not configured, sweeper disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce(runCtx)
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.RunOnce(runCtx)
			}
		}
	}()
}

// Stop stops the loop and waits for the running pass.
func (s *PaymentSweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// RunOnce checks every awaiting payment once. Passes never overlap.
func (s *PaymentSweeper) RunOnce(ctx context.Context) SweepReport {
	var report SweepReport
	if !s.resolver.Enabled() {
		return report
	}

	s.pass.Lock()
	defer s.pass.Unlock()

	started := time.Now()
	defer func() { s.metrics.ObserveSweep(time.Since(started)) }()

	orders, err := s.pending.ListAwaitingPayment(ctx)
	if err != nil {
		s.logger.Error("list awaiting payments", slog.Any("error", err))
		return report
	}
	if len(orders) == 0 {
		return report
	}

	jobs := make(chan model.PendingOrder)
	results := make(chan SweepItem, len(orders))

	var wg sync.WaitGroup
	for i := 0; i < min(s.workers, len(orders)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- s.check(ctx, p)
			}
		}()
	}

dispatch:
	for _, p := range orders {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- p:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	for item := range results {
		report.Checked++
		report.Payments = append(report.Payments, item)
		switch item.State {
		case usecase.PaymentStateFinalized:
			report.Finalized++
		case usecase.PaymentStateFailed:
			report.Failed++
		}
	}

	slices.SortFunc(report.Payments, func(a, b SweepItem) int { return cmp.Compare(a.PendingID, b.PendingID) })

	s.logger.Info("sweep finished",
		slog.Int("checked", report.Checked),
		slog.Int("finalized", report.Finalized),
		slog.Int("failed", report.Failed),
	)
	return report
}

func (s *PaymentSweeper) check(ctx context.Context, p model.PendingOrder) SweepItem {
	state, err := s.resolver.Resolve(ctx, usecase.Check{
		PendingID: p.ID,
		UserID:    p.UserID,
		PaymentID: *p.PaymentID,
		Trigger:   usecase.TriggerSweeper,
	})
	if err != nil {
		s.logger.Warn("sweep check failed", slog.Int64("pending_id", p.ID), slog.Any("error", err))
	}
	return SweepItem{PendingID: p.ID, PaymentID: *p.PaymentID, State: state, Err: err}
}
