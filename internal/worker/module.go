package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/config"
	"github.com/polkiloo/storebot/internal/domain/repository"
	"github.com/polkiloo/storebot/internal/metrics"
	"github.com/polkiloo/storebot/internal/usecase"
)

// Module wires the payment poller and sweeper.
var Module = fx.Options(
	fx.Provide(
		newPaymentPoller,
		func(p *PaymentPoller) usecase.Watcher { return p },
		newPaymentSweeper,
	),
)

type workerParams struct {
	fx.In

	Payments *usecase.PaymentUseCase
	Pending  repository.PendingRepository
	Config   *config.Config
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newPaymentPoller(p workerParams) *PaymentPoller {
	return NewPaymentPoller(p.Payments, p.Config.PollInterval, p.Config.PollMaxAttempts, p.Metrics, p.Logger)
}

func newPaymentSweeper(p workerParams) *PaymentSweeper {
	return NewPaymentSweeper(p.Payments, p.Pending, p.Config.ReconcileInterval, p.Config.SweepWorkers, p.Metrics, p.Logger)
}
