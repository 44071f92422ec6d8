// Command reconcile runs a single pending payment sweep and exits.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/config"
	"github.com/polkiloo/storebot/internal/di"
	"github.com/polkiloo/storebot/internal/worker"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitNotConfigured = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		cfg     *config.Config
		sweeper *worker.PaymentSweeper
	)
	app := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		di.Core(),
		fx.Populate(&cfg, &sweeper),
	)

	code := reconcile(ctx, app, cfg, sweeper, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

func reconcile(ctx context.Context, app lifecycle, cfg *config.Config, sweeper *worker.PaymentSweeper, stdout, stderr io.Writer) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to start: %v\n", err)
		return exitFailure
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			fmt.Fprintf(stderr, "failed to stop: %v\n", err)
		}
	}()

	if !cfg.GatewayConfigured() {
		fmt.Fprintln(stderr, "YOOKASSA_SHOP_ID and YOOKASSA_SECRET_KEY are required")
		return exitNotConfigured
	}

	report := sweeper.RunOnce(ctx)
	for _, item := range report.Payments {
		if item.Err != nil {
			fmt.Fprintf(stdout, "%s: error=%v\n", item.PaymentID, item.Err)
			continue
		}
		fmt.Fprintf(stdout, "%s: status=%s\n", item.PaymentID, item.State)
	}
	fmt.Fprintf(stdout, "Checked: %d, finalized: %d\n", report.Checked, report.Finalized)
	return exitOK
}
