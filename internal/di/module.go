package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/adapter/gateway"
	"github.com/polkiloo/storebot/internal/adapter/messenger"
	"github.com/polkiloo/storebot/internal/app"
	"github.com/polkiloo/storebot/internal/config"
	"github.com/polkiloo/storebot/internal/logger"
	"github.com/polkiloo/storebot/internal/metrics"
	"github.com/polkiloo/storebot/internal/pkg/auth"
	"github.com/polkiloo/storebot/internal/server/http/router"
	"github.com/polkiloo/storebot/internal/storage"
	"github.com/polkiloo/storebot/internal/usecase"
	"github.com/polkiloo/storebot/internal/worker"
)

// Core lists modules shared by the server and the one-shot commands.
func Core(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		storage.Module,
		gateway.Module,
		messenger.Module,
		usecase.Module,
		worker.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Module composes the full server graph.
func Module(opts ...fx.Option) fx.Option {
	return Core(append([]fx.Option{router.Module, app.Module}, opts...)...)
}
