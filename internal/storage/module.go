package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/config"
	"github.com/polkiloo/storebot/internal/domain/repository"
	"github.com/polkiloo/storebot/internal/storage/memory"
	"github.com/polkiloo/storebot/internal/storage/postgres"
)

// Store is the record store facade shared by the durable and embedded backends.
type Store interface {
	Pending() repository.PendingRepository
	Orders() repository.OrderRepository
	Products() repository.ProductRepository
	Carts() repository.CartRepository
	HealthCheck(ctx context.Context) error
	Close()
}

// Module wires the record store and its repositories.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Provide(
		func(s Store) repository.PendingRepository { return s.Pending() },
		func(s Store) repository.OrderRepository { return s.Orders() },
		func(s Store) repository.ProductRepository { return s.Products() },
		func(s Store) repository.CartRepository { return s.Carts() },
	),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

var newPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	st, err := postgres.New(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func newStore(p storeParams) (Store, error) {
	if p.Config.DatabaseURI == "" {
		p.Logger.Warn("DATABASE_URI is empty, using in-memory store; data is lost on restart")
		return memory.New(), nil
	}
	return newPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, store Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			store.Close()
			return nil
		},
	})
}
