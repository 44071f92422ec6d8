package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/config"
)

// Module provides session authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newKeyHasher),
	fx.Provide(newTokenStrategy),
)

func newKeyHasher() KeyHasher {
	return NewBcryptKeyHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewHMACStrategy(p.Config.AuthSecret, Options{})
}
