package gateway

import (
	"errors"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/config"
)

// Module exposes payment gateway client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	client, err := NewHTTPClient(Options{
		BaseURL:       p.Config.GatewayURL,
		ShopID:        p.Config.ShopID,
		SecretKey:     p.Config.SecretKey,
		ReturnURL:     p.Config.ReturnURL,
		VATCode:       p.Config.VATCode,
		TaxSystemCode: p.Config.TaxSystemCode,
		DefaultEmail:  p.Config.DefaultEmail,
	}, p.Logger)
	if errors.Is(err, ErrNotConfigured) {
		p.Logger.Warn("payment gateway credentials missing: payments and payment resolution are disabled")
		return DisabledClient{}, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}
