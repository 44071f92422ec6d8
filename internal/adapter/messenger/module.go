package messenger

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storebot/internal/config"
)

// Module exposes messenger implementation to fx graph.
var Module = fx.Provide(newMessenger)

type messengerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newMessenger(p messengerParams) (Messenger, error) {
	if p.Config.BotToken == "" {
		p.Logger.Warn("bot token missing: notifications are only logged")
		return NewLogMessenger(p.Logger), nil
	}
	return NewTelegramClient(p.Config.TelegramAPIURL, p.Config.BotToken)
}
