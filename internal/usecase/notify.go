package usecase

import (
	"context"
	"log/slog"

	"github.com/polkiloo/storebot/internal/adapter/messenger"
	"github.com/polkiloo/storebot/internal/config"
	"github.com/polkiloo/storebot/internal/metrics"
)

// NotificationDispatcher delivers chat messages on a best-effort basis.
type NotificationDispatcher struct {
	messenger messenger.Messenger
	admins    []int64
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewNotificationDispatcher constructs NotificationDispatcher. Admin recipients come from configuration.
func NewNotificationDispatcher(m messenger.Messenger, cfg *config.Config, mt *metrics.Metrics, logger *slog.Logger) *NotificationDispatcher {
	admins := append([]int64(nil), cfg.AdminIDs...)
	return &NotificationDispatcher{messenger: m, admins: admins, metrics: mt, logger: logger}
}

// Send delivers text to each recipient independently. Failures are logged and counted, never returned.
func (d *NotificationDispatcher) Send(ctx context.Context, recipients []int64, text string) {
	for _, chatID := range recipients {
		if err := d.messenger.SendMessage(ctx, chatID, text); err != nil {
			d.metrics.Notification("failed")
			d.logger.Warn("notification failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
			continue
		}
		d.metrics.Notification("sent")
	}
}

// SendUser delivers text to a single chat.
func (d *NotificationDispatcher) SendUser(ctx context.Context, userID int64, text string) {
	d.Send(ctx, []int64{userID}, text)
}

// SendAdmins delivers text to every configured admin.
func (d *NotificationDispatcher) SendAdmins(ctx context.Context, text string) {
	d.Send(ctx, d.admins, text)
}
