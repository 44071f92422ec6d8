package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storebot/internal/server/http/dto"
	"github.com/polkiloo/storebot/internal/usecase"
)

const (
	webhookOK      = "ok"
	webhookIgnored = "ignored"
)

// WebhookHandler receives payment notifications from the gateway.
// It always answers 200. Payments it could not resolve are left to the
// poller and the sweeper.
type WebhookHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade PaymentFacade, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, logger: logger}
}

// Notify handles POST on the configured webhook path.
func (h *WebhookHandler) Notify(c *gin.Context) {
	if !h.facade.PaymentsEnabled() {
		h.respond(c, webhookIgnored)
		return
	}

	var ev dto.WebhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.logger.Warn("malformed webhook", slog.Any("error", err))
		h.respond(c, webhookIgnored)
		return
	}
	if ev.Event != dto.EventPaymentSucceeded {
		h.respond(c, webhookIgnored)
		return
	}

	pendingID := int64(ev.Object.Metadata.OrderID)
	if pendingID <= 0 {
		h.logger.Warn("webhook without order id", slog.String("payment_id", ev.Object.ID))
		h.respond(c, webhookIgnored)
		return
	}

	res, err := h.facade.ConfirmPayment(c.Request.Context(), pendingID, ev.Object.ID)
	if err != nil {
		h.logger.Error("webhook finalize failed",
			slog.Int64("pending_id", pendingID),
			slog.String("payment_id", ev.Object.ID),
			slog.Any("error", err),
		)
		h.respond(c, webhookOK)
		return
	}

	if res.Outcome == usecase.OutcomeUnmatched {
		h.respond(c, webhookIgnored)
		return
	}

	h.logger.Info("webhook processed",
		slog.Int64("pending_id", pendingID),
		slog.String("payment_id", ev.Object.ID),
		slog.String("outcome", string(res.Outcome)),
	)
	h.respond(c, webhookOK)
}

func (h *WebhookHandler) respond(c *gin.Context, status string) {
	c.JSON(http.StatusOK, dto.WebhookResponse{Status: status})
}
