package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storebot/internal/adapter/gateway"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/server/http/dto"
	"github.com/polkiloo/storebot/internal/usecase"
)

// CheckoutHandler starts payments for the chat frontend.
type CheckoutHandler struct {
	facade CheckoutFacade
	logger *slog.Logger
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{facade: facade, logger: logger}
}

// Create handles POST /api/user/checkout.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.facade.Checkout(c.Request.Context(), toCheckoutRequest(CurrentUserID(c), req))
	if err != nil {
		var transient *gateway.TransientError
		switch {
		case usecase.IsCheckoutRejected(err):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, gateway.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "online payment is unavailable"})
		case gateway.IsPermanent(err):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		case errors.As(err, &transient):
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "payment gateway is temporarily unavailable"})
		default:
			h.logger.Error("checkout failed", slog.Any("error", err))
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		PendingID:  result.Pending.ID,
		Number:     result.Pending.Number,
		Total:      result.Pending.Total(),
		PaymentURL: result.PaymentURL,
	})
}

func toCheckoutRequest(userID int64, req dto.CheckoutRequest) usecase.CheckoutRequest {
	items := make([]model.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.LineItem{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return usecase.CheckoutRequest{
		UserID:   userID,
		Type:     model.CheckoutType(req.Type),
		Items:    items,
		Address:  req.Address,
		Delivery: req.Delivery,
		Customer: model.Customer{
			UserID:   userID,
			Username: req.Customer.Username,
			FullName: req.Customer.FullName,
			Phone:    req.Customer.Phone,
			Email:    req.Customer.Email,
		},
	}
}
