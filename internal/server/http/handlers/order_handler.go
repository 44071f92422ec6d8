package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/server/http/dto"
)

// OrderHandler lists confirmed orders.
type OrderHandler struct {
	facade CheckoutFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade CheckoutFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/user/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, dto.OrderItem{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return dto.OrderResponse{
		Number:       order.Number,
		Status:       string(order.Status),
		Total:        order.Total,
		Items:        items,
		Address:      order.Address,
		Delivery:     order.Delivery,
		TrackingLink: order.TrackingLink,
		CreatedAt:    order.CreatedAt,
	}
}
