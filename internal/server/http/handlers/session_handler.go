package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/server/http/dto"
	"github.com/polkiloo/storebot/internal/server/http/middleware"
)

// SessionHandler opens frontend sessions.
type SessionHandler struct {
	facade SessionFacade
}

// NewSessionHandler creates SessionHandler instance.
func NewSessionHandler(facade SessionFacade) *SessionHandler {
	return &SessionHandler{facade: facade}
}

// Open handles POST /api/user/session.
func (h *SessionHandler) Open(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.OpenSession(c.Request.Context(), req.UserID, req.APIKey)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAPIKey):
			c.Status(http.StatusUnauthorized)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	middleware.SetAuthCookie(c, token)
	c.Status(http.StatusOK)
}
