package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CheckoutHandler turns carts into orders.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req model.CheckoutRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), middleware.IdentityFrom(c), &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusCreated, result)
}

// AccountHandler serves the signed-in customer's own records.
type AccountHandler struct {
	service service.AccountService
	logger  zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(service service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger.With().Str("handler", "account").Logger(),
	}
}

// Sync handles POST /api/account/sync.
func (h *AccountHandler) Sync(c *gin.Context) {
	user, err := h.service.Sync(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, user)
}

// Orders handles GET /api/account/orders.
func (h *AccountHandler) Orders(c *gin.Context) {
	orders, err := h.service.Orders(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, orders)
}
