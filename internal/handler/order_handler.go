package handler

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxWebhookBody bounds the payment notification payload.
const maxWebhookBody = 64 << 10

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/:id and GET /api/admin/orders/:id.
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, order)
}

// GetBySession handles GET /api/checkout/sessions/:sessionId.
func (h *OrderHandler) GetBySession(c *gin.Context) {
	orders, err := h.service.GetBySession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, orders)
}

// List handles GET /api/admin/orders with an optional status filter.
func (h *OrderHandler) List(c *gin.Context) {
	limit, offset, ok := pagination(c, h.logger)
	if !ok {
		return
	}

	filter := model.OrderFilter{Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeError(c, err, h.logger)
			return
		}
		filter.Status = &status
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/admin/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), orderID, &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, order)
}

// Delete handles DELETE /api/admin/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), orderID); err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// PaymentWebhook handles POST /api/webhooks/payment.
func (h *OrderHandler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn().Int64("limit", tooLarge.Limit).Msg("payment notification too large")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
				Error:   model.ErrCodePayloadTooLarge,
				Message: "request body too large",
			})
			return
		}
		writeBadRequest(c, model.ErrCodeInvalidJSON, "failed to read request body", h.logger)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.service.HandlePaymentNotification(c.Request.Context(), payload, signature); err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, gin.H{"received": true})
}
