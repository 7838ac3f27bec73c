package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CustomerHandler handles admin customer requests.
type CustomerHandler struct {
	service service.CustomerService
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(service service.CustomerService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With().Str("handler", "customer").Logger(),
	}
}

// List handles GET /api/admin/customers with pagination.
func (h *CustomerHandler) List(c *gin.Context) {
	limit, offset, ok := pagination(c, h.logger)
	if !ok {
		return
	}

	customers, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, customers)
}

func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	customer, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req model.CustomerRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	customer, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req model.CustomerRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	customer, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, customer)
}

// Delete handles DELETE /api/admin/customers/:id. Orders are kept, detached from the customer.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
