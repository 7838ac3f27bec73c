package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CategoryHandler handles catalogue category requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

// ListActive handles GET /api/categories.
func (h *CategoryHandler) ListActive(c *gin.Context) {
	h.list(c, true)
}

// List handles GET /api/admin/categories, including inactive categories.
func (h *CategoryHandler) List(c *gin.Context) {
	h.list(c, false)
}

func (h *CategoryHandler) list(c *gin.Context, activeOnly bool) {
	categories, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, categories)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	category, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, category)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req model.CategoryRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	category, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req model.CategoryRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	category, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
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
