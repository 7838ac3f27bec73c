package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContentHandler handles site content block requests.
type ContentHandler struct {
	service service.ContentService
	logger  zerolog.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(service service.ContentService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger.With().Str("handler", "content").Logger(),
	}
}

// GetPublished handles GET /api/content/:key.
func (h *ContentHandler) GetPublished(c *gin.Context) {
	block, err := h.service.GetPublished(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, block)
}

func (h *ContentHandler) List(c *gin.Context) {
	blocks, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, blocks)
}

func (h *ContentHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	block, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, block)
}

func (h *ContentHandler) Create(c *gin.Context) {
	var req model.ContentRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	block, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusCreated, block)
}

func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req model.ContentRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	block, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, block)
}

func (h *ContentHandler) Delete(c *gin.Context) {
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
