package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"storefront/internal/export"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products with filters and pagination.
func (h *ProductHandler) List(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	products, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, products)
}

func (h *ProductHandler) parseFilter(c *gin.Context) (model.ProductFilter, bool) {
	filter := model.ProductFilter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
		Sort:     model.ProductSort(c.Query("sort")),
	}

	var ok bool
	if filter.Limit, filter.Offset, ok = pagination(c, h.logger); !ok {
		return filter, false
	}

	flags := []struct {
		name string
		dst  **bool
	}{
		{"featured", &filter.Featured},
		{"new", &filter.IsNew},
		{"trending", &filter.Trending},
		{"topRated", &filter.TopRated},
		{"flashDeal", &filter.FlashDeal},
	}
	for _, f := range flags {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(c, model.ErrCodeMissingField, "invalid "+f.name+" parameter", h.logger)
			return filter, false
		}
		*f.dst = &v
	}

	if raw := c.Query("inStock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(c, model.ErrCodeMissingField, "invalid inStock parameter", h.logger)
			return filter, false
		}
		filter.InStockOnly = v
	}

	prices := []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	}
	for _, p := range prices {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			writeBadRequest(c, model.ErrCodeMissingField, "invalid "+p.name+" parameter", h.logger)
			return filter, false
		}
		*p.dst = &v
	}

	return filter, true
}

// GetByID handles GET /api/products/:id.
func (h *ProductHandler) GetByID(c *gin.Context) {
	product, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, product)
}

// Create handles POST /api/admin/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req model.ProductRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	product, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusCreated, product)
}

// Update handles PUT /api/admin/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	var req model.ProductRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	product, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, product)
}

// Delete handles DELETE /api/admin/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// Export handles GET /api/admin/exports/products.xlsx.
func (h *ProductHandler) Export(c *gin.Context) {
	products, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, products); err != nil {
		writeError(c, err, h.logger)
		return
	}

	h.logger.Info().Int("products", len(products)).Msg("product export generated")

	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
