package handler

import (
	"net/http"
	"strings"

	"storefront/internal/clientstate"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ClientIDHeader identifies an anonymous browser.
const ClientIDHeader = "X-Client-ID"

// CartResponse is a cart with its derived totals.
type CartResponse struct {
	Items []clientstate.CartItem `json:"items"`
	Total decimal.Decimal        `json:"total"`
	Count int                    `json:"count"`
}

func newCartResponse(items []clientstate.CartItem) CartResponse {
	return CartResponse{
		Items: items,
		Total: clientstate.CartTotal(items),
		Count: clientstate.CartCount(items),
	}
}

// AddCartItemRequest adds a catalogue product to the cart.
type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest sets a cart line's quantity. Zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// ProductRefRequest names a catalogue product.
type ProductRefRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// StateHandler serves the per-client cart, wishlist and recently-viewed lists.
type StateHandler struct {
	state    *clientstate.Container
	products service.ProductService
	logger   zerolog.Logger
}

// NewStateHandler creates a new client state handler.
func NewStateHandler(state *clientstate.Container, products service.ProductService, logger zerolog.Logger) *StateHandler {
	return &StateHandler{
		state:    state,
		products: products,
		logger:   logger.With().Str("handler", "client-state").Logger(),
	}
}

// owner resolves whose state a request addresses: the signed-in customer,
// otherwise the anonymous client id.
func (h *StateHandler) owner(c *gin.Context) (string, bool) {
	if identity := middleware.IdentityFrom(c); identity != nil && identity.ExternalID != "" {
		return "user:" + identity.ExternalID, true
	}
	if id := strings.TrimSpace(c.GetHeader(ClientIDHeader)); id != "" {
		return "client:" + id, true
	}
	writeError(c, model.ErrClientIDRequired, h.logger)
	return "", false
}

func (h *StateHandler) GetCart(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	items, err := h.state.Cart(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, newCartResponse(items))
}

// AddCartItem handles POST /api/cart/items. Name, price, image and the
// stock ceiling come from the catalogue, not the client.
func (h *StateHandler) AddCartItem(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	line := clientstate.CartItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: req.Quantity,
		Image:    product.Image,
	}
	items, err := h.state.AddToCart(c.Request.Context(), owner, line, product.Stock)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, newCartResponse(items))
}

// UpdateCartItem handles PUT /api/cart/items/:productId.
func (h *StateHandler) UpdateCartItem(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	productID := c.Param("productId")
	ceiling := clientstate.NoCeiling
	if req.Quantity > 0 {
		product, err := h.products.GetByID(c.Request.Context(), productID)
		if err != nil {
			writeError(c, err, h.logger)
			return
		}
		ceiling = product.Stock
	}

	items, err := h.state.UpdateCartQuantity(c.Request.Context(), owner, productID, req.Quantity, ceiling)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, newCartResponse(items))
}

func (h *StateHandler) RemoveCartItem(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	items, err := h.state.RemoveFromCart(c.Request.Context(), owner, c.Param("productId"))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, newCartResponse(items))
}

func (h *StateHandler) ClearCart(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	items, err := h.state.ClearCart(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, newCartResponse(items))
}

func (h *StateHandler) GetWishlist(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	items, err := h.state.Wishlist(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, items)
}

func (h *StateHandler) AddWishlistItem(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req ProductRefRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	items, err := h.state.AddToWishlist(c.Request.Context(), owner, clientstate.WishlistItem{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Image: product.Image,
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, items)
}

func (h *StateHandler) RemoveWishlistItem(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	items, err := h.state.RemoveFromWishlist(c.Request.Context(), owner, c.Param("productId"))
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, items)
}

func (h *StateHandler) GetRecentlyViewed(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	items, err := h.state.RecentlyViewed(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, items)
}

// RecordView handles POST /api/recently-viewed.
func (h *StateHandler) RecordView(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req ProductRefRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	items, err := h.state.RecordView(c.Request.Context(), owner, clientstate.ViewedItem{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Image: product.Image,
	})
	if err != nil {
		writeError(c, err, h.logger)
		return
	}

	writeJSON(c, http.StatusOK, items)
}
