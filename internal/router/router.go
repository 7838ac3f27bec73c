package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Checkout *handler.CheckoutHandler
	Account  *handler.AccountHandler
	Category *handler.CategoryHandler
	Customer *handler.CustomerHandler
	Content  *handler.ContentHandler
	State    *handler.StateHandler
	Feed     *handler.FeedHandler
}

// Auth holds the credentials checked by the middleware.
type Auth struct {
	AdminAPIKey    string
	IdentitySecret string
	IdentityIssuer string
}

// New creates a gin engine with all routes and middleware configured.
func New(h Handlers, auth Auth, logger zerolog.Logger) *gin.Engine {
	r := gin.New()

	// Apply middleware in order: Recovery -> Logging -> CORS -> Identity
	r.Use(
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.CORS(),
		middleware.Identity(auth.IdentitySecret, auth.IdentityIssuer, logger),
	)

	// Health check endpoint (no authentication required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		api.GET("/products", h.Product.List)
		api.GET("/products/:id", h.Product.GetByID)
		api.GET("/categories", h.Category.ListActive)
		api.GET("/content/:key", h.Content.GetPublished)

		api.GET("/cart", h.State.GetCart)
		api.POST("/cart/items", h.State.AddCartItem)
		api.PUT("/cart/items/:productId", h.State.UpdateCartItem)
		api.DELETE("/cart/items/:productId", h.State.RemoveCartItem)
		api.DELETE("/cart", h.State.ClearCart)

		api.GET("/wishlist", h.State.GetWishlist)
		api.POST("/wishlist/items", h.State.AddWishlistItem)
		api.DELETE("/wishlist/items/:productId", h.State.RemoveWishlistItem)

		api.GET("/recently-viewed", h.State.GetRecentlyViewed)
		api.POST("/recently-viewed", h.State.RecordView)

		api.POST("/checkout", h.Checkout.Checkout)
		api.GET("/checkout/sessions/:sessionId", h.Order.GetBySession)
		api.GET("/orders/:id", h.Order.GetByID)
		api.POST("/webhooks/payment", h.Order.PaymentWebhook)

		api.POST("/account/sync", h.Account.Sync)
		api.GET("/account/orders", h.Account.Orders)
	}

	admin := api.Group("/admin", middleware.APIKeyAuth(auth.AdminAPIKey, logger))
	{
		admin.GET("/products", h.Product.List)
		admin.POST("/products", h.Product.Create)
		admin.PUT("/products/:id", h.Product.Update)
		admin.DELETE("/products/:id", h.Product.Delete)
		admin.GET("/exports/products.xlsx", h.Product.Export)

		admin.GET("/categories", h.Category.List)
		admin.GET("/categories/:id", h.Category.GetByID)
		admin.POST("/categories", h.Category.Create)
		admin.PUT("/categories/:id", h.Category.Update)
		admin.DELETE("/categories/:id", h.Category.Delete)

		admin.GET("/customers", h.Customer.List)
		admin.GET("/customers/:id", h.Customer.GetByID)
		admin.POST("/customers", h.Customer.Create)
		admin.PUT("/customers/:id", h.Customer.Update)
		admin.DELETE("/customers/:id", h.Customer.Delete)

		admin.GET("/orders", h.Order.List)
		admin.GET("/orders/:id", h.Order.GetByID)
		admin.PUT("/orders/:id/status", h.Order.UpdateStatus)
		admin.DELETE("/orders/:id", h.Order.Delete)

		admin.GET("/content", h.Content.List)
		admin.GET("/content/:id", h.Content.GetByID)
		admin.POST("/content", h.Content.Create)
		admin.PUT("/content/:id", h.Content.Update)
		admin.DELETE("/content/:id", h.Content.Delete)

		admin.GET("/feed/orders", h.Feed.Orders)
	}

	return r
}
