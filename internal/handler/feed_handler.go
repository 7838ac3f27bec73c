package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// FeedServer upgrades a request into a live event subscription.
type FeedServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

// FeedHandler streams order events to the back office.
type FeedHandler struct {
	feed   FeedServer
	logger zerolog.Logger
}

// NewFeedHandler creates a new live feed handler.
func NewFeedHandler(feed FeedServer, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		logger: logger.With().Str("handler", "feed").Logger(),
	}
}

// Orders handles GET /api/admin/feed/orders. The upgrader answers failed handshakes itself.
func (h *FeedHandler) Orders(c *gin.Context) {
	if err := h.feed.ServeWS(c.Writer, c.Request); err != nil {
		h.logger.Debug().Err(err).Str("remote_addr", c.Request.RemoteAddr).Msg("feed subscription refused")
		c.Abort()
	}
}
