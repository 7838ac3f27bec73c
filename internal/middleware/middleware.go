package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CORS adds CORS headers to the response.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Client-ID, Stripe-Signature")

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// APIKeyAuth validates the API key from the X-API-Key header.
func APIKeyAuth(apiKey string, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")
		if providedKey == "" {
			logger.Warn().Str("path", c.Request.URL.Path).Msg("missing API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error:   model.ErrCodeUnauthorised,
				Message: "missing API key",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
			logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("provided_key", providedKey[:min(8, len(providedKey))]).
				Msg("invalid API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error:   model.ErrCodeUnauthorised,
				Message: "invalid API key",
			})
			return
		}

		c.Next()
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.Request.RemoteAddr).
			Msg("http request")
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().
					Interface("panic", err).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
					Error:   model.ErrCodeInternalError,
					Message: "internal server error",
				})
			}
		}()

		c.Next()
	}
}
