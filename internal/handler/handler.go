package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation, model.KindAuthenticity:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindUnauthorised:
		return http.StatusUnauthorized
	case model.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates err into an ErrorResponse. Domain errors keep their
// code and message; anything else becomes a 500 with detail only in debug mode.
func writeError(c *gin.Context, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		status := statusFor(de.Kind)
		resp := model.ErrorResponse{Error: de.Code, Message: de.Message}
		if gin.IsDebugging() && err.Error() != de.Message {
			resp.Detail = err.Error()
		}

		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(err).Str("code", de.Code).Int("status", status).Msg("handler error")

		c.AbortWithStatusJSON(status, resp)
		return
	}

	logger.Error().Err(err).Int("status", http.StatusInternalServerError).Msg("handler error")
	resp := model.ErrorResponse{Error: model.ErrCodeInternalError, Message: "internal server error"}
	if gin.IsDebugging() {
		resp.Detail = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
}

// writeBadRequest rejects a request whose shape could not be read.
func writeBadRequest(c *gin.Context, code, message string, logger zerolog.Logger) {
	logger.Debug().Str("code", code).Str("path", c.Request.URL.Path).Msg(message)
	c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: code, Message: message})
}

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst any, logger zerolog.Logger) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeBadRequest(c, model.ErrCodeInvalidJSON, "invalid request body: "+err.Error(), logger)
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string, logger zerolog.Logger) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeBadRequest(c, model.ErrCodeMissingField, "invalid "+name+" parameter", logger)
		return 0, false
	}
	return v, true
}

// pagination reads limit and offset. Defaults are applied by the services.
func pagination(c *gin.Context, logger zerolog.Logger) (limit, offset int, ok bool) {
	if limit, ok = queryInt(c, "limit", logger); !ok {
		return 0, 0, false
	}
	if offset, ok = queryInt(c, "offset", logger); !ok {
		return 0, 0, false
	}
	return limit, offset, true
}

// uuidParam parses a path parameter as a UUID.
func uuidParam(c *gin.Context, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeBadRequest(c, model.ErrCodeMissingField, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}
