package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/domain/container"
	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
)

// Error codes surfaced in the response envelope.
const (
	codeInvalidInput      = "invalid_input"
	codeUnknownWidgetType = "unknown_widget_type"
	codeWrongWidgetKind   = "wrong_widget_kind"
	codeWidgetNotFound    = "widget_not_found"
	codeInternal          = "internal"
)

// respondData writes the success envelope.
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

// respondInvalid writes a 400 for request-shape failures caught before any
// domain call.
func respondInvalid(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, codeInvalidInput, message)
}

// respondError maps a domain error onto the envelope. The four sentinel
// classes carry their own message to the client; anything else is a store or
// driver failure, logged and masked.
func respondError(c *gin.Context, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, container.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, codeInvalidInput, err.Error())
	case errors.Is(err, widget.ErrUnknownWidgetType):
		writeError(c, http.StatusBadRequest, codeUnknownWidgetType, err.Error())
	case errors.Is(err, widget.ErrWrongWidgetKind):
		writeError(c, http.StatusBadRequest, codeWrongWidgetKind, err.Error())
	case errors.Is(err, container.ErrWidgetNotFound):
		writeError(c, http.StatusNotFound, codeWidgetNotFound, err.Error())
	default:
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		writeError(c, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
