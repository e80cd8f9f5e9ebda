// Package http exposes the container operations over a gin REST surface.
//
// Handlers stay thin: validate identifiers, decode the request, call the
// container manager, map the sentinel error onto a status code, and wrap the
// result in the {data}/{error} envelope. The acting user comes from the
// X-User-ID header; absent means the shared anonymous user.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reportdeck/backend/internal/domain/container"
	"github.com/reportdeck/backend/internal/domain/schema"
	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/i18n"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
	"github.com/reportdeck/backend/internal/shared/utils"
)

const (
	userHeader  = "X-User-ID"
	defaultUser = "anonymous"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	manager    *container.Manager
	codec      *schema.Codec
	registry   *widget.Registry
	factory    *widget.Factory
	translator i18n.Translator
	logger     *logging.Logger
	started    time.Time
}

// NewHandlers creates a new handler set.
func NewHandlers(
	manager *container.Manager,
	codec *schema.Codec,
	registry *widget.Registry,
	factory *widget.Factory,
	translator i18n.Translator,
	logger *logging.Logger,
) *Handlers {
	if translator == nil {
		translator = i18n.Passthrough{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		manager:    manager,
		codec:      codec,
		registry:   registry,
		factory:    factory,
		translator: translator,
		logger:     logger,
		started:    time.Now(),
	}
}

// Register binds the versioned API routes.
func (h *Handlers) Register(r gin.IRouter) {
	api := r.Group("/api/v1")

	dash := api.Group("/dashboards/:context")
	dash.GET("/widgets", h.ListWidgets)
	dash.POST("/widgets", h.AddWidget)
	dash.GET("/widgets/:alias", h.GetWidgetForm)
	dash.PUT("/widgets/:alias", h.UpdateWidget)
	dash.DELETE("/widgets/:alias", h.RemoveWidget)
	dash.PUT("/widget-orders", h.SetWidgetOrders)
	dash.GET("/widget-picker", h.WidgetPicker)

	api.GET("/widgets", h.Catalog)
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "ReportDeck Backend",
		"version": "0.3.0",
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"widget_types":   h.registry.Len(),
		"uptime_seconds": time.Since(h.started).Seconds(),
	})
}

// requestUser resolves the acting user from the request headers.
func requestUser(c *gin.Context) string {
	user := strings.TrimSpace(c.GetHeader(userHeader))
	if user == "" {
		return defaultUser
	}
	return user
}

// identifiers validates the user header and :context path segment. A false
// return means the response is already written.
func (h *Handlers) identifiers(c *gin.Context) (user, contextName string, ok bool) {
	user = requestUser(c)
	if err := utils.ValidateUserID(user); err != nil {
		respondInvalid(c, err.Error())
		return "", "", false
	}

	contextName = c.Param("context")
	if err := utils.ValidateContextName(contextName); err != nil {
		respondInvalid(c, err.Error())
		return "", "", false
	}
	return user, contextName, true
}

// aliasParam validates the :alias path segment.
func aliasParam(c *gin.Context) (string, bool) {
	alias := c.Param("alias")
	if err := utils.ValidateAlias(alias, true); err != nil {
		respondInvalid(c, err.Error())
		return "", false
	}
	return alias, true
}
