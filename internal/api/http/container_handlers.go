package http

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/shared/utils"
)

// listedWidget is one element of the dashboard listing.
type listedWidget struct {
	Alias     string           `json:"alias"`
	Class     string           `json:"class"`
	SortOrder int              `json:"sortOrder"`
	Fragment  *widget.Fragment `json:"fragment"`
}

// ListWidgets returns the context's widgets in display order, each with its
// rendered fragment.
func (h *Handlers) ListWidgets(c *gin.Context) {
	user, contextName, ok := h.identifiers(c)
	if !ok {
		return
	}

	entries, err := h.manager.List(c.Request.Context(), user, contextName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]listedWidget, 0, len(entries))
	for _, entry := range entries {
		out = append(out, listedWidget{
			Alias:     entry.Alias,
			Class:     entry.ClassName,
			SortOrder: entry.SortOrder,
			Fragment:  h.renderFragment(c, contextName, entry.Alias, entry.Widget),
		})
	}

	respondData(c, http.StatusOK, out)
}

// AddWidget creates a widget of the requested class and width and returns the
// new record for client-side insertion.
func (h *Handlers) AddWidget(c *gin.Context) {
	user, contextName, ok := h.identifiers(c)
	if !ok {
		return
	}

	var req struct {
		ClassName string      `json:"className"`
		Size      interface{} `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateClassName(req.ClassName, true); err != nil {
		respondInvalid(c, err.Error())
		return
	}

	// The picker posts size as a string, API clients as a number.
	width, ok := widget.CoerceInt(req.Size)
	if !ok {
		respondInvalid(c, "size must be an integer between 1 and 10")
		return
	}

	rec, inst, err := h.manager.Add(c.Request.Context(), user, contextName, req.ClassName, width)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"alias":     rec.Alias,
		"class":     rec.ClassName,
		"sortOrder": rec.SortOrder,
		"fragment":  h.renderFragment(c, contextName, rec.Alias, inst),
	})
}

// GetWidgetForm returns the aliased widget's property descriptors and current
// values for the edit dialog.
func (h *Handlers) GetWidgetForm(c *gin.Context) {
	user, contextName, ok := h.identifiers(c)
	if !ok {
		return
	}
	alias, ok := aliasParam(c)
	if !ok {
		return
	}

	inst, err := h.manager.Resolve(c.Request.Context(), user, contextName, alias)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"descriptors": h.codec.Describe(inst),
		"values":      h.codec.CurrentValues(inst),
	})
}

// UpdateWidget applies submitted property values to the aliased widget and
// returns its re-rendered fragment. The fields payload is a JSON-encoded
// string of the property object, matching the dialog's submission format.
func (h *Handlers) UpdateWidget(c *gin.Context) {
	user, contextName, ok := h.identifiers(c)
	if !ok {
		return
	}
	alias, ok := aliasParam(c)
	if !ok {
		return
	}

	var req struct {
		Fields string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Fields) == "" {
		respondInvalid(c, "fields is required")
		return
	}
	if len(req.Fields) > utils.MaxFieldsSize {
		respondInvalid(c, "fields payload too large")
		return
	}

	var props map[string]interface{}
	if err := sonic.Unmarshal([]byte(req.Fields), &props); err != nil {
		respondInvalid(c, "fields is not a JSON object: "+err.Error())
		return
	}

	inst, err := h.manager.UpdateProperties(c.Request.Context(), user, contextName, alias, props)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"alias":    alias,
		"fragment": h.renderFragment(c, contextName, alias, inst),
	})
}

// RemoveWidget deletes the aliased widget. Unknown aliases succeed, so
// repeated removals stay safe.
func (h *Handlers) RemoveWidget(c *gin.Context) {
	user, contextName, ok := h.identifiers(c)
	if !ok {
		return
	}
	alias, ok := aliasParam(c)
	if !ok {
		return
	}

	if err := h.manager.Remove(c.Request.Context(), user, contextName, alias); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetWidgetOrders rewrites sort orders from parallel comma-separated lists.
func (h *Handlers) SetWidgetOrders(c *gin.Context) {
	user, contextName, ok := h.identifiers(c)
	if !ok {
		return
	}

	var req struct {
		Aliases string `json:"aliases"`
		Orders  string `json:"orders"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Aliases) == "" || strings.TrimSpace(req.Orders) == "" {
		respondInvalid(c, "aliases and orders are required")
		return
	}

	aliases := strings.Split(req.Aliases, ",")
	orders := strings.Split(req.Orders, ",")

	if err := h.manager.SetOrders(c.Request.Context(), user, contextName, aliases, orders); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// renderFragment renders one widget, degrading to null on failure. A broken
// data source must not take down the whole dashboard response.
func (h *Handlers) renderFragment(c *gin.Context, contextName, alias string, w widget.ReportWidget) *widget.Fragment {
	frag, err := w.Render(c.Request.Context())
	if err != nil {
		h.logger.Warn("Widget render failed",
			zap.String("context", contextName),
			zap.String("alias", alias),
			zap.Error(err))
		return nil
	}
	return &frag
}
