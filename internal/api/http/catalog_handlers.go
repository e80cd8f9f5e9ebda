package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pickerType is one selectable widget type in the add dialog.
type pickerType struct {
	Class       string `json:"class"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// WidgetPicker returns the data behind the add dialog: selectable sizes and
// the installed widget types.
func (h *Handlers) WidgetPicker(c *gin.Context) {
	if _, _, ok := h.identifiers(c); !ok {
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"sizes": h.codec.WidthOptions(),
		"types": h.pickerTypes(),
	})
}

// Catalog returns every installed widget type with the descriptors of a
// default-configured instance.
func (h *Handlers) Catalog(c *gin.Context) {
	defs := h.registry.List()
	out := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		entry := gin.H{
			"class":       def.Class,
			"title":       h.translator.Translate(def.Title),
			"description": h.translator.Translate(def.Description),
		}

		inst, err := h.factory.Construct(def.Class, nil)
		if err != nil {
			// Registration probes conformance, so this only fires when a
			// constructor misbehaves after startup.
			h.logger.Warn("Catalog construction failed",
				zap.String("class", def.Class),
				zap.Error(err))
		} else {
			entry["descriptors"] = h.codec.Describe(inst)
		}
		out = append(out, entry)
	}

	respondData(c, http.StatusOK, out)
}

func (h *Handlers) pickerTypes() []pickerType {
	defs := h.registry.List()
	out := make([]pickerType, 0, len(defs))
	for _, def := range defs {
		out = append(out, pickerType{
			Class:       def.Class,
			Title:       h.translator.Translate(def.Title),
			Description: h.translator.Translate(def.Description),
		})
	}
	return out
}
