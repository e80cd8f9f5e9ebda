package widgets

import (
	"context"

	"github.com/microcosm-cc/bluemonday"

	"github.com/reportdeck/backend/internal/domain/widget"
)

// ClassNotes identifies the operator notes widget.
const ClassNotes = "reportdeck/widgets/notes"

// Notes renders free-form operator text. Content is user-supplied and passes
// through a UGC sanitizer before leaving the backend.
type Notes struct {
	widget.Base
	policy *bluemonday.Policy
}

// NewNotes creates a notes widget.
func NewNotes() *Notes {
	w := &Notes{policy: bluemonday.UGCPolicy()}
	w.Base = widget.NewBase([]widget.PropertyDef{
		{Name: "title", Params: map[string]interface{}{
			"label": "Title", "type": "text", "default": "Notes",
		}},
		{Name: "content", Params: map[string]interface{}{
			"label": "Content", "type": "textarea", "default": "",
		}},
	})
	return w
}

// Render returns the sanitized note content.
func (w *Notes) Render(ctx context.Context) (widget.Fragment, error) {
	return widget.Fragment{
		Kind:  "notes",
		Title: w.StringProp("title", "Notes"),
		Data: map[string]interface{}{
			"content": w.policy.Sanitize(w.StringProp("content", "")),
		},
	}, nil
}

// NotesDefinition returns the registry entry.
func NotesDefinition() widget.Definition {
	return widget.Definition{
		Class:       ClassNotes,
		Title:       "Notes",
		Description: "Free-form notes for the dashboard",
		New:         func() widget.Widget { return NewNotes() },
	}
}
