// Package schema converts a widget's declared property schema and current
// values into the transmissible, user-editable descriptor form.
package schema

import (
	"sort"
	"strconv"

	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/i18n"
)

// Generic free-text type applied when a declaration names none.
const DefaultType = "text"

// Localization keys for the reserved descriptors.
const (
	widthLabelKey     = "Width"
	newRowLabelKey    = "New row"
	fullWidthLabelKey = "full width"
)

// Descriptor describes one editable property of a widget.
type Descriptor struct {
	Property string                 `json:"property"`
	Title    string                 `json:"title"`
	Type     string                 `json:"type"`
	Required bool                   `json:"required,omitempty"`
	Options  []Option               `json:"options,omitempty"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

// Option is one selectable value of a dropdown descriptor.
type Option struct {
	Value interface{} `json:"value"`
	Label string      `json:"label"`
}

// Codec builds descriptors and value maps, resolving localization keys
// through its translator.
type Codec struct {
	tr i18n.Translator
}

// NewCodec creates a codec over the translator.
func NewCodec(tr i18n.Translator) *Codec {
	if tr == nil {
		tr = i18n.Passthrough{}
	}
	return &Codec{tr: tr}
}

// WidthOptions returns the selectable width sizes: 1..10, with the maximum
// labeled as full width.
func (c *Codec) WidthOptions() []Option {
	options := make([]Option, 0, widget.MaxWidth)
	for size := widget.MinWidth; size <= widget.MaxWidth; size++ {
		label := strconv.Itoa(size)
		if size == widget.MaxWidth {
			label = c.tr.Translate(fullWidthLabelKey)
		}
		options = append(options, Option{Value: size, Label: label})
	}
	return options
}

// Describe returns the widget's descriptors: the two reserved ones first,
// then one per declared property in declaration order. A widget declaring
// width or newRow itself replaces the reserved descriptor in place.
func (c *Codec) Describe(w widget.ReportWidget) []Descriptor {
	out := []Descriptor{c.widthDescriptor(), c.newRowDescriptor()}
	slot := map[string]int{widget.PropWidth: 0, widget.PropNewRow: 1}

	for _, def := range w.Declared() {
		desc := c.describeOne(def)
		if i, reserved := slot[def.Name]; reserved {
			out[i] = desc
			continue
		}
		out = append(out, desc)
	}
	return out
}

// CurrentValues returns the live value of every described property. String
// values are treated as localization keys and resolved.
func (c *Codec) CurrentValues(w widget.ReportWidget) map[string]interface{} {
	names := []string{widget.PropWidth, widget.PropNewRow}
	for _, def := range w.Declared() {
		if def.Name == widget.PropWidth || def.Name == widget.PropNewRow {
			continue
		}
		names = append(names, def.Name)
	}

	values := make(map[string]interface{}, len(names))
	for _, name := range names {
		value, ok := w.Property(name)
		if !ok {
			continue
		}
		if s, isString := value.(string); isString {
			values[name] = c.tr.Translate(s)
		} else {
			values[name] = value
		}
	}
	return values
}

func (c *Codec) widthDescriptor() Descriptor {
	return Descriptor{
		Property: widget.PropWidth,
		Title:    c.tr.Translate(widthLabelKey),
		Type:     "select",
		Required: true,
		Options:  c.WidthOptions(),
	}
}

func (c *Codec) newRowDescriptor() Descriptor {
	return Descriptor{
		Property: widget.PropNewRow,
		Title:    c.tr.Translate(newRowLabelKey),
		Type:     "checkbox",
	}
}

// describeOne merges one declaration into a descriptor. Field writes are
// first-write-wins: property and title are fixed before the parameter walk,
// so parameters sharing those names never overwrite them.
func (c *Codec) describeOne(def widget.PropertyDef) Descriptor {
	desc := Descriptor{Property: def.Name}

	if label, ok := def.Params["label"].(string); ok && label != "" {
		desc.Title = c.tr.Translate(label)
	} else {
		desc.Title = def.Name
	}

	keys := make([]string, 0, len(def.Params))
	for key := range def.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := def.Params[key]
		switch key {
		case "label", "property", "title":
			// Already set above
		case "type":
			if desc.Type == "" {
				if s, ok := value.(string); ok {
					desc.Type = s
				}
			}
		case "required":
			if flag, ok := widget.CoerceBool(value); ok {
				desc.Required = flag
			}
		case "options":
			if options := c.optionsFrom(value); options != nil {
				desc.Options = options
				continue
			}
			desc.Extra = putExtra(desc.Extra, key, value)
		default:
			desc.Extra = putExtra(desc.Extra, key, c.resolveScalar(value))
		}
	}

	if desc.Type == "" {
		desc.Type = DefaultType
	}
	return desc
}

// resolveScalar treats scalar string parameters as localization keys;
// structured values pass through verbatim.
func (c *Codec) resolveScalar(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		return c.tr.Translate(s)
	}
	return value
}

func (c *Codec) optionsFrom(value interface{}) []Option {
	switch v := value.(type) {
	case []Option:
		out := make([]Option, len(v))
		for i, opt := range v {
			out[i] = Option{Value: opt.Value, Label: c.tr.Translate(opt.Label)}
		}
		return out
	case []interface{}:
		out := make([]Option, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]interface{})
			if !ok {
				return nil
			}
			label, _ := m["label"].(string)
			out = append(out, Option{Value: m["value"], Label: c.tr.Translate(label)})
		}
		return out
	default:
		return nil
	}
}

func putExtra(extra map[string]interface{}, key string, value interface{}) map[string]interface{} {
	if extra == nil {
		extra = make(map[string]interface{})
	}
	if _, exists := extra[key]; !exists {
		extra[key] = value
	}
	return extra
}
