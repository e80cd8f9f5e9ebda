package widget

import (
	"fmt"
	"sort"
)

// Base supplies property storage and the reserved width/newRow handling.
// Concrete widgets embed it and add Declared/Render.
type Base struct {
	declared []PropertyDef
	props    map[string]interface{}
}

// NewBase creates property storage seeded with the reserved defaults
// (width = MaxWidth, newRow = false) and any declared "default" params.
func NewBase(declared []PropertyDef) Base {
	props := map[string]interface{}{
		PropWidth:  MaxWidth,
		PropNewRow: false,
	}
	for _, def := range declared {
		if def.Params == nil {
			continue
		}
		if value, ok := def.Params["default"]; ok {
			props[def.Name] = value
		}
	}
	return Base{declared: declared, props: props}
}

// Declared returns the widget's declared property schema in declaration
// order.
func (b *Base) Declared() []PropertyDef {
	out := make([]PropertyDef, len(b.declared))
	copy(out, b.declared)
	return out
}

// Property returns the current value for name.
func (b *Base) Property(name string) (interface{}, bool) {
	value, ok := b.props[name]
	return value, ok
}

// SetProperty stores a value. The reserved width property is coerced to int
// and bounds-checked; everything else is stored as given.
func (b *Base) SetProperty(name string, value interface{}) error {
	switch name {
	case PropWidth:
		width, ok := CoerceInt(value)
		if !ok {
			return fmt.Errorf("width must be an integer, got %v", value)
		}
		if width < MinWidth || width > MaxWidth {
			return fmt.Errorf("width must be between %d and %d, got %d", MinWidth, MaxWidth, width)
		}
		b.props[name] = width
	case PropNewRow:
		if flag, ok := CoerceBool(value); ok {
			b.props[name] = flag
		} else {
			b.props[name] = value
		}
	default:
		b.props[name] = value
	}
	return nil
}

// Properties returns a snapshot copy of the full property state. This is
// what the container persists as the record's configuration.
func (b *Base) Properties() map[string]interface{} {
	out := make(map[string]interface{}, len(b.props))
	for k, v := range b.props {
		out[k] = v
	}
	return out
}

// ApplyProperties sets every entry of props. Keys are applied in sorted
// order so a failing entry is deterministic.
func (b *Base) ApplyProperties(props map[string]interface{}) error {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := b.SetProperty(name, props[name]); err != nil {
			return err
		}
	}
	return nil
}

// Width returns the current reserved width value.
func (b *Base) Width() int {
	if width, ok := CoerceInt(b.props[PropWidth]); ok {
		return width
	}
	return MaxWidth
}

// StringProp returns a string property, or fallback when absent or not a
// string.
func (b *Base) StringProp(name, fallback string) string {
	if value, ok := b.props[name]; ok {
		if s, ok := value.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// IntProp returns an integer property, or fallback when absent or not
// coercible.
func (b *Base) IntProp(name string, fallback int) int {
	if value, ok := b.props[name]; ok {
		if i, ok := CoerceInt(value); ok {
			return i
		}
	}
	return fallback
}
