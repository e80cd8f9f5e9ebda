// Package widget defines the report-widget contract and the registry that
// maps stable class identifiers to constructors.
//
// A class identifier is user-influenced data (it arrives in requests and in
// persisted configuration), so instantiation always goes through the
// two-stage factory check: the class must exist in the registry, and the
// constructed value must satisfy the report-widget capability contract.
package widget

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Taxonomy errors surfaced to request originators. All are recoverable.
var (
	// ErrUnknownWidgetType means the named class does not exist.
	ErrUnknownWidgetType = errors.New("unknown widget type")

	// ErrWrongWidgetKind means the class exists but does not satisfy the
	// report-widget contract.
	ErrWrongWidgetKind = errors.New("class is not a report widget")
)

// Reserved cross-cutting properties present on every widget.
const (
	PropWidth  = "width"
	PropNewRow = "newRow"
)

// Width bounds for the reserved width property. MaxWidth renders as "full
// width" and is the default for a fresh instance.
const (
	MinWidth = 1
	MaxWidth = 10
)

// PropertyDef declares one configurable property of a widget type. Params
// carries descriptor parameters (label, type, options, default, ...); scalar
// values are treated as localization keys when descriptors are built.
type PropertyDef struct {
	Name   string
	Params map[string]interface{}
}

// Fragment is a widget's rendered output: plain data for the client to
// display, never markup.
type Fragment struct {
	Kind  string                 `json:"kind"`
	Title string                 `json:"title"`
	Data  map[string]interface{} `json:"data"`
}

// Widget is the minimal property-bag contract every registered type meets.
type Widget interface {
	Property(name string) (interface{}, bool)
	SetProperty(name string, value interface{}) error
	Properties() map[string]interface{}
	ApplyProperties(props map[string]interface{}) error
}

// ReportWidget is the capability contract the container requires: a declared
// property schema on top of the bag, and a render operation.
type ReportWidget interface {
	Widget
	Declared() []PropertyDef
	Render(ctx context.Context) (Fragment, error)
}

// CoerceInt converts the numeric forms a property bag can carry (native
// ints, JSON float64, numeric strings) to int. Fractional values do not
// coerce.
func CoerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return coerceFloat(float64(n))
	case float64:
		return coerceFloat(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func coerceFloat(f float64) (int, bool) {
	if f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// CoerceBool converts the boolean forms a property bag can carry.
func CoerceBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		if i, ok := CoerceInt(v); ok {
			return i != 0, true
		}
		return false, false
	}
}
