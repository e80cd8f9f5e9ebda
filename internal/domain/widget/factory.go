package widget

import (
	"fmt"
	"reflect"
)

// Factory constructs widget instances from class identifiers and
// configuration bags.
type Factory struct {
	registry *Registry
}

// NewFactory creates a factory over the registry.
func NewFactory(registry *Registry) *Factory {
	return &Factory{registry: registry}
}

// Construct builds a fresh instance of className seeded with configuration.
//
// The class name comes from requests or persisted records, so both stages
// are checked every time: the class must resolve (ErrUnknownWidgetType), and
// the constructed value must satisfy the report-widget contract
// (ErrWrongWidgetKind). Registration probes conformance too, but a
// constructor is arbitrary code and not obliged to return the same type it
// returned at probe time.
func (f *Factory) Construct(className string, configuration map[string]interface{}) (ReportWidget, error) {
	def, ok := f.registry.Resolve(className)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidgetType, className)
	}

	instance := def.New()
	if isNil(instance) {
		return nil, fmt.Errorf("%w: %s constructor returned nil", ErrWrongWidgetKind, className)
	}
	report, ok := instance.(ReportWidget)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrWrongWidgetKind, className, instance)
	}

	if len(configuration) > 0 {
		if err := report.ApplyProperties(configuration); err != nil {
			return nil, fmt.Errorf("seed %s: %w", className, err)
		}
	}
	return report, nil
}

// isNil catches both nil interfaces and typed-nil pointers inside them.
func isNil(w Widget) bool {
	if w == nil {
		return true
	}
	v := reflect.ValueOf(w)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
