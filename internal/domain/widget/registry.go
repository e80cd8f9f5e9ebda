package widget

import (
	"fmt"
	"sort"
	"sync"
)

// Definition describes one registered widget type.
type Definition struct {
	// Class is the stable type identifier persisted in records, e.g.
	// "reportdeck/widgets/traffic".
	Class string

	// Title is a localization key for display in pickers.
	Title string

	// Description is a localization key for the type's summary line.
	Description string

	// New constructs a fresh instance. It must return a value satisfying
	// ReportWidget; registration probes one construction up front.
	New func() Widget
}

// Registry maps class identifiers to widget definitions. Widget-providing
// packages populate it at startup.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		widgets: make(map[string]Definition),
	}
}

// Register adds a widget definition. The class must be non-empty and unused,
// and a probe construction must yield a report widget, so misregistered
// types fail at startup instead of per request.
func (r *Registry) Register(def Definition) error {
	if def.Class == "" {
		return fmt.Errorf("widget class cannot be empty")
	}
	if def.New == nil {
		return fmt.Errorf("widget %s: constructor cannot be nil", def.Class)
	}

	probe := def.New()
	if probe == nil {
		return fmt.Errorf("widget %s: constructor returned nil", def.Class)
	}
	if _, ok := probe.(ReportWidget); !ok {
		return fmt.Errorf("widget %s: %T does not satisfy the report widget contract", def.Class, probe)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.widgets[def.Class]; exists {
		return fmt.Errorf("widget %s: already registered", def.Class)
	}
	r.widgets[def.Class] = def
	return nil
}

// Resolve returns the definition for a class.
func (r *Registry) Resolve(class string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.widgets[class]
	return def, ok
}

// List returns all definitions sorted by class.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.widgets))
	for _, def := range r.widgets {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Class < out[j].Class
	})
	return out
}

// Classes returns all registered class identifiers sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.widgets))
	for class := range r.widgets {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}
