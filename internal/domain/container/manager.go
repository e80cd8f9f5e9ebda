// Package container implements the per-context widget container: an ordered
// record set materialized from the preference store, mutated in memory, and
// written back whole on every change.
package container

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
	"github.com/reportdeck/backend/internal/infrastructure/monitoring"
	"github.com/reportdeck/backend/internal/shared/id"
	"github.com/reportdeck/backend/internal/shared/types"
)

// User-facing, recoverable failures. Class resolution failures reuse the
// widget package sentinels.
var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWidgetNotFound marks an alias absent from the currently resolvable
	// widgets of a context.
	ErrWidgetNotFound = errors.New("widget not found")
)

// aliasPrefix starts every generated record alias.
const aliasPrefix = "report_container_"

// Operation labels for metrics.
const (
	opList    = "list"
	opAdd     = "add"
	opRemove  = "remove"
	opUpdate  = "update"
	opReorder = "reorder"
)

// Entry is one listed widget: its record identity plus a freshly constructed
// instance.
type Entry struct {
	Alias     string
	ClassName string
	SortOrder int
	Widget    widget.ReportWidget
}

// EventSink receives a notification after each successful mutation.
type EventSink interface {
	Publish(event types.Event)
}

// Manager orchestrates container operations. Each operation is one
// read-modify-write cycle; cycles touching the same (user, context) are
// serialized in-process by a keyed mutex.
type Manager struct {
	store   *Store
	factory *widget.Factory
	logger  *logging.Logger
	metrics *monitoring.Metrics
	events  EventSink
	locks   *keyedMutex
}

// NewManager creates a container manager. metrics and events may be nil.
func NewManager(store *Store, factory *widget.Factory, logger *logging.Logger, metrics *monitoring.Metrics, events EventSink) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:   store,
		factory: factory,
		logger:  logger,
		metrics: metrics,
		events:  events,
		locks:   newKeyedMutex(),
	}
}

// List returns the context's widgets ascending by sort order, ties keeping
// insertion order. Records whose class no longer resolves are skipped, not
// errors: stored state is allowed to drift behind the installed widget set.
// Instances are constructed fresh on every call.
func (m *Manager) List(ctx context.Context, userID, contextName string) ([]Entry, error) {
	timer := monitoring.NewTimer(m.metrics, opList)

	set, err := m.store.Load(ctx, userID, contextName)
	if err != nil {
		timer.Stop("error")
		return nil, err
	}

	entries := make([]Entry, 0, set.Len())
	for _, rec := range set.Sorted() {
		inst, err := m.factory.Construct(rec.ClassName, rec.Configuration)
		if err != nil {
			m.logger.Debug("Skipping unresolvable widget record",
				zap.String("context", contextName),
				zap.String("alias", rec.Alias),
				zap.String("class", rec.ClassName),
				zap.Error(err))
			continue
		}
		entries = append(entries, Entry{
			Alias:     rec.Alias,
			ClassName: rec.ClassName,
			SortOrder: rec.SortOrder,
			Widget:    inst,
		})
	}

	timer.Stop("success")
	return entries, nil
}

// Add creates a new record for className with the given width, assigns it a
// fresh alias and the next sort order, persists the container, and returns
// the record together with the constructed instance.
func (m *Manager) Add(ctx context.Context, userID, contextName, className string, width int) (*types.WidgetRecord, widget.ReportWidget, error) {
	timer := monitoring.NewTimer(m.metrics, opAdd)

	if strings.TrimSpace(className) == "" {
		timer.Stop("error")
		return nil, nil, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}

	inst, err := m.factory.Construct(className, nil)
	if err != nil {
		timer.Stop("error")
		return nil, nil, err
	}
	if err := inst.SetProperty(widget.PropWidth, width); err != nil {
		timer.Stop("error")
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lock := m.locks.get(stripeKey(userID, contextName))
	lock.Lock()
	defer lock.Unlock()

	set, err := m.store.Load(ctx, userID, contextName)
	if err != nil {
		timer.Stop("error")
		return nil, nil, err
	}

	rec := &types.WidgetRecord{
		Alias:         nextAlias(set, contextName),
		ClassName:     className,
		Configuration: inst.Properties(),
		SortOrder:     set.MaxSortOrder() + 1,
	}
	set.Put(rec)

	if err := m.store.Save(ctx, userID, contextName, set); err != nil {
		timer.Stop("error")
		return nil, nil, err
	}

	m.logger.Info("Widget added",
		zap.String("context", contextName),
		zap.String("alias", rec.Alias),
		zap.String("class", className),
		zap.Int("sortOrder", rec.SortOrder))
	m.publish(types.EventWidgetAdded, userID, contextName, rec.Alias)

	timer.Stop("success")
	return rec.Clone(), inst, nil
}

// Remove deletes the record for alias if present and persists the container
// either way. Removing an absent alias is a no-op, so retried client actions
// stay safe.
func (m *Manager) Remove(ctx context.Context, userID, contextName, alias string) error {
	timer := monitoring.NewTimer(m.metrics, opRemove)

	lock := m.locks.get(stripeKey(userID, contextName))
	lock.Lock()
	defer lock.Unlock()

	set, err := m.store.Load(ctx, userID, contextName)
	if err != nil {
		timer.Stop("error")
		return err
	}

	removed := set.Delete(alias)

	if err := m.store.Save(ctx, userID, contextName, set); err != nil {
		timer.Stop("error")
		return err
	}

	if removed {
		m.logger.Info("Widget removed",
			zap.String("context", contextName),
			zap.String("alias", alias))
		m.publish(types.EventWidgetRemoved, userID, contextName, alias)
	}

	timer.Stop("success")
	return nil
}

// UpdateProperties applies props to a freshly constructed instance of the
// aliased widget, stores the resulting snapshot as the record's new
// configuration, and returns the instance for re-rendering. The alias must
// name a record whose class still resolves.
func (m *Manager) UpdateProperties(ctx context.Context, userID, contextName, alias string, props map[string]interface{}) (widget.ReportWidget, error) {
	timer := monitoring.NewTimer(m.metrics, opUpdate)

	lock := m.locks.get(stripeKey(userID, contextName))
	lock.Lock()
	defer lock.Unlock()

	set, err := m.store.Load(ctx, userID, contextName)
	if err != nil {
		timer.Stop("error")
		return nil, err
	}

	rec, ok := set.Get(alias)
	if !ok {
		timer.Stop("error")
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, alias)
	}

	inst, err := m.factory.Construct(rec.ClassName, rec.Configuration)
	if err != nil {
		timer.Stop("error")
		return nil, fmt.Errorf("%w: %s: %v", ErrWidgetNotFound, alias, err)
	}

	if err := inst.ApplyProperties(props); err != nil {
		timer.Stop("error")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rec.Configuration = inst.Properties()

	if err := m.store.Save(ctx, userID, contextName, set); err != nil {
		timer.Stop("error")
		return nil, err
	}

	m.logger.Info("Widget updated",
		zap.String("context", contextName),
		zap.String("alias", alias))
	m.publish(types.EventWidgetUpdated, userID, contextName, alias)

	timer.Stop("success")
	return inst, nil
}

// Resolve constructs the aliased widget without mutating anything. Callers
// use it to render a single widget or its property form.
func (m *Manager) Resolve(ctx context.Context, userID, contextName, alias string) (widget.ReportWidget, error) {
	set, err := m.store.Load(ctx, userID, contextName)
	if err != nil {
		return nil, err
	}

	rec, ok := set.Get(alias)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, alias)
	}

	inst, err := m.factory.Construct(rec.ClassName, rec.Configuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWidgetNotFound, alias, err)
	}
	return inst, nil
}

// SetOrders overwrites the sort order of each listed alias with the matching
// entry of orders. The slices are parallel and must be non-empty and equal
// length; every order must parse as an integer. Aliases missing from the
// container are ignored. The container persists once at the end.
func (m *Manager) SetOrders(ctx context.Context, userID, contextName string, aliases, orders []string) error {
	timer := monitoring.NewTimer(m.metrics, opReorder)

	if len(aliases) == 0 || len(orders) == 0 {
		timer.Stop("error")
		return fmt.Errorf("%w: aliases and orders are required", ErrInvalidInput)
	}
	if len(aliases) != len(orders) {
		timer.Stop("error")
		return fmt.Errorf("%w: %d aliases but %d orders", ErrInvalidInput, len(aliases), len(orders))
	}

	parsed := make([]int, len(orders))
	for i, raw := range orders {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			timer.Stop("error")
			return fmt.Errorf("%w: order %q is not an integer", ErrInvalidInput, raw)
		}
		parsed[i] = n
	}

	lock := m.locks.get(stripeKey(userID, contextName))
	lock.Lock()
	defer lock.Unlock()

	set, err := m.store.Load(ctx, userID, contextName)
	if err != nil {
		timer.Stop("error")
		return err
	}

	changed := 0
	for i, alias := range aliases {
		if rec, ok := set.Get(strings.TrimSpace(alias)); ok {
			rec.SortOrder = parsed[i]
			changed++
		}
	}

	if err := m.store.Save(ctx, userID, contextName, set); err != nil {
		timer.Stop("error")
		return err
	}

	m.logger.Info("Widget order updated",
		zap.String("context", contextName),
		zap.Int("changed", changed))
	m.publish(types.EventWidgetReordered, userID, contextName, "")

	timer.Stop("success")
	return nil
}

func (m *Manager) publish(eventType types.EventType, userID, contextName, alias string) {
	if m.events == nil {
		return
	}
	m.events.Publish(types.Event{
		ID:      id.NewEventID().String(),
		Type:    eventType,
		Context: contextName,
		User:    userID,
		Alias:   alias,
		At:      time.Now().UTC(),
	})
}

// nextAlias generates a fresh alias of the form
// report_container_<context>_<n>. The counter restarts at len+1 each call
// and walks upward past collisions, so suffixes freed by removals can recur
// in later gaps. Clients key on the alias string itself, which keeps this
// naming pattern load-bearing.
func nextAlias(set *types.RecordSet, contextName string) string {
	n := set.Len() + 1
	for {
		alias := fmt.Sprintf("%s%s_%d", aliasPrefix, contextName, n)
		if !set.Has(alias) {
			return alias
		}
		n++
	}
}
