package prefs

import (
	"context"
	"time"

	"github.com/reportdeck/backend/internal/infrastructure/monitoring"
)

// instrumented wraps a Store and records per-operation metrics.
type instrumented struct {
	inner   Store
	driver  string
	metrics *monitoring.Metrics
}

// WithMetrics decorates a store with operation metrics. A nil metrics
// collector returns the store unchanged.
func WithMetrics(s Store, driver string, m *monitoring.Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{inner: s, driver: driver, metrics: m}
}

func (i *instrumented) record(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	i.metrics.RecordStoreOp(i.driver, op, status, time.Since(start))
}

func (i *instrumented) Get(ctx context.Context, userID, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := i.inner.Get(ctx, userID, key)
	i.record("get", start, err)
	return value, ok, err
}

func (i *instrumented) Set(ctx context.Context, userID, key string, value []byte) error {
	start := time.Now()
	err := i.inner.Set(ctx, userID, key, value)
	i.record("set", start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, userID, key string) error {
	start := time.Now()
	err := i.inner.Delete(ctx, userID, key)
	i.record("delete", start, err)
	return err
}

func (i *instrumented) Close() error {
	return i.inner.Close()
}
