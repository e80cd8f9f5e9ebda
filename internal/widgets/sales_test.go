package widgets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesRender(t *testing.T) {
	source := &fixedSource{series: []float64{10, 20, 30}}
	w := NewSales(source)
	require.NoError(t, w.SetProperty("currency", "EUR"))

	fragment, err := w.Render(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "sales", fragment.Kind)
	assert.Equal(t, "revenue", source.lastMetric)
	assert.Equal(t, "EUR", fragment.Data["currency"])

	assert.Equal(t, []float64{10, 30, 60}, fragment.Data["cumulative"])
	assert.InDelta(t, 60.0, fragment.Data["total"], 1e-9)
	assert.InDelta(t, 20.0, fragment.Data["average"], 1e-9)
	assert.InDelta(t, 30.0, fragment.Data["peak"], 1e-9)
	assert.Equal(t, 2, fragment.Data["peakIndex"])
}

func TestSalesRenderEmptySeries(t *testing.T) {
	fragment, err := NewSales(&fixedSource{}).Render(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, fragment.Data, "total")
	assert.NotContains(t, fragment.Data, "cumulative")
	assert.Contains(t, fragment.Data, "amounts")
}

func TestSalesRenderDefaults(t *testing.T) {
	source := &fixedSource{series: []float64{5}}
	fragment, err := NewSales(source).Render(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "USD", fragment.Data["currency"])
	assert.Equal(t, PeriodWeek, fragment.Data["period"])
	assert.Equal(t, "Sales", fragment.Title)
}
