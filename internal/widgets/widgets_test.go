package widgets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/backend/internal/domain/widget"
)

// fixedSource returns a canned series and records the last request.
type fixedSource struct {
	series     []float64
	err        error
	lastMetric string
	lastPeriod string
}

func (s *fixedSource) Series(_ context.Context, metric, period string) ([]float64, error) {
	s.lastMetric = metric
	s.lastPeriod = period
	return s.series, s.err
}

func TestRegisterAll(t *testing.T) {
	reg := widget.NewRegistry()
	require.NoError(t, RegisterAll(reg, Deps{}))

	assert.Equal(t, []string{ClassFeed, ClassNotes, ClassSales, ClassTraffic}, reg.Classes())

	for _, class := range reg.Classes() {
		def, ok := reg.Resolve(class)
		require.True(t, ok)
		_, isReport := def.New().(widget.ReportWidget)
		assert.True(t, isReport, "%s must satisfy the report widget contract", class)
	}
}

func TestRegisterAllTwiceFails(t *testing.T) {
	reg := widget.NewRegistry()
	require.NoError(t, RegisterAll(reg, Deps{}))
	assert.Error(t, RegisterAll(reg, Deps{}))
}

func TestSampleSourceDeterministic(t *testing.T) {
	source := SampleSource{}
	ctx := context.Background()

	first, err := source.Series(ctx, "visits", PeriodWeek)
	require.NoError(t, err)
	second, err := source.Series(ctx, "visits", PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := source.Series(ctx, "revenue", PeriodWeek)
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "different metrics should differ")
}

func TestSampleSourcePeriodLengths(t *testing.T) {
	source := SampleSource{}
	ctx := context.Background()

	cases := map[string]int{
		PeriodDay:   24,
		PeriodWeek:  7,
		PeriodMonth: 30,
		"unknown":   7,
	}
	for period, points := range cases {
		series, err := source.Series(ctx, "visits", period)
		require.NoError(t, err)
		assert.Len(t, series, points, "period %s", period)
	}
}
