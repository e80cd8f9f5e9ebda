// Package widgets holds the report widget providers that ship with the
// backend: traffic and sales analytics, operator notes, and an external
// headline feed. Each provider embeds widget.Base for property handling and
// registers one class with the widget registry.
package widgets

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
)

// Report periods shared by the analytics widgets.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// SeriesSource supplies the numeric series a report renders. The analytics
// widgets stay agnostic of where the numbers come from.
type SeriesSource interface {
	Series(ctx context.Context, metric, period string) ([]float64, error)
}

// Deps carries the shared collaborators of the providers. Zero fields fall
// back: Source to the built-in sample source, Logger to a no-op. A nil
// Fetcher leaves the feed widget rendering its disabled note.
type Deps struct {
	Source  SeriesSource
	Fetcher Fetcher
	Logger  *logging.Logger
}

// RegisterAll registers every shipped provider.
func RegisterAll(reg *widget.Registry, deps Deps) error {
	if deps.Source == nil {
		deps.Source = SampleSource{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}

	defs := []widget.Definition{
		TrafficDefinition(deps.Source),
		SalesDefinition(deps.Source),
		NotesDefinition(),
		FeedDefinition(deps.Fetcher, deps.Logger),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// periodPoints maps a period to its series length: hourly for a day, daily
// otherwise.
func periodPoints(period string) int {
	switch period {
	case PeriodDay:
		return 24
	case PeriodMonth:
		return 30
	default:
		return 7
	}
}

// SampleSource synthesizes a deterministic series per (metric, period).
// It stands in until an analytics backend is wired as the SeriesSource.
type SampleSource struct{}

// Series returns the synthetic series. The same arguments always produce
// the same values.
func (SampleSource) Series(_ context.Context, metric, period string) ([]float64, error) {
	points := periodPoints(period)

	h := fnv.New32a()
	h.Write([]byte(metric))
	phase := float64(h.Sum32()%360) * math.Pi / 180

	out := make([]float64, points)
	for i := range out {
		t := float64(i) * 2 * math.Pi / float64(points)
		base := 120 + 60*math.Sin(t+phase) + 15*math.Cos(3*t)
		out[i] = math.Round(base)
	}
	return out, nil
}
