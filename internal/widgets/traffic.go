package widgets

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/reportdeck/backend/internal/domain/widget"
)

// ClassTraffic identifies the visits-over-time widget.
const ClassTraffic = "reportdeck/widgets/traffic"

// Traffic reports visit counts over a period with summary statistics.
type Traffic struct {
	widget.Base
	source SeriesSource
}

// NewTraffic creates a traffic widget reading from source.
func NewTraffic(source SeriesSource) *Traffic {
	w := &Traffic{source: source}
	w.Base = widget.NewBase([]widget.PropertyDef{
		{Name: "title", Params: map[string]interface{}{
			"label": "Title", "type": "text", "default": "Traffic",
		}},
		{Name: "period", Params: map[string]interface{}{
			"label": "Period", "type": "select", "default": PeriodWeek,
			"options": []interface{}{
				map[string]interface{}{"value": PeriodDay, "label": "Last day"},
				map[string]interface{}{"value": PeriodWeek, "label": "Last week"},
				map[string]interface{}{"value": PeriodMonth, "label": "Last month"},
			},
		}},
		{Name: "metric", Params: map[string]interface{}{
			"label": "Metric", "type": "select", "default": "visits",
			"options": []interface{}{
				map[string]interface{}{"value": "visits", "label": "Visits"},
				map[string]interface{}{"value": "unique", "label": "Unique visitors"},
				map[string]interface{}{"value": "views", "label": "Page views"},
			},
		}},
	})
	return w
}

// Render produces the series and its summary for the configured period.
func (w *Traffic) Render(ctx context.Context) (widget.Fragment, error) {
	period := w.StringProp("period", PeriodWeek)
	metric := w.StringProp("metric", "visits")

	series, err := w.source.Series(ctx, metric, period)
	if err != nil {
		return widget.Fragment{}, fmt.Errorf("traffic series: %w", err)
	}

	summary := map[string]interface{}{}
	if len(series) > 0 {
		summary["mean"] = stat.Mean(series, nil)
		summary["min"] = floats.Min(series)
		summary["max"] = floats.Max(series)
		summary["total"] = floats.Sum(series)
		if len(series) > 1 {
			summary["stdDev"] = stat.StdDev(series, nil)
		}
	}

	return widget.Fragment{
		Kind:  "traffic",
		Title: w.StringProp("title", "Traffic"),
		Data: map[string]interface{}{
			"period":  period,
			"metric":  metric,
			"series":  series,
			"summary": summary,
		},
	}, nil
}

// TrafficDefinition returns the registry entry.
func TrafficDefinition(source SeriesSource) widget.Definition {
	return widget.Definition{
		Class:       ClassTraffic,
		Title:       "Traffic",
		Description: "Visits over time with summary statistics",
		New:         func() widget.Widget { return NewTraffic(source) },
	}
}
