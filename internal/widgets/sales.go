package widgets

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/reportdeck/backend/internal/domain/widget"
)

// ClassSales identifies the revenue totals widget.
const ClassSales = "reportdeck/widgets/sales"

// Sales reports revenue over a period: raw amounts, running total, and the
// peak interval.
type Sales struct {
	widget.Base
	source SeriesSource
}

// NewSales creates a sales widget reading from source.
func NewSales(source SeriesSource) *Sales {
	w := &Sales{source: source}
	w.Base = widget.NewBase([]widget.PropertyDef{
		{Name: "title", Params: map[string]interface{}{
			"label": "Title", "type": "text", "default": "Sales",
		}},
		{Name: "period", Params: map[string]interface{}{
			"label": "Period", "type": "select", "default": PeriodWeek,
			"options": []interface{}{
				map[string]interface{}{"value": PeriodDay, "label": "Last day"},
				map[string]interface{}{"value": PeriodWeek, "label": "Last week"},
				map[string]interface{}{"value": PeriodMonth, "label": "Last month"},
			},
		}},
		{Name: "currency", Params: map[string]interface{}{
			"label": "Currency", "type": "text", "default": "USD",
		}},
	})
	return w
}

// Render produces the revenue amounts with cumulative totals.
func (w *Sales) Render(ctx context.Context) (widget.Fragment, error) {
	period := w.StringProp("period", PeriodWeek)

	amounts, err := w.source.Series(ctx, "revenue", period)
	if err != nil {
		return widget.Fragment{}, fmt.Errorf("sales series: %w", err)
	}

	data := map[string]interface{}{
		"period":   period,
		"currency": w.StringProp("currency", "USD"),
		"amounts":  amounts,
	}
	if len(amounts) > 0 {
		cumulative := make([]float64, len(amounts))
		floats.CumSum(cumulative, amounts)

		total := floats.Sum(amounts)
		peak := floats.MaxIdx(amounts)

		data["cumulative"] = cumulative
		data["total"] = total
		data["average"] = total / float64(len(amounts))
		data["peak"] = amounts[peak]
		data["peakIndex"] = peak
	}

	return widget.Fragment{
		Kind:  "sales",
		Title: w.StringProp("title", "Sales"),
		Data:  data,
	}, nil
}

// SalesDefinition returns the registry entry.
func SalesDefinition(source SeriesSource) widget.Definition {
	return widget.Definition{
		Class:       ClassSales,
		Title:       "Sales",
		Description: "Revenue totals and running sums",
		New:         func() widget.Widget { return NewSales(source) },
	}
}
