package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// RenderAllocationChart renders a PNG pie chart of holdings by current value.
// Holdings with no value are left out.
func RenderAllocationChart(items []models.PortfolioItem) ([]byte, error) {
	values := make([]chart.Value, 0, len(items))
	for _, it := range items {
		if it.CurrentValue <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: it.CurrentValue,
			Label: fmt.Sprintf("%s %.0f", it.Ticker, it.CurrentValue),
		})
	}
	if len(values) == 0 {
		return nil, models.Validationf("portfolio has no holdings to chart")
	}

	pie := chart.PieChart{
		Title:  "Allocation",
		Width:  640,
		Height: 640,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}
	return buf.Bytes(), nil
}
