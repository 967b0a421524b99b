package simulation

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/foregonehq/foregone/internal/models"
)

// RenderChart runs the basket simulation and renders its graph as a PNG
// line chart. Two series: Investment Value (blue solid) and Total Spent
// (gray dashed). Returns raw PNG bytes.
func (s *Service) RenderChart(ctx context.Context, req *models.SimulationRequest) ([]byte, error) {
	result, err := s.SimulateBasket(ctx, req)
	if err != nil {
		return nil, err
	}
	return renderGraph(result.GraphData, result.Currency)
}

func renderGraph(points []models.GraphPoint, currency string) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]float64, len(points))
	valueY := make([]float64, len(points))
	spentY := make([]float64, len(points))

	for i, p := range points {
		xValues[i] = float64(i)
		valueY[i] = p.Value
		spentY[i] = p.Spent
	}

	labelEvery := len(points) / 8
	if labelEvery < 1 {
		labelEvery = 1
	}

	valueSeries := chart.ContinuousSeries{
		Name: "Investment Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	spentSeries := chart.ContinuousSeries{
		Name: "Total Spent",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: spentY,
	}

	graph := chart.Chart{
		Title:  "Spend vs Invest",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				i := int(f)
				if i < 0 || i >= len(points) || i%labelEvery != 0 {
					return ""
				}
				return points[i].Date.Format("Jan 06")
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%s %.0f", currency, f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			spentSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
