// Package charts renders product performance as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"adreport/internal/report"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

const (
	width  = 860
	height = 480

	minDot = 4.0
	maxDot = 22.0
)

var gradeColors = map[report.Grade]drawing.Color{
	report.GradeGood: drawing.ColorFromHex("2e9e5b"),
	report.GradeWarn: drawing.ColorFromHex("e0a100"),
	report.GradeBad:  drawing.ColorFromHex("d64545"),
	report.GradeNone: chart.ColorAlternateGray,
}

func gradeColor(g report.Grade) drawing.Color {
	if c, ok := gradeColors[g]; ok {
		return c
	}
	return chart.ColorAlternateGray
}

// axisRange pads [0, max] so single points and all-zero data still render.
func axisRange(max float64) *chart.ContinuousRange {
	if max <= 0 {
		max = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: max * 1.1}
}

// Bubble plots spend (x) against sales (y) per product. Dot size follows
// clicks and colour follows the ROAS grade. A dashed line marks target ROAS.
func Bubble(w io.Writer, products []report.ProductRow, target float64) error {
	if len(products) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(products))
	ys := make([]float64, len(products))
	var maxX, maxY float64
	var maxClicks int64
	for i, p := range products {
		xs[i] = p.Metrics.Spend.InexactFloat64()
		ys[i] = p.Metrics.Sales.InexactFloat64()
		maxX = math.Max(maxX, xs[i])
		maxY = math.Max(maxY, ys[i])
		if p.Metrics.Clicks > maxClicks {
			maxClicks = p.Metrics.Clicks
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "products",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					if maxClicks == 0 {
						return minDot
					}
					share := float64(products[index].Metrics.Clicks) / float64(maxClicks)
					return minDot + (maxDot-minDot)*math.Sqrt(share)
				},
				DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
					return gradeColor(products[index].Grade).WithAlpha(200)
				},
			},
		},
	}

	xr := axisRange(maxX)
	if target > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("ROAS %.0f%%", target),
			XValues: []float64{0, xr.Max},
			YValues: []float64{0, xr.Max * target / 100},
			Style: chart.Style{
				StrokeColor:     chart.ColorAlternateGray,
				StrokeDashArray: []float64{5, 5},
				StrokeWidth:     1,
			},
		})
		maxY = math.Max(maxY, math.Min(xr.Max*target/100, maxY*1.5))
	}

	ch := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Spend", Range: xr, ValueFormatter: compact},
		YAxis:      chart.YAxis{Name: "Sales", Range: axisRange(maxY), ValueFormatter: compact},
		Series:     series,
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render bubble chart: %w", err)
	}
	return nil
}

// SpendBars plots the top products by spend. limit <= 0 plots all.
func SpendBars(w io.Writer, products []report.ProductRow, limit int) error {
	if len(products) == 0 {
		return ErrNoData
	}

	rows := append([]report.ProductRow(nil), products...)
	report.SortProducts(rows, report.SortSpend, true)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	bars := make([]chart.Value, len(rows))
	var maxV float64
	for i, p := range rows {
		v := p.Metrics.Spend.InexactFloat64()
		maxV = math.Max(maxV, v)
		bars[i] = chart.Value{
			Label: p.Label(),
			Value: v,
			Style: chart.Style{
				FillColor:   gradeColor(p.Grade),
				StrokeColor: gradeColor(p.Grade),
			},
		}
	}

	barWidth := (width - 120) / len(bars) * 2 / 3
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 8 {
		barWidth = 8
	}

	bc := chart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 10, Right: 10, Bottom: 10}},
		YAxis:      chart.YAxis{Range: axisRange(maxV), ValueFormatter: compact},
		Bars:       bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render spend chart: %w", err)
	}
	return nil
}

// compact formats axis values as 1.2K / 3.4M.
func compact(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	switch a := math.Abs(f); {
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	default:
		return fmt.Sprintf("%.0f", f)
	}
}
