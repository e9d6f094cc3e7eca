package services

import (
	"fmt"
	"io"
	"math"
	"option-explorer/interfaces"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var seriesPalette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
}

// RenderChartPNG draws a ChartSpec as a PNG image. Bar series are drawn as
// histogram bars rising from zero on their axis.
func RenderChartPNG(spec interfaces.ChartSpec, w io.Writer) error {
	if len(spec.Series) == 0 {
		return fmt.Errorf("chart %q has no series", spec.Title)
	}

	if spec.Kind == interfaces.ChartBar && len(spec.Series) == 1 {
		return renderBarChart(spec, w)
	}

	graph, err := buildChart(spec)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// buildChart lays out line and bar series on a shared x axis with up to two y axes
func buildChart(spec interfaces.ChartSpec) (*chart.Chart, error) {
	graph := chart.Chart{
		Title:  spec.Title,
		Width:  1024,
		Height: 512,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{Name: spec.XLabel},
		YAxis: chart.YAxis{Name: spec.YLabel},
	}
	if spec.Y2Label != "" {
		graph.YAxisSecondary = chart.YAxis{Name: spec.Y2Label}
	}

	hasBars := map[chart.YAxisType]bool{}
	axisTop := map[chart.YAxisType]float64{}
	for i, series := range spec.Series {
		if len(series.Y) == 0 {
			continue
		}
		color := seriesPalette[i%len(seriesPalette)]
		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		}
		axis := chart.YAxisPrimary
		if series.Axis == interfaces.AxisSecondary {
			axis = chart.YAxisSecondary
		}
		axisTop[axis] = math.Max(axisTop[axis], maxValue(series.Y))

		if series.Kind == interfaces.SeriesBar {
			hasBars[axis] = true
			style.FillColor = color.WithAlpha(96)
			style.StrokeWidth = 1
		}

		var plotted chart.Series
		if len(series.Dates) > 0 {
			graph.XAxis.ValueFormatter = chart.TimeDateValueFormatter
			plotted = chart.TimeSeries{
				Name:    series.Name,
				XValues: series.Dates,
				YValues: series.Y,
				YAxis:   axis,
				Style:   style,
			}
		} else {
			plotted = chart.ContinuousSeries{
				Name:    series.Name,
				XValues: series.X,
				YValues: series.Y,
				YAxis:   axis,
				Style:   style,
			}
		}

		if series.Kind == interfaces.SeriesBar {
			plotted = chart.HistogramSeries{
				Name:        series.Name,
				Style:       style,
				YAxis:       axis,
				InnerSeries: plotted.(chart.ValuesProvider),
			}
		}
		graph.Series = append(graph.Series, plotted)
	}

	if len(graph.Series) == 0 {
		return nil, fmt.Errorf("chart %q has no points", spec.Title)
	}
	padFlatRanges(&graph, spec)

	// bars rise from zero, so their axis has to include it
	if hasBars[chart.YAxisPrimary] {
		graph.YAxis.Range = barRange(axisTop[chart.YAxisPrimary])
	}
	if hasBars[chart.YAxisSecondary] {
		graph.YAxisSecondary.Range = barRange(axisTop[chart.YAxisSecondary])
	}

	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return &graph, nil
}

func renderBarChart(spec interfaces.ChartSpec, w io.Writer) error {
	series := spec.Series[0]

	bars := make([]chart.Value, 0, len(series.Y))
	for i, value := range series.Y {
		label := ""
		if i < len(series.Dates) {
			label = series.Dates[i].Format("01-02")
		} else if i < len(series.X) {
			label = fmt.Sprintf("%g", series.X[i])
		}
		bars = append(bars, chart.Value{Value: value, Label: label})
	}

	graph := chart.BarChart{
		Title:  spec.Title,
		Width:  1024,
		Height: 512,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: barRange(maxValue(series.Y)),
		},
		Bars: bars,
	}
	graph.BarWidth, graph.BarSpacing = barGeometry(len(bars))

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}

// padFlatRanges widens any axis whose values are all equal; the renderer rejects
// zero-width ranges.
func padFlatRanges(graph *chart.Chart, spec interfaces.ChartSpec) {
	xs := newBounds()
	primary := newBounds()
	secondary := newBounds()

	for _, series := range spec.Series {
		if len(series.Y) == 0 {
			continue
		}
		for _, date := range series.Dates {
			xs.add(chart.TimeToFloat64(date))
		}
		for _, x := range series.X {
			xs.add(x)
		}
		ys := primary
		if series.Axis == interfaces.AxisSecondary {
			ys = secondary
		}
		for _, y := range series.Y {
			ys.add(y)
		}
	}

	if xs.flat() {
		pad := 1.0
		if graph.XAxis.ValueFormatter != nil {
			pad = float64(24 * time.Hour)
		}
		graph.XAxis.Range = &chart.ContinuousRange{Min: xs.min - pad, Max: xs.max + pad}
	}
	if primary.flat() {
		graph.YAxis.Range = primary.padded()
	}
	if secondary.flat() {
		graph.YAxisSecondary.Range = secondary.padded()
	}
}

func maxValue(values []float64) float64 {
	top := 0.0
	for _, value := range values {
		top = math.Max(top, value)
	}
	return top
}

func barRange(top float64) *chart.ContinuousRange {
	if top <= 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.05}
}

type bounds struct {
	min, max float64
	seen     bool
}

func newBounds() *bounds {
	return &bounds{min: math.Inf(1), max: math.Inf(-1)}
}

func (b *bounds) add(v float64) {
	b.seen = true
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

func (b *bounds) flat() bool {
	return b.seen && b.min == b.max
}

func (b *bounds) padded() *chart.ContinuousRange {
	pad := math.Max(math.Abs(b.min)*0.1, 1)
	return &chart.ContinuousRange{Min: b.min - pad, Max: b.max + pad}
}

// barGeometry splits roughly 900px of plot width between the bars
func barGeometry(count int) (width, spacing int) {
	if count <= 0 {
		return 10, 10
	}
	slot := 900 / count
	if slot > 80 {
		slot = 80
	}
	width = slot * 3 / 4
	if width < 1 {
		width = 1
	}
	spacing = slot - width
	if spacing < 1 {
		spacing = 1
	}
	return width, spacing
}
