package services

import (
	"bytes"
	"testing"

	"option-explorer/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func renderPNG(t *testing.T, spec interfaces.ChartSpec) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RenderChartPNG(spec, &buf))
	return buf.Bytes()
}

func TestRenderChartPNG(t *testing.T) {
	series := sampleSeries(10)

	price, err := BuildPriceChart(series)
	require.NoError(t, err)
	volume, err := BuildVolumeChart(series)
	require.NoError(t, err)
	overlay, err := BuildOverlayChart(series)
	require.NoError(t, err)

	specs := map[string]interfaces.ChartSpec{
		"chain":   BuildChainChart(sampleChain(), interfaces.PlotVolume),
		"price":   price,
		"volume":  volume,
		"overlay": overlay,
	}

	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			data := renderPNG(t, spec)
			assert.True(t, bytes.HasPrefix(data, pngMagic))
		})
	}
}

func TestRenderChartPNGSinglePoint(t *testing.T) {
	series := sampleSeries(1)

	price, err := BuildPriceChart(series)
	require.NoError(t, err)
	overlay, err := BuildOverlayChart(series)
	require.NoError(t, err)
	volume, err := BuildVolumeChart(series)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(renderPNG(t, price), pngMagic))
	assert.True(t, bytes.HasPrefix(renderPNG(t, overlay), pngMagic))
	assert.True(t, bytes.HasPrefix(renderPNG(t, volume), pngMagic))
}

func TestBuildChartOverlayVolumeBars(t *testing.T) {
	overlay, err := BuildOverlayChart(sampleSeries(10))
	require.NoError(t, err)

	graph, err := buildChart(overlay)
	require.NoError(t, err)
	require.Len(t, graph.Series, 2)

	_, isLine := graph.Series[0].(chart.TimeSeries)
	assert.True(t, isLine, "close is drawn as a line")

	bars, isBars := graph.Series[1].(chart.HistogramSeries)
	require.True(t, isBars, "volume is drawn as bars")
	assert.Equal(t, chart.YAxisSecondary, bars.YAxis)
	assert.Equal(t, "Volume", bars.Name)

	require.NotNil(t, graph.YAxisSecondary.Range)
	assert.Equal(t, 0.0, graph.YAxisSecondary.Range.GetMin())
	assert.InDelta(t, 10000*1.05, graph.YAxisSecondary.Range.GetMax(), 1e-6)
	assert.Nil(t, graph.YAxis.Range, "close axis keeps its automatic range")
}

func TestRenderChartPNGEmpty(t *testing.T) {
	var buf bytes.Buffer

	err := RenderChartPNG(BuildChainChart(nil, interfaces.PlotVolume), &buf)

	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestBarGeometry(t *testing.T) {
	width, spacing := barGeometry(5)
	assert.Equal(t, 60, width)
	assert.Equal(t, 20, spacing)

	width, spacing = barGeometry(1000)
	assert.Equal(t, 1, width)
	assert.Equal(t, 1, spacing)

	width, spacing = barGeometry(0)
	assert.Positive(t, width)
	assert.Positive(t, spacing)
}
