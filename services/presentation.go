package services

import (
	"fmt"
	"time"

	"option-explorer/interfaces"
)

// ContractColumns are the columns of every contract table, in order
var ContractColumns = []string{"rank", "contractSymbol", "type", "strike", "lastPrice", "bid", "ask", "volume", "openInterest"}

// BuildChainChart plots the chosen parameter against strike, one line for calls
// and one for puts. An empty side produces no series.
func BuildChainChart(chain *interfaces.OptionChain, parameter interfaces.PlotParameter) interfaces.ChartSpec {
	spec := interfaces.ChartSpec{
		Kind:   interfaces.ChartLine,
		XLabel: "Strike Price",
		YLabel: string(parameter),
		Series: []interfaces.ChartSeries{},
	}
	if chain == nil {
		spec.Title = fmt.Sprintf("Option Chain - %s", parameter)
		return spec
	}

	spec.Title = fmt.Sprintf("%s Option Chain (%s) - %s", chain.Ticker, chain.ExpirationDate.Format("2006-01-02"), parameter)

	for _, side := range []struct {
		name      string
		contracts []interfaces.OptionContract
	}{
		{string(interfaces.OptionTypeCall), chain.Calls},
		{string(interfaces.OptionTypePut), chain.Puts},
	} {
		if len(side.contracts) == 0 {
			continue
		}
		series := interfaces.ChartSeries{
			Name: side.name,
			Kind: interfaces.SeriesLine,
			Axis: interfaces.AxisPrimary,
			X:    make([]float64, len(side.contracts)),
			Y:    make([]float64, len(side.contracts)),
		}
		for i, contract := range side.contracts {
			series.X[i] = contract.Strike
			series.Y[i] = contract.Value(parameter)
		}
		spec.Series = append(spec.Series, series)
	}

	return spec
}

// BuildPriceChart plots open, high, low and close against date
func BuildPriceChart(series *interfaces.HistoricalSeries) (interfaces.ChartSpec, error) {
	if err := requirePoints(series); err != nil {
		return interfaces.ChartSpec{}, err
	}

	dates := seriesDates(series)
	lines := []struct {
		name  string
		field func(interfaces.PricePoint) float64
	}{
		{"Open", func(p interfaces.PricePoint) float64 { return p.Open }},
		{"High", func(p interfaces.PricePoint) float64 { return p.High }},
		{"Low", func(p interfaces.PricePoint) float64 { return p.Low }},
		{"Close", func(p interfaces.PricePoint) float64 { return p.Close }},
	}

	spec := interfaces.ChartSpec{
		Title:  fmt.Sprintf("%s Price History (%s)", series.Symbol, series.Period),
		Kind:   interfaces.ChartLine,
		XLabel: "Date",
		YLabel: "Price",
		Series: make([]interfaces.ChartSeries, 0, len(lines)),
	}
	for _, line := range lines {
		values := make([]float64, len(series.Points))
		for i, point := range series.Points {
			values[i] = line.field(point)
		}
		spec.Series = append(spec.Series, interfaces.ChartSeries{
			Name:  line.name,
			Kind:  interfaces.SeriesLine,
			Axis:  interfaces.AxisPrimary,
			Dates: dates,
			Y:     values,
		})
	}

	return spec, nil
}

// BuildVolumeChart plots traded volume per date as bars
func BuildVolumeChart(series *interfaces.HistoricalSeries) (interfaces.ChartSpec, error) {
	if err := requirePoints(series); err != nil {
		return interfaces.ChartSpec{}, err
	}

	return interfaces.ChartSpec{
		Title:  fmt.Sprintf("%s Volume (%s)", series.Symbol, series.Period),
		Kind:   interfaces.ChartBar,
		XLabel: "Date",
		YLabel: "Volume",
		Series: []interfaces.ChartSeries{volumeSeries(series, interfaces.AxisPrimary)},
	}, nil
}

// BuildOverlayChart plots the close on the primary axis and volume bars on the secondary axis
func BuildOverlayChart(series *interfaces.HistoricalSeries) (interfaces.ChartSpec, error) {
	if err := requirePoints(series); err != nil {
		return interfaces.ChartSpec{}, err
	}

	closes := make([]float64, len(series.Points))
	for i, point := range series.Points {
		closes[i] = point.Close
	}

	return interfaces.ChartSpec{
		Title:   fmt.Sprintf("%s Close and Volume (%s)", series.Symbol, series.Period),
		Kind:    interfaces.ChartOverlay,
		XLabel:  "Date",
		YLabel:  "Close",
		Y2Label: "Volume",
		Series: []interfaces.ChartSeries{
			{
				Name:  "Close",
				Kind:  interfaces.SeriesLine,
				Axis:  interfaces.AxisPrimary,
				Dates: seriesDates(series),
				Y:     closes,
			},
			volumeSeries(series, interfaces.AxisSecondary),
		},
	}, nil
}

// BuildSortedTable lays out the contracts as table rows ranked by volume
func BuildSortedTable(title string, contracts []interfaces.OptionContract) interfaces.TableSpec {
	ranked := RankByVolume(contracts)

	rows := make([]interfaces.ContractRow, len(ranked))
	for i, contract := range ranked {
		rows[i] = interfaces.ContractRow{
			Rank:           i + 1,
			ContractSymbol: contract.ContractSymbol,
			Type:           string(contract.Type),
			Strike:         contract.Strike,
			LastPrice:      contract.LastPrice,
			Bid:            contract.Bid,
			Ask:            contract.Ask,
			Volume:         contract.Volume,
			OpenInterest:   contract.OpenInterest,
		}
	}

	return interfaces.TableSpec{
		Title:   title,
		Columns: ContractColumns,
		Rows:    rows,
	}
}

func requirePoints(series *interfaces.HistoricalSeries) error {
	if series == nil {
		return &interfaces.NoDataError{}
	}
	if len(series.Points) == 0 {
		return &interfaces.NoDataError{Symbol: series.Symbol, Period: series.Period}
	}
	return nil
}

func seriesDates(series *interfaces.HistoricalSeries) []time.Time {
	dates := make([]time.Time, len(series.Points))
	for i, point := range series.Points {
		dates[i] = point.Date
	}
	return dates
}

func volumeSeries(series *interfaces.HistoricalSeries, axis interfaces.Axis) interfaces.ChartSeries {
	volumes := make([]float64, len(series.Points))
	for i, point := range series.Points {
		volumes[i] = float64(point.Volume)
	}
	return interfaces.ChartSeries{
		Name:  "Volume",
		Kind:  interfaces.SeriesBar,
		Axis:  axis,
		Dates: seriesDates(series),
		Y:     volumes,
	}
}
