package services

import (
	"testing"
	"time"

	"option-explorer/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contract(symbol string, typ interfaces.OptionType, strike float64, volume int64) interfaces.OptionContract {
	return interfaces.OptionContract{
		ContractSymbol: symbol,
		Type:           typ,
		Strike:         strike,
		LastPrice:      strike / 20,
		Volume:         volume,
		OpenInterest:   volume * 3,
	}
}

func sampleChain() *interfaces.OptionChain {
	return interfaces.NewOptionChain("AAPL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		[]interfaces.OptionContract{
			contract("AAPL240101C100", interfaces.OptionTypeCall, 100, 50),
			contract("AAPL240101C105", interfaces.OptionTypeCall, 105, 200),
		},
		[]interfaces.OptionContract{
			contract("AAPL240101P100", interfaces.OptionTypePut, 100, 75),
		},
	)
}

func symbols(contracts []interfaces.OptionContract) []string {
	out := make([]string, len(contracts))
	for i, c := range contracts {
		out[i] = c.ContractSymbol
	}
	return out
}

func TestRankByVolumeOrdersDescending(t *testing.T) {
	ranked := CombineChain(sampleChain())

	assert.Equal(t, []string{"AAPL240101C105", "AAPL240101P100", "AAPL240101C100"}, symbols(ranked))

	symbol, err := DefaultSelection(ranked)
	require.NoError(t, err)
	assert.Equal(t, "AAPL240101C105", symbol)
}

func TestRankByVolumeKeepsInputOrderOnTies(t *testing.T) {
	input := []interfaces.OptionContract{
		contract("A", interfaces.OptionTypeCall, 1, 10),
		contract("B", interfaces.OptionTypeCall, 2, 30),
		contract("C", interfaces.OptionTypePut, 3, 10),
		contract("D", interfaces.OptionTypePut, 4, 30),
	}

	ranked := RankByVolume(input)

	assert.Equal(t, []string{"B", "D", "A", "C"}, symbols(ranked))
	assert.Equal(t, []string{"A", "B", "C", "D"}, symbols(input), "input must not be reordered")
}

func TestRankByVolumeIsPermutation(t *testing.T) {
	input := []interfaces.OptionContract{
		contract("X1", interfaces.OptionTypeCall, 1, 0),
		contract("X2", interfaces.OptionTypeCall, 2, 7),
		contract("X3", interfaces.OptionTypePut, 3, 3),
		contract("X4", interfaces.OptionTypePut, 4, 7),
		contract("X5", interfaces.OptionTypePut, 5, 1),
	}

	ranked := RankByVolume(input)

	require.Len(t, ranked, len(input))
	assert.ElementsMatch(t, symbols(input), symbols(ranked))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Volume, ranked[i].Volume)
	}
}

func TestRankByVolumeEmpty(t *testing.T) {
	assert.Empty(t, RankByVolume(nil))
	assert.Empty(t, CombineChain(nil))
}

func TestDefaultSelectionEmpty(t *testing.T) {
	_, err := DefaultSelection(nil)

	require.Error(t, err)
	assert.True(t, interfaces.IsEmptySelection(err))
}

func TestCombineChainPutsAfterCallsOnTies(t *testing.T) {
	chain := interfaces.NewOptionChain("XYZ", time.Now(),
		[]interfaces.OptionContract{contract("XYZ-C", "", 10, 5)},
		[]interfaces.OptionContract{contract("XYZ-P", "", 10, 5)},
	)

	ranked := CombineChain(chain)

	assert.Equal(t, []string{"XYZ-C", "XYZ-P"}, symbols(ranked))
	assert.Equal(t, interfaces.OptionTypeCall, ranked[0].Type)
	assert.Equal(t, interfaces.OptionTypePut, ranked[1].Type)
}

func TestNewOptionChainDropsDuplicateSymbols(t *testing.T) {
	chain := interfaces.NewOptionChain("XYZ", time.Now(),
		[]interfaces.OptionContract{
			contract("DUP", "", 10, 1),
			contract("DUP", "", 11, 2),
		},
		[]interfaces.OptionContract{contract("DUP", "", 12, 3)},
	)

	require.Equal(t, 1, chain.Len())
	assert.Equal(t, 10.0, chain.Calls[0].Strike)
	assert.Empty(t, chain.Puts)
}

func TestResolveSelection(t *testing.T) {
	ranked := CombineChain(sampleChain())

	t.Run("default when no override", func(t *testing.T) {
		symbol, err := ResolveSelection(interfaces.UserSelection{Ticker: "AAPL"}, ranked)
		require.NoError(t, err)
		assert.Equal(t, "AAPL240101C105", symbol)
	})

	t.Run("override wins", func(t *testing.T) {
		selection := interfaces.UserSelection{Ticker: "AAPL"}.WithContract("AAPL240101P100")
		symbol, err := ResolveSelection(selection, ranked)
		require.NoError(t, err)
		assert.Equal(t, "AAPL240101P100", symbol)
	})

	t.Run("override accepted on an empty chain", func(t *testing.T) {
		selection := interfaces.UserSelection{Ticker: "AAPL"}.WithContract("AAPL240101C110")
		symbol, err := ResolveSelection(selection, nil)
		require.NoError(t, err)
		assert.Equal(t, "AAPL240101C110", symbol)
	})

	t.Run("empty chain without override", func(t *testing.T) {
		_, err := ResolveSelection(interfaces.UserSelection{Ticker: "AAPL"}, nil)
		assert.True(t, interfaces.IsEmptySelection(err))
	})
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeSeriesColumnsTakesFirstElement(t *testing.T) {
	rows := []interfaces.RawPriceRow{
		{Date: day(2), Open: []float64{11, 99}, High: []float64{12, 99}, Low: []float64{10, 99}, Close: []float64{11.5, 99}, Volume: []int64{1100, 9}},
		{Date: day(1), Open: []float64{10}, High: []float64{11}, Low: []float64{9}, Close: []float64{10.5}, Volume: []int64{1000}},
	}

	series, err := NormalizeSeriesColumns("AAPL", interfaces.Period1Month, rows)

	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, day(1), series.Points[0].Date)
	assert.Equal(t, interfaces.PricePoint{Date: day(2), Open: 11, High: 12, Low: 10, Close: 11.5, Volume: 1100}, series.Points[1])
	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, interfaces.Period1Month, series.Period)
}

func TestNormalizeSeriesColumnsDropsEmptyAndDuplicateRows(t *testing.T) {
	rows := []interfaces.RawPriceRow{
		{Date: day(3), Open: []float64{3}, High: []float64{3}, Low: []float64{3}, Close: []float64{3}, Volume: []int64{3}},
		{Date: day(2), Open: []float64{2}, High: []float64{2}, Low: []float64{2}, Close: nil, Volume: []int64{2}},
		{Date: day(3), Open: []float64{30}, High: []float64{30}, Low: []float64{30}, Close: []float64{30}, Volume: []int64{30}},
		{Date: day(1), Open: []float64{1}, High: []float64{1}, Low: []float64{1}, Close: []float64{1}, Volume: []int64{1}},
	}

	series, err := NormalizeSeriesColumns("AAPL", interfaces.Period1Month, rows)

	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, day(1), series.Points[0].Date)
	assert.Equal(t, day(3), series.Points[1].Date)
	assert.Equal(t, 3.0, series.Points[1].Close, "first row of a repeated date wins")
}

func TestNormalizeSeriesColumnsOnePointPerCalendarDay(t *testing.T) {
	daily := time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC)
	live := time.Date(2024, 1, 3, 17, 45, 0, 0, time.UTC)
	rows := []interfaces.RawPriceRow{
		{Date: live, Open: []float64{2}, High: []float64{2.2}, Low: []float64{1.9}, Close: []float64{2.1}, Volume: []int64{40}},
		{Date: day(2).Add(14*time.Hour + 30*time.Minute), Open: []float64{1}, High: []float64{1}, Low: []float64{1}, Close: []float64{1}, Volume: []int64{10}},
		{Date: daily, Open: []float64{2}, High: []float64{2}, Low: []float64{2}, Close: []float64{2}, Volume: []int64{20}},
	}

	series, err := NormalizeSeriesColumns("AAPL", interfaces.Period1Month, rows)

	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, daily, series.Points[1].Date)
	assert.Equal(t, 2.0, series.Points[1].Close)
	dates := map[string]bool{}
	for _, point := range series.Points {
		key := point.Date.Format("2006-01-02")
		assert.False(t, dates[key], "duplicate date %s", key)
		dates[key] = true
	}
}

func TestNormalizeSeriesColumnsNoData(t *testing.T) {
	_, err := NormalizeSeriesColumns("AAPL", interfaces.Period1Year, nil)
	require.Error(t, err)
	assert.True(t, interfaces.IsNoData(err))

	_, err = NormalizeSeriesColumns("AAPL", interfaces.Period1Year, []interfaces.RawPriceRow{{Date: day(1)}})
	assert.True(t, interfaces.IsNoData(err))
}
