package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"option-explorer/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOptions struct {
	expirations []time.Time
	expErr      error
	price       float64
	priceErr    error
	chain       *interfaces.OptionChain
	chainErr    error

	requestedExpiration time.Time
}

func (f *fakeOptions) ListExpirations(ctx context.Context, ticker string) ([]time.Time, error) {
	return f.expirations, f.expErr
}

func (f *fakeOptions) GetOptionChain(ctx context.Context, ticker string, expiration time.Time) (*interfaces.OptionChain, error) {
	f.requestedExpiration = expiration
	return f.chain, f.chainErr
}

func (f *fakeOptions) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	return f.price, f.priceErr
}

type fakeHistory struct {
	series   *interfaces.HistoricalSeries
	err      error
	requests []string
}

func (f *fakeHistory) GetHistoricalSeries(ctx context.Context, symbol string, period interfaces.HistoricalPeriod) (*interfaces.HistoricalSeries, error) {
	f.requests = append(f.requests, symbol)
	return f.series, f.err
}

type fakeRecorder struct {
	records []*interfaces.LookupRecord
	err     error
}

func (f *fakeRecorder) SaveLookup(record *interfaces.LookupRecord) error {
	f.records = append(f.records, record)
	return f.err
}

func (f *fakeRecorder) GetLookups(ticker string, limit int) ([]*interfaces.LookupRecord, error) {
	return f.records, nil
}

func healthyOptions() *fakeOptions {
	return &fakeOptions{
		expirations: []time.Time{day(1), day(8)},
		price:       185.5,
		chain:       sampleChain(),
	}
}

func baseSelection() interfaces.UserSelection {
	return interfaces.UserSelection{Ticker: "AAPL"}.WithDefaults(interfaces.PlotLastPrice, interfaces.Period1Month)
}

func TestDashboardRender(t *testing.T) {
	options := healthyOptions()
	history := &fakeHistory{series: sampleSeries(5)}
	recorder := &fakeRecorder{}
	ds := NewDashboardService(options, history, recorder, nil)

	view := ds.Render(context.Background(), baseSelection())

	assert.Empty(t, view.Errors)
	assert.NotEmpty(t, view.RequestID)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08"}, view.Expirations)
	assert.Equal(t, day(1), options.requestedExpiration, "first expiration is the default")
	assert.Equal(t, day(1), view.Selection.ExpirationDate)
	require.NotNil(t, view.CurrentPrice)
	assert.Equal(t, 185.5, *view.CurrentPrice)

	assert.Equal(t, []string{"AAPL240101C105", "AAPL240101P100", "AAPL240101C100"}, view.ContractSymbols)
	assert.Equal(t, "AAPL240101C105", view.SelectedContract)
	assert.Equal(t, "AAPL240101C105", view.Selection.SelectedContractSymbol)
	assert.Equal(t, []string{"AAPL240101C105"}, history.requests)

	require.NotNil(t, view.ChainChart)
	assert.Len(t, view.ChainChart.Series, 2)
	require.NotNil(t, view.CallsTable)
	assert.Len(t, view.CallsTable.Rows, 2)
	require.NotNil(t, view.PutsTable)
	assert.Len(t, view.PutsTable.Rows, 1)
	require.NotNil(t, view.RankedTable)
	assert.Len(t, view.RankedTable.Rows, 3)

	assert.NotNil(t, view.PriceChart)
	assert.NotNil(t, view.VolumeChart)
	assert.NotNil(t, view.OverlayChart)
	require.NotNil(t, view.Summary)
	assert.Equal(t, 5, view.Summary.Points)

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, view.RequestID, record.RequestID)
	assert.Equal(t, 3, record.ContractCount)
	assert.Equal(t, "AAPL240101C105", record.SelectedContract)
	assert.Equal(t, 185.5, record.CurrentPrice)
}

func TestDashboardRenderOverride(t *testing.T) {
	history := &fakeHistory{series: sampleSeries(3)}
	ds := NewDashboardService(healthyOptions(), history, nil, nil)

	selection := baseSelection().WithContract("AAPL240101P100").WithExpiration(day(8))
	view := ds.Render(context.Background(), selection)

	assert.Empty(t, view.Errors)
	assert.Equal(t, day(8), view.Selection.ExpirationDate)
	assert.Equal(t, "AAPL240101P100", view.SelectedContract)
	assert.Equal(t, []string{"AAPL240101P100"}, history.requests)
}

func TestDashboardHistoryFailureKeepsTables(t *testing.T) {
	history := &fakeHistory{err: interfaces.NewFetchError("history", "AAPL240101C105", errors.New("timeout"))}
	ds := NewDashboardService(healthyOptions(), history, nil, nil)

	view := ds.Render(context.Background(), baseSelection())

	assert.Contains(t, view.Errors, SectionHistory)
	assert.Len(t, view.Errors, 1)
	assert.NotNil(t, view.ChainChart)
	assert.NotNil(t, view.CallsTable)
	assert.NotNil(t, view.PutsTable)
	assert.Equal(t, "AAPL240101C105", view.SelectedContract)
	assert.Nil(t, view.PriceChart)
	assert.Nil(t, view.Summary)
}

func TestDashboardChainFailureKeepsPrice(t *testing.T) {
	options := healthyOptions()
	options.chain = nil
	options.chainErr = interfaces.NewFetchError("chain", "AAPL", errors.New("502 from upstream"))
	history := &fakeHistory{series: sampleSeries(3)}
	ds := NewDashboardService(options, history, nil, nil)

	view := ds.Render(context.Background(), baseSelection())

	assert.Contains(t, view.Errors, SectionChain)
	assert.NotContains(t, view.Errors, SectionSelection)
	require.NotNil(t, view.CurrentPrice)
	assert.Equal(t, 185.5, *view.CurrentPrice)
	assert.Nil(t, view.ChainChart)
	assert.Nil(t, view.CallsTable)
	assert.Empty(t, history.requests, "no contract to chart without a chain")
}

func TestDashboardPriceFailureKeepsChain(t *testing.T) {
	options := healthyOptions()
	options.priceErr = interfaces.NewFetchError("price", "AAPL", errors.New("price unavailable"))
	ds := NewDashboardService(options, &fakeHistory{series: sampleSeries(3)}, nil, nil)

	view := ds.Render(context.Background(), baseSelection())

	assert.Contains(t, view.Errors, SectionPrice)
	assert.Nil(t, view.CurrentPrice)
	assert.NotNil(t, view.ChainChart)
	assert.NotNil(t, view.PriceChart)
}

func TestDashboardEmptyChain(t *testing.T) {
	options := healthyOptions()
	options.chain = interfaces.NewOptionChain("AAPL", day(1), nil, nil)
	history := &fakeHistory{series: sampleSeries(3)}
	ds := NewDashboardService(options, history, nil, nil)

	view := ds.Render(context.Background(), baseSelection())

	require.NotNil(t, view.ChainChart)
	assert.Empty(t, view.ChainChart.Series)
	assert.Contains(t, view.Errors, SectionSelection)
	assert.Empty(t, view.SelectedContract)
	assert.Empty(t, history.requests)
}

func TestDashboardNoExpirations(t *testing.T) {
	options := healthyOptions()
	options.expirations = nil
	options.expErr = interfaces.NewFetchError("expirations", "ZZZZ", errors.New("no listed options"))
	ds := NewDashboardService(options, &fakeHistory{}, nil, nil)

	view := ds.Render(context.Background(), interfaces.UserSelection{Ticker: "ZZZZ"}.WithDefaults(interfaces.PlotVolume, interfaces.Period1Month))

	assert.Contains(t, view.Errors, SectionExpirations)
	assert.Empty(t, view.Expirations)
	assert.True(t, options.requestedExpiration.IsZero(), "chain is not fetched without an expiration")
	assert.NotNil(t, view.CurrentPrice)
}

func TestDashboardPages(t *testing.T) {
	t.Run("chain page skips history", func(t *testing.T) {
		history := &fakeHistory{series: sampleSeries(3)}
		ds := NewDashboardService(healthyOptions(), history, nil, nil)

		selection := baseSelection()
		selection.Page = interfaces.PageChain
		view := ds.Render(context.Background(), selection)

		assert.NotNil(t, view.CallsTable)
		assert.Nil(t, view.PriceChart)
		assert.Empty(t, history.requests)
	})

	t.Run("history page skips chain sections", func(t *testing.T) {
		history := &fakeHistory{series: sampleSeries(3)}
		ds := NewDashboardService(healthyOptions(), history, nil, nil)

		selection := baseSelection()
		selection.Page = interfaces.PageHistory
		view := ds.Render(context.Background(), selection)

		assert.Nil(t, view.ChainChart)
		assert.Nil(t, view.CallsTable)
		assert.NotNil(t, view.PriceChart)
		assert.Equal(t, []string{"AAPL240101C105"}, history.requests)
	})
}

func TestDashboardJournalFailureIsNotFatal(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("disk full")}
	ds := NewDashboardService(healthyOptions(), &fakeHistory{series: sampleSeries(3)}, recorder, nil)

	view := ds.Render(context.Background(), baseSelection())

	assert.Empty(t, view.Errors)
	assert.Len(t, recorder.records, 1)
}
