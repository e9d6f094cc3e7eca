package services

import (
	"context"
	"option-explorer/interfaces"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dashboard section names used as keys of DashboardView.Errors
const (
	SectionExpirations = "expirations"
	SectionPrice       = "price"
	SectionChain       = "chain"
	SectionSelection   = "selection"
	SectionHistory     = "history"
)

// DashboardView is everything one dashboard render produces
type DashboardView struct {
	RequestID        string                    `json:"request_id"`
	Selection        interfaces.UserSelection  `json:"selection"`
	Expirations      []string                  `json:"expirations"`
	CurrentPrice     *float64                  `json:"current_price,omitempty"`
	ContractSymbols  []string                  `json:"contract_symbols,omitempty"` // ranked by volume
	SelectedContract string                    `json:"selected_contract,omitempty"`
	ChainChart       *interfaces.ChartSpec     `json:"chain_chart,omitempty"`
	CallsTable       *interfaces.TableSpec     `json:"calls_table,omitempty"`
	PutsTable        *interfaces.TableSpec     `json:"puts_table,omitempty"`
	RankedTable      *interfaces.TableSpec     `json:"ranked_table,omitempty"`
	PriceChart       *interfaces.ChartSpec     `json:"price_chart,omitempty"`
	VolumeChart      *interfaces.ChartSpec     `json:"volume_chart,omitempty"`
	OverlayChart     *interfaces.ChartSpec     `json:"overlay_chart,omitempty"`
	Summary          *interfaces.SeriesSummary `json:"summary,omitempty"`
	Errors           map[string]string         `json:"errors,omitempty"`
}

func (v *DashboardView) fail(section string, err error) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[section] = err.Error()
}

// DashboardService composes the resolver, the selection engine and the presentation
// adapter into one render per user selection
type DashboardService struct {
	options  interfaces.OptionDataService
	history  interfaces.HistoryService
	recorder interfaces.LookupRecorder // optional
	logger   *logrus.Logger
}

// NewDashboardService creates a new dashboard service. recorder may be nil.
func NewDashboardService(options interfaces.OptionDataService, history interfaces.HistoryService, recorder interfaces.LookupRecorder, logger *logrus.Logger) *DashboardService {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &DashboardService{
		options:  options,
		history:  history,
		recorder: recorder,
		logger:   logger,
	}
}

// Render fetches and lays out the dashboard for a validated selection. Fetches run
// one after another; a failing source is reported in View.Errors and only the
// sections that depend on it are left empty.
func (ds *DashboardService) Render(ctx context.Context, selection interfaces.UserSelection) *DashboardView {
	started := time.Now()
	view := &DashboardView{
		RequestID:   uuid.NewString(),
		Selection:   selection,
		Expirations: []string{},
	}

	log := ds.logger.WithFields(logrus.Fields{
		"request_id": view.RequestID,
		"ticker":     selection.Ticker,
	})

	expirations, err := ds.options.ListExpirations(ctx, selection.Ticker)
	if err != nil {
		log.WithError(err).Warn("Failed to list expirations")
		view.fail(SectionExpirations, err)
	}
	for _, expiration := range expirations {
		view.Expirations = append(view.Expirations, expiration.Format("2006-01-02"))
	}
	if selection.ExpirationDate.IsZero() && len(expirations) > 0 {
		selection = selection.WithExpiration(expirations[0])
		view.Selection = selection
	}

	price, err := ds.options.GetCurrentPrice(ctx, selection.Ticker)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch current price")
		view.fail(SectionPrice, err)
	} else {
		view.CurrentPrice = &price
	}

	var ranked []interfaces.OptionContract
	var chain *interfaces.OptionChain
	if !selection.ExpirationDate.IsZero() {
		chain, err = ds.options.GetOptionChain(ctx, selection.Ticker, selection.ExpirationDate)
		if err != nil {
			log.WithError(err).Warn("Failed to fetch option chain")
			view.fail(SectionChain, err)
		} else {
			ranked = CombineChain(chain)
			view.ContractSymbols = make([]string, len(ranked))
			for i, contract := range ranked {
				view.ContractSymbols[i] = contract.ContractSymbol
			}
		}
	}

	if chain != nil && selection.Page != interfaces.PageHistory {
		chainChart := BuildChainChart(chain, selection.PlotParameter)
		calls := BuildSortedTable("Calls (Sorted by Volume)", chain.Calls)
		puts := BuildSortedTable("Puts (Sorted by Volume)", chain.Puts)
		combined := BuildSortedTable("All Contracts (Sorted by Volume)", ranked)
		view.ChainChart = &chainChart
		view.CallsTable = &calls
		view.PutsTable = &puts
		view.RankedTable = &combined
	}

	if selection.Page != interfaces.PageChain {
		symbol, err := ResolveSelection(selection, ranked)
		if err != nil {
			// Without a contract there is nothing to chart; the chain sections stay.
			if chain != nil {
				view.fail(SectionSelection, err)
			}
		} else {
			view.SelectedContract = symbol
			view.Selection = view.Selection.WithContract(symbol)
			ds.renderHistory(ctx, view, symbol, selection.HistoricalPeriod, log)
		}
	}

	ds.record(view, chain, time.Since(started), log)
	return view
}

func (ds *DashboardService) renderHistory(ctx context.Context, view *DashboardView, symbol string, period interfaces.HistoricalPeriod, log *logrus.Entry) {
	series, err := ds.history.GetHistoricalSeries(ctx, symbol, period)
	if err != nil {
		log.WithError(err).WithField("symbol", symbol).Warn("Failed to fetch price history")
		view.fail(SectionHistory, err)
		return
	}

	priceChart, err := BuildPriceChart(series)
	if err != nil {
		view.fail(SectionHistory, err)
		return
	}
	volumeChart, _ := BuildVolumeChart(series)
	overlayChart, _ := BuildOverlayChart(series)
	summary, _ := SummarizeSeries(series)

	view.PriceChart = &priceChart
	view.VolumeChart = &volumeChart
	view.OverlayChart = &overlayChart
	view.Summary = summary
}

func (ds *DashboardService) record(view *DashboardView, chain *interfaces.OptionChain, elapsed time.Duration, log *logrus.Entry) {
	log.WithFields(logrus.Fields{
		"contracts": chain.Len(),
		"selected":  view.SelectedContract,
		"errors":    len(view.Errors),
		"elapsed":   elapsed.String(),
	}).Info("Dashboard rendered")

	if ds.recorder == nil {
		return
	}

	record := &interfaces.LookupRecord{
		RequestID:        view.RequestID,
		Ticker:           view.Selection.Ticker,
		ExpirationDate:   view.Selection.ExpirationDate,
		PlotParameter:    string(view.Selection.PlotParameter),
		Period:           string(view.Selection.HistoricalPeriod),
		Page:             string(view.Selection.Page),
		SelectedContract: view.SelectedContract,
		ContractCount:    chain.Len(),
		Errors:           view.Errors,
		Duration:         elapsed,
	}
	if view.CurrentPrice != nil {
		record.CurrentPrice = *view.CurrentPrice
	}

	if err := ds.recorder.SaveLookup(record); err != nil {
		log.WithError(err).Warn("Failed to journal lookup")
	}
}
