package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"option-explorer/interfaces"
	"option-explorer/services"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OptionsController handles option chain and price history endpoints
type OptionsController struct {
	optionService  interfaces.OptionDataService
	historyService interfaces.HistoryService
	defaults       Defaults
	logger         *logrus.Logger
}

// NewOptionsController creates a new options controller
func NewOptionsController(
	options interfaces.OptionDataService,
	history interfaces.HistoryService,
	defaults Defaults,
	logger *logrus.Logger,
) *OptionsController {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &OptionsController{
		optionService:  options,
		historyService: history,
		defaults:       defaults,
		logger:         logger,
	}
}

// ChainResult is the chain endpoint payload
type ChainResult struct {
	Ticker           string                  `json:"ticker"`
	ExpirationDate   string                  `json:"expiration_date"`
	Parameter        string                  `json:"parameter"`
	Chain            *interfaces.OptionChain `json:"chain"`
	Chart            interfaces.ChartSpec    `json:"chart"`
	CallsTable       interfaces.TableSpec    `json:"calls_table"`
	PutsTable        interfaces.TableSpec    `json:"puts_table"`
	RankedTable      interfaces.TableSpec    `json:"ranked_table"`
	DefaultSelection string                  `json:"default_selection,omitempty"`
}

// HistoryResult is the history endpoint payload
type HistoryResult struct {
	Series       *interfaces.HistoricalSeries `json:"series"`
	PriceChart   interfaces.ChartSpec         `json:"price_chart"`
	VolumeChart  interfaces.ChartSpec         `json:"volume_chart"`
	OverlayChart interfaces.ChartSpec         `json:"overlay_chart"`
	Summary      *interfaces.SeriesSummary    `json:"summary"`
}

// GetChain fetches the chain for an expiration, defaulting to the nearest one
func (oc *OptionsController) GetChain(ctx context.Context, ticker string, expiration time.Time, parameter interfaces.PlotParameter) (*ChainResult, error) {
	if expiration.IsZero() {
		expirations, err := oc.optionService.ListExpirations(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if len(expirations) == 0 {
			return nil, interfaces.NewFetchError("expirations", ticker, fmt.Errorf("no listed expirations"))
		}
		expiration = expirations[0]
	}

	oc.logger.WithFields(logrus.Fields{
		"ticker":     ticker,
		"expiration": expiration.Format(dateLayout),
	}).Debug("Fetching option chain")

	chain, err := oc.optionService.GetOptionChain(ctx, ticker, expiration)
	if err != nil {
		return nil, err
	}

	ranked := services.CombineChain(chain)
	result := &ChainResult{
		Ticker:         ticker,
		ExpirationDate: expiration.Format(dateLayout),
		Parameter:      string(parameter),
		Chain:          chain,
		Chart:          services.BuildChainChart(chain, parameter),
		CallsTable:     services.BuildSortedTable("Calls (Sorted by Volume)", chain.Calls),
		PutsTable:      services.BuildSortedTable("Puts (Sorted by Volume)", chain.Puts),
		RankedTable:    services.BuildSortedTable("All Contracts (Sorted by Volume)", ranked),
	}
	if symbol, err := services.DefaultSelection(ranked); err == nil {
		result.DefaultSelection = symbol
	}

	return result, nil
}

// GetHistory fetches a price history and builds its charts and summary
func (oc *OptionsController) GetHistory(ctx context.Context, symbol string, period interfaces.HistoricalPeriod) (*HistoryResult, error) {
	series, err := oc.historyService.GetHistoricalSeries(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	priceChart, err := services.BuildPriceChart(series)
	if err != nil {
		return nil, err
	}
	volumeChart, err := services.BuildVolumeChart(series)
	if err != nil {
		return nil, err
	}
	overlayChart, err := services.BuildOverlayChart(series)
	if err != nil {
		return nil, err
	}
	summary, err := services.SummarizeSeries(series)
	if err != nil {
		return nil, err
	}

	return &HistoryResult{
		Series:       series,
		PriceChart:   priceChart,
		VolumeChart:  volumeChart,
		OverlayChart: overlayChart,
		Summary:      summary,
	}, nil
}

// HTTP Handlers

// HandleGetExpirations handles GET /api/v1/options/:ticker/expirations
func (oc *OptionsController) HandleGetExpirations(c *gin.Context) {
	ticker := normalizeSymbol(c.Param("ticker"))

	expirations, err := oc.optionService.ListExpirations(c.Request.Context(), ticker)
	if err != nil {
		respondError(c, "Failed to list expirations", err)
		return
	}

	dates := make([]string, len(expirations))
	for i, expiration := range expirations {
		dates[i] = expiration.Format(dateLayout)
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":      ticker,
		"expirations": dates,
		"count":       len(dates),
	})
}

// HandleGetPrice handles GET /api/v1/options/:ticker/price
func (oc *OptionsController) HandleGetPrice(c *gin.Context) {
	ticker := normalizeSymbol(c.Param("ticker"))

	price, err := oc.optionService.GetCurrentPrice(c.Request.Context(), ticker)
	if err != nil {
		respondError(c, "Failed to fetch current price", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":        ticker,
		"current_price": price,
	})
}

// HandleGetChain handles GET /api/v1/options/:ticker/chain
func (oc *OptionsController) HandleGetChain(c *gin.Context) {
	ticker := normalizeSymbol(c.Param("ticker"))

	expiration, err := parseExpiration(c.Query("expiration"))
	if err != nil {
		respondError(c, "Invalid request", err)
		return
	}
	parameter, err := parseParameter(c.Query("parameter"), oc.defaults.Parameter)
	if err != nil {
		respondError(c, "Invalid request", err)
		return
	}

	result, err := oc.GetChain(c.Request.Context(), ticker, expiration, parameter)
	if err != nil {
		respondError(c, "Failed to fetch option chain", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleGetTable handles GET /api/v1/options/:ticker/table, as JSON or CSV
func (oc *OptionsController) HandleGetTable(c *gin.Context) {
	ticker := normalizeSymbol(c.Param("ticker"))

	expiration, err := parseExpiration(c.Query("expiration"))
	if err != nil {
		respondError(c, "Invalid request", err)
		return
	}

	result, err := oc.GetChain(c.Request.Context(), ticker, expiration, oc.defaults.Parameter)
	if err != nil {
		respondError(c, "Failed to fetch option chain", err)
		return
	}

	table := result.RankedTable
	switch strings.ToLower(c.Query("type")) {
	case "", "all":
	case "call", "calls":
		table = result.CallsTable
	case "put", "puts":
		table = result.PutsTable
	default:
		respondError(c, "Invalid request", interfaces.NewValidationError("type", c.Query("type"), "must be one of all, calls, puts"))
		return
	}

	if strings.ToLower(c.Query("format")) != "csv" {
		c.JSON(http.StatusOK, table)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteTableCSV(table, &buf); err != nil {
		respondError(c, "Failed to encode table", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+ticker+"_"+result.ExpirationDate+".csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// HandleGetHistory handles GET /api/v1/history/:symbol
func (oc *OptionsController) HandleGetHistory(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))

	period, err := parsePeriod(c.Query("period"), oc.defaults.Period)
	if err != nil {
		respondError(c, "Invalid request", err)
		return
	}

	result, err := oc.GetHistory(c.Request.Context(), symbol, period)
	if err != nil {
		respondError(c, "Failed to fetch price history", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleChainChartPNG handles GET /api/v1/charts/chain.png?ticker=&expiration=&parameter=
func (oc *OptionsController) HandleChainChartPNG(c *gin.Context) {
	ticker := normalizeSymbol(c.Query("ticker"))
	if ticker == "" {
		ticker = oc.defaults.Ticker
	}

	expiration, err := parseExpiration(c.Query("expiration"))
	if err != nil {
		respondError(c, "Invalid request", err)
		return
	}
	parameter, err := parseParameter(c.Query("parameter"), oc.defaults.Parameter)
	if err != nil {
		respondError(c, "Invalid request", err)
		return
	}

	result, err := oc.GetChain(c.Request.Context(), ticker, expiration, parameter)
	if err != nil {
		respondError(c, "Failed to fetch option chain", err)
		return
	}
	if len(result.Chart.Series) == 0 {
		respondError(c, "Nothing to plot", &interfaces.NoDataError{Symbol: ticker})
		return
	}

	writePNG(c, result.Chart)
}

// HandleHistoryChartPNG serves the price, volume or overlay chart for ?symbol=&period=
func (oc *OptionsController) HandleHistoryChartPNG(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := normalizeSymbol(c.Query("symbol"))
		if symbol == "" {
			respondError(c, "Invalid request", interfaces.NewValidationError("symbol", "", "symbol is required"))
			return
		}

		period, err := parsePeriod(c.Query("period"), oc.defaults.Period)
		if err != nil {
			respondError(c, "Invalid request", err)
			return
		}

		result, err := oc.GetHistory(c.Request.Context(), symbol, period)
		if err != nil {
			respondError(c, "Failed to fetch price history", err)
			return
		}

		switch kind {
		case "volume":
			writePNG(c, result.VolumeChart)
		case "overlay":
			writePNG(c, result.OverlayChart)
		default:
			writePNG(c, result.PriceChart)
		}
	}
}

func writePNG(c *gin.Context, spec interfaces.ChartSpec) {
	var buf bytes.Buffer
	if err := services.RenderChartPNG(spec, &buf); err != nil {
		respondError(c, "Failed to render chart", err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
