package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"option-explorer/interfaces"
	"sort"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAlpacaDataURL    = "https://data.alpaca.markets"
	DefaultAlpacaTradingURL = "https://paper-api.alpaca.markets"
)

// AlpacaOptionsDataService fetches option chains from Alpaca's REST endpoints and
// equity prices through the marketdata client
type AlpacaOptionsDataService struct {
	apiKey     string
	secretKey  string
	dataURL    string
	tradingURL string
	md         *marketdata.Client
	logger     *logrus.Logger
	client     *http.Client
}

// NewAlpacaOptionsDataService creates a new Alpaca options data service
func NewAlpacaOptionsDataService(apiKey, secretKey, dataURL, tradingURL string, timeout time.Duration, logger *logrus.Logger) *AlpacaOptionsDataService {
	if dataURL == "" {
		dataURL = DefaultAlpacaDataURL
	}
	if tradingURL == "" {
		tradingURL = DefaultAlpacaTradingURL
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	client := &http.Client{Timeout: timeout}

	return &AlpacaOptionsDataService{
		apiKey:     apiKey,
		secretKey:  secretKey,
		dataURL:    dataURL,
		tradingURL: tradingURL,
		md: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:     apiKey,
			APISecret:  secretKey,
			BaseURL:    dataURL,
			HTTPClient: client,
			// zero means the SDK default of 10; a negative limit turns retries off
			RetryLimit: -1,
		}),
		logger: logger,
		client: client,
	}
}

// AlpacaOptionContractsResponse represents the option contracts listing
type AlpacaOptionContractsResponse struct {
	OptionContracts []AlpacaOptionContract `json:"option_contracts"`
	NextPageToken   *string                `json:"next_page_token"`
}

// AlpacaOptionContract represents contract metadata; numeric fields arrive as strings
type AlpacaOptionContract struct {
	Symbol           string              `json:"symbol"`
	UnderlyingSymbol string              `json:"underlying_symbol"`
	ExpirationDate   string              `json:"expiration_date"`
	StrikePrice      decimal.Decimal     `json:"strike_price"`
	Type             string              `json:"type"` // "call" or "put"
	OpenInterest     decimal.NullDecimal `json:"open_interest"`
	ClosePrice       decimal.NullDecimal `json:"close_price"`
}

// AlpacaOptionSnapshotsResponse represents the option snapshots response
type AlpacaOptionSnapshotsResponse struct {
	Snapshots     map[string]AlpacaOptionSnapshot `json:"snapshots"`
	NextPageToken *string                         `json:"next_page_token"`
}

// AlpacaOptionSnapshot holds the latest trade, quote and daily bar of a contract
type AlpacaOptionSnapshot struct {
	LatestQuote *AlpacaQuote `json:"latestQuote"`
	LatestTrade *AlpacaTrade `json:"latestTrade"`
	DailyBar    *AlpacaBar   `json:"dailyBar"`
}

// AlpacaQuote represents quote data
type AlpacaQuote struct {
	Timestamp time.Time `json:"t"`
	BidPrice  float64   `json:"bp"`
	AskPrice  float64   `json:"ap"`
}

// AlpacaTrade represents trade data
type AlpacaTrade struct {
	Timestamp time.Time `json:"t"`
	Price     float64   `json:"p"`
	Size      int64     `json:"s"`
}

// AlpacaBar represents an aggregate bar
type AlpacaBar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    int64     `json:"v"`
}

// AlpacaOptionBarsResponse represents the multi-symbol option bars response
type AlpacaOptionBarsResponse struct {
	Bars          map[string][]AlpacaBar `json:"bars"`
	NextPageToken *string                `json:"next_page_token"`
}

// ListExpirations returns the distinct expiration dates of the active contracts
func (s *AlpacaOptionsDataService) ListExpirations(ctx context.Context, ticker string) ([]time.Time, error) {
	contracts, err := s.listContracts(ctx, ticker, time.Time{})
	if err != nil {
		return nil, interfaces.NewFetchError("expirations", ticker, err)
	}
	if len(contracts) == 0 {
		return nil, interfaces.NewFetchError("expirations", ticker, fmt.Errorf("no listed options"))
	}

	seen := make(map[string]struct{})
	dates := make([]time.Time, 0)
	for _, contract := range contracts {
		if _, ok := seen[contract.ExpirationDate]; ok {
			continue
		}
		expDate, err := time.Parse("2006-01-02", contract.ExpirationDate)
		if err != nil {
			continue
		}
		seen[contract.ExpirationDate] = struct{}{}
		dates = append(dates, expDate)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// GetOptionChain merges the contract listing (strike, type, open interest) with the
// latest snapshots (prices, volume) for one expiration
func (s *AlpacaOptionsDataService) GetOptionChain(ctx context.Context, ticker string, expiration time.Time) (*interfaces.OptionChain, error) {
	s.logger.WithFields(logrus.Fields{
		"underlying": ticker,
		"expiration": expiration.Format("2006-01-02"),
	}).Debug("Fetching option chain")

	contracts, err := s.listContracts(ctx, ticker, expiration)
	if err != nil {
		return nil, interfaces.NewFetchError("chain", ticker, err)
	}

	snapshots, err := s.getSnapshots(ctx, ticker, expiration)
	if err != nil {
		return nil, interfaces.NewFetchError("chain", ticker, err)
	}

	calls := make([]interfaces.OptionContract, 0)
	puts := make([]interfaces.OptionContract, 0)
	for _, alpacaContract := range contracts {
		contract := interfaces.OptionContract{
			ContractSymbol: alpacaContract.Symbol,
			Strike:         alpacaContract.StrikePrice.InexactFloat64(),
		}
		if alpacaContract.OpenInterest.Valid {
			contract.OpenInterest = alpacaContract.OpenInterest.Decimal.IntPart()
		}
		if alpacaContract.ClosePrice.Valid {
			contract.LastPrice = alpacaContract.ClosePrice.Decimal.InexactFloat64()
		}

		if snapshot, ok := snapshots[alpacaContract.Symbol]; ok {
			if snapshot.LatestTrade != nil {
				contract.LastPrice = snapshot.LatestTrade.Price
			}
			if snapshot.LatestQuote != nil {
				contract.Bid = snapshot.LatestQuote.BidPrice
				contract.Ask = snapshot.LatestQuote.AskPrice
			}
			if snapshot.DailyBar != nil {
				contract.Volume = snapshot.DailyBar.Volume
			}
		}

		if alpacaContract.Type == "put" {
			puts = append(puts, contract)
		} else {
			calls = append(calls, contract)
		}
	}

	sortByStrike(calls)
	sortByStrike(puts)

	chain := interfaces.NewOptionChain(ticker, expiration, calls, puts)
	s.logger.WithField("count", chain.Len()).Debug("Fetched option chain")
	return chain, nil
}

// GetCurrentPrice returns the price of the latest trade of the underlying
func (s *AlpacaOptionsDataService) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, interfaces.NewFetchError("price", ticker, err)
	}
	trade, err := s.md.GetLatestTrade(ticker, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return 0, interfaces.NewFetchError("price", ticker, err)
	}
	if trade == nil || trade.Price == 0 {
		return 0, interfaces.NewFetchError("price", ticker, fmt.Errorf("price unavailable"))
	}
	return trade.Price, nil
}

// GetHistoricalSeries returns daily (weekly for 5y) bars. Option contract symbols
// are read from the option bars endpoint, tickers through the marketdata client.
func (s *AlpacaOptionsDataService) GetHistoricalSeries(ctx context.Context, symbol string, period interfaces.HistoricalPeriod) (*interfaces.HistoricalSeries, error) {
	end := time.Now()
	start := period.Start(end)

	s.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"period": period,
	}).Debug("Fetching price history")

	var rows []interfaces.RawPriceRow
	if IsOptionSymbol(symbol) {
		bars, err := s.getOptionBars(ctx, symbol, period, start, end)
		if err != nil {
			return nil, interfaces.NewFetchError("history", symbol, err)
		}
		rows = alpacaRawRows(bars)
	} else {
		if err := ctx.Err(); err != nil {
			return nil, interfaces.NewFetchError("history", symbol, err)
		}
		timeframe := marketdata.OneDay
		if period.Interval() == "1wk" {
			timeframe = marketdata.NewTimeFrame(1, marketdata.Week)
		}
		bars, err := s.md.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: timeframe,
			Start:     start,
			End:       end,
		})
		if err != nil {
			return nil, interfaces.NewFetchError("history", symbol, err)
		}
		for _, bar := range bars {
			rows = append(rows, interfaces.RawPriceRow{
				Date:   bar.Timestamp,
				Open:   []float64{bar.Open},
				High:   []float64{bar.High},
				Low:    []float64{bar.Low},
				Close:  []float64{bar.Close},
				Volume: []int64{int64(bar.Volume)},
			})
		}
	}

	return NormalizeSeriesColumns(symbol, period, rows)
}

func (s *AlpacaOptionsDataService) listContracts(ctx context.Context, underlying string, expiration time.Time) ([]AlpacaOptionContract, error) {
	params := url.Values{}
	params.Set("underlying_symbols", underlying)
	params.Set("status", "active")
	params.Set("limit", "10000")
	if !expiration.IsZero() {
		params.Set("expiration_date", expiration.Format("2006-01-02"))
	}

	contracts := make([]AlpacaOptionContract, 0)
	for {
		var page AlpacaOptionContractsResponse
		if err := s.getJSON(ctx, s.tradingURL+"/v2/options/contracts?"+params.Encode(), &page); err != nil {
			return nil, err
		}
		contracts = append(contracts, page.OptionContracts...)

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		params.Set("page_token", *page.NextPageToken)
	}

	return contracts, nil
}

func (s *AlpacaOptionsDataService) getSnapshots(ctx context.Context, underlying string, expiration time.Time) (map[string]AlpacaOptionSnapshot, error) {
	params := url.Values{}
	params.Set("expiration_date", expiration.Format("2006-01-02"))
	params.Set("limit", "1000")

	snapshots := make(map[string]AlpacaOptionSnapshot)
	for {
		var page AlpacaOptionSnapshotsResponse
		endpoint := fmt.Sprintf("%s/v1beta1/options/snapshots/%s?%s", s.dataURL, url.PathEscape(underlying), params.Encode())
		if err := s.getJSON(ctx, endpoint, &page); err != nil {
			return nil, err
		}
		for symbol, snapshot := range page.Snapshots {
			snapshots[symbol] = snapshot
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		params.Set("page_token", *page.NextPageToken)
	}

	return snapshots, nil
}

func (s *AlpacaOptionsDataService) getOptionBars(ctx context.Context, symbol string, period interfaces.HistoricalPeriod, start, end time.Time) (map[string][]AlpacaBar, error) {
	timeframe := "1Day"
	if period.Interval() == "1wk" {
		timeframe = "1Week"
	}

	params := url.Values{}
	params.Set("symbols", symbol)
	params.Set("timeframe", timeframe)
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	params.Set("limit", "10000")

	bars := make(map[string][]AlpacaBar)
	for {
		var page AlpacaOptionBarsResponse
		if err := s.getJSON(ctx, s.dataURL+"/v1beta1/options/bars?"+params.Encode(), &page); err != nil {
			return nil, err
		}
		for sym, symBars := range page.Bars {
			bars[sym] = append(bars[sym], symBars...)
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		params.Set("page_token", *page.NextPageToken)
	}

	return bars, nil
}

func (s *AlpacaOptionsDataService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}

	req.Header.Set("APCA-API-KEY-ID", s.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// alpacaRawRows lines the per-symbol bar lists up by timestamp. The first symbol
// in key order contributes the first element of every field.
func alpacaRawRows(bars map[string][]AlpacaBar) []interfaces.RawPriceRow {
	symbols := make([]string, 0, len(bars))
	for symbol := range bars {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	index := make(map[time.Time]int)
	rows := make([]interfaces.RawPriceRow, 0)
	for _, symbol := range symbols {
		for _, bar := range bars[symbol] {
			i, ok := index[bar.Timestamp]
			if !ok {
				i = len(rows)
				index[bar.Timestamp] = i
				rows = append(rows, interfaces.RawPriceRow{Date: bar.Timestamp})
			}
			rows[i].Open = append(rows[i].Open, bar.Open)
			rows[i].High = append(rows[i].High, bar.High)
			rows[i].Low = append(rows[i].Low, bar.Low)
			rows[i].Close = append(rows[i].Close, bar.Close)
			rows[i].Volume = append(rows[i].Volume, bar.Volume)
		}
	}
	return rows
}

func sortByStrike(contracts []interfaces.OptionContract) {
	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].Strike < contracts[j].Strike
	})
}
