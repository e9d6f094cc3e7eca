package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"option-explorer/interfaces"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultYahooOptionsURL = "https://query2.finance.yahoo.com"
	DefaultYahooChartURL   = "https://query1.finance.yahoo.com"
	DefaultYahooUserAgent  = "Mozilla/5.0 (compatible; option-explorer/1.0)"
)

// YahooOptionsDataService reads option chains, spot prices and price history from Yahoo Finance
type YahooOptionsDataService struct {
	optionsURL string
	chartURL   string
	userAgent  string
	logger     *logrus.Logger
	client     *http.Client
}

// NewYahooOptionsDataService creates a new Yahoo Finance data service
func NewYahooOptionsDataService(optionsURL, chartURL, userAgent string, timeout time.Duration, logger *logrus.Logger) *YahooOptionsDataService {
	if optionsURL == "" {
		optionsURL = DefaultYahooOptionsURL
	}
	if chartURL == "" {
		chartURL = DefaultYahooChartURL
	}
	if userAgent == "" {
		userAgent = DefaultYahooUserAgent
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &YahooOptionsDataService{
		optionsURL: optionsURL,
		chartURL:   chartURL,
		userAgent:  userAgent,
		logger:     logger,
		client:     &http.Client{Timeout: timeout},
	}
}

// YahooError is the error object embedded in Yahoo responses
type YahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// YahooOptionsResponse represents the v7 options response
type YahooOptionsResponse struct {
	OptionChain struct {
		Result []YahooOptionsResult `json:"result"`
		Error  *YahooError          `json:"error"`
	} `json:"optionChain"`
}

// YahooOptionsResult holds the expirations, quote and chain of one underlying
type YahooOptionsResult struct {
	UnderlyingSymbol string           `json:"underlyingSymbol"`
	ExpirationDates  []int64          `json:"expirationDates"`
	Quote            YahooQuote       `json:"quote"`
	Options          []YahooOptionSet `json:"options"`
}

// YahooQuote holds the underlying's quote fields we use
type YahooQuote struct {
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

// YahooOptionSet represents the calls and puts of one expiration
type YahooOptionSet struct {
	ExpirationDate int64                 `json:"expirationDate"`
	Calls          []YahooOptionContract `json:"calls"`
	Puts           []YahooOptionContract `json:"puts"`
}

// YahooOptionContract represents one contract row
type YahooOptionContract struct {
	ContractSymbol string  `json:"contractSymbol"`
	Strike         float64 `json:"strike"`
	LastPrice      float64 `json:"lastPrice"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Volume         int64   `json:"volume"`
	OpenInterest   int64   `json:"openInterest"`
}

// YahooChartResponse represents the v8 chart response
type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  *YahooError        `json:"error"`
	} `json:"chart"`
}

// YahooChartResult holds timestamps and the per-field quote blocks
type YahooChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []YahooChartQuote `json:"quote"`
	} `json:"indicators"`
}

// YahooChartQuote is one quote block; values are null for missing bars
type YahooChartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// ListExpirations returns the available expiration dates for the ticker
func (s *YahooOptionsDataService) ListExpirations(ctx context.Context, ticker string) ([]time.Time, error) {
	result, err := s.fetchOptions(ctx, "expirations", ticker, nil)
	if err != nil {
		return nil, err
	}

	if len(result.ExpirationDates) == 0 {
		return nil, interfaces.NewFetchError("expirations", ticker, fmt.Errorf("no listed options"))
	}

	dates := make([]time.Time, len(result.ExpirationDates))
	for i, ts := range result.ExpirationDates {
		dates[i] = time.Unix(ts, 0).UTC()
	}

	s.logger.WithFields(logrus.Fields{
		"ticker": ticker,
		"count":  len(dates),
	}).Debug("Fetched expirations")
	return dates, nil
}

// GetOptionChain returns the calls and puts expiring on the given date
func (s *YahooOptionsDataService) GetOptionChain(ctx context.Context, ticker string, expiration time.Time) (*interfaces.OptionChain, error) {
	s.logger.WithFields(logrus.Fields{
		"ticker":     ticker,
		"expiration": expiration.Format("2006-01-02"),
	}).Debug("Fetching option chain")

	params := url.Values{}
	params.Set("date", strconv.FormatInt(expiration.Unix(), 10))

	result, err := s.fetchOptions(ctx, "chain", ticker, params)
	if err != nil {
		return nil, err
	}

	if len(result.Options) == 0 {
		return interfaces.NewOptionChain(ticker, expiration, nil, nil), nil
	}

	set := result.Options[0]
	chain := interfaces.NewOptionChain(ticker, expiration, convertYahooContracts(set.Calls), convertYahooContracts(set.Puts))

	s.logger.WithField("count", chain.Len()).Debug("Fetched option chain")
	return chain, nil
}

// GetCurrentPrice returns the regular market price of the underlying
func (s *YahooOptionsDataService) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	result, err := s.fetchOptions(ctx, "price", ticker, nil)
	if err != nil {
		return 0, err
	}

	if result.Quote.RegularMarketPrice == nil {
		return 0, interfaces.NewFetchError("price", ticker, fmt.Errorf("price unavailable"))
	}

	return *result.Quote.RegularMarketPrice, nil
}

// GetHistoricalSeries returns the price history of a ticker or option contract
func (s *YahooOptionsDataService) GetHistoricalSeries(ctx context.Context, symbol string, period interfaces.HistoricalPeriod) (*interfaces.HistoricalSeries, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", s.chartURL, url.PathEscape(symbol))
	params := url.Values{}
	params.Set("range", string(period))
	params.Set("interval", period.Interval())

	s.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"period": period,
	}).Debug("Fetching price history")

	var chartResp YahooChartResponse
	if err := s.getJSON(ctx, endpoint+"?"+params.Encode(), &chartResp); err != nil {
		return nil, interfaces.NewFetchError("history", symbol, err)
	}

	if chartResp.Chart.Error != nil {
		return nil, interfaces.NewFetchError("history", symbol, fmt.Errorf("%s: %s", chartResp.Chart.Error.Code, chartResp.Chart.Error.Description))
	}

	if len(chartResp.Chart.Result) == 0 {
		return nil, &interfaces.NoDataError{Symbol: symbol, Period: period}
	}

	return NormalizeSeriesColumns(symbol, period, yahooRawRows(chartResp.Chart.Result[0]))
}

func (s *YahooOptionsDataService) fetchOptions(ctx context.Context, op, ticker string, params url.Values) (*YahooOptionsResult, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/options/%s", s.optionsURL, url.PathEscape(ticker))
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var optionsResp YahooOptionsResponse
	if err := s.getJSON(ctx, endpoint, &optionsResp); err != nil {
		return nil, interfaces.NewFetchError(op, ticker, err)
	}

	if optionsResp.OptionChain.Error != nil {
		return nil, interfaces.NewFetchError(op, ticker, fmt.Errorf("%s: %s", optionsResp.OptionChain.Error.Code, optionsResp.OptionChain.Error.Description))
	}

	if len(optionsResp.OptionChain.Result) == 0 {
		return nil, interfaces.NewFetchError(op, ticker, fmt.Errorf("unknown ticker"))
	}

	return &optionsResp.OptionChain.Result[0], nil
}

func (s *YahooOptionsDataService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

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

func convertYahooContracts(rows []YahooOptionContract) []interfaces.OptionContract {
	contracts := make([]interfaces.OptionContract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, interfaces.OptionContract{
			ContractSymbol: row.ContractSymbol,
			Strike:         row.Strike,
			LastPrice:      row.LastPrice,
			Bid:            row.Bid,
			Ask:            row.Ask,
			Volume:         row.Volume,
			OpenInterest:   row.OpenInterest,
		})
	}
	return contracts
}

// yahooRawRows turns the column-oriented chart payload into rows, one value per
// quote block for every field. Blocks are read in order and reading stops at the
// first block with a null field, so element k of every field comes from block k.
// A null in the first block leaves the row empty.
func yahooRawRows(result YahooChartResult) []interfaces.RawPriceRow {
	rows := make([]interfaces.RawPriceRow, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		row := interfaces.RawPriceRow{Date: time.Unix(ts, 0).UTC()}
		for _, quote := range result.Indicators.Quote {
			open, okOpen := floatAt(quote.Open, i)
			high, okHigh := floatAt(quote.High, i)
			low, okLow := floatAt(quote.Low, i)
			closePrice, okClose := floatAt(quote.Close, i)
			if !okOpen || !okHigh || !okLow || !okClose || i >= len(quote.Volume) || quote.Volume[i] == nil {
				break
			}
			row.Open = append(row.Open, open)
			row.High = append(row.High, high)
			row.Low = append(row.Low, low)
			row.Close = append(row.Close, closePrice)
			row.Volume = append(row.Volume, *quote.Volume[i])
		}
		rows[i] = row
	}
	return rows
}

func floatAt(column []*float64, i int) (float64, bool) {
	if i < len(column) && column[i] != nil {
		return *column[i], true
	}
	return 0, false
}
