package interfaces

import (
	"context"
	"fmt"
	"time"
)

// OptionType distinguishes calls from puts
type OptionType string

const (
	OptionTypeCall OptionType = "Call"
	OptionTypePut  OptionType = "Put"
)

// PlotParameter is the contract field plotted against strike on the chain chart
type PlotParameter string

const (
	PlotLastPrice    PlotParameter = "lastPrice"
	PlotVolume       PlotParameter = "volume"
	PlotOpenInterest PlotParameter = "openInterest"
)

// PlotParameters lists the accepted plot parameters in display order
var PlotParameters = []PlotParameter{PlotLastPrice, PlotVolume, PlotOpenInterest}

// Valid reports whether p is one of the supported parameters
func (p PlotParameter) Valid() bool {
	for _, candidate := range PlotParameters {
		if p == candidate {
			return true
		}
	}
	return false
}

// HistoricalPeriod is the look-back window for price history
type HistoricalPeriod string

const (
	Period1Month  HistoricalPeriod = "1mo"
	Period6Months HistoricalPeriod = "6mo"
	Period1Year   HistoricalPeriod = "1y"
	Period5Years  HistoricalPeriod = "5y"
)

// HistoricalPeriods lists the accepted periods in display order
var HistoricalPeriods = []HistoricalPeriod{Period1Month, Period6Months, Period1Year, Period5Years}

// Valid reports whether p is one of the supported periods
func (p HistoricalPeriod) Valid() bool {
	for _, candidate := range HistoricalPeriods {
		if p == candidate {
			return true
		}
	}
	return false
}

// Start returns the beginning of the window ending at now
func (p HistoricalPeriod) Start(now time.Time) time.Time {
	switch p {
	case Period6Months:
		return now.AddDate(0, -6, 0)
	case Period1Year:
		return now.AddDate(-1, 0, 0)
	case Period5Years:
		return now.AddDate(-5, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// Interval returns the bar interval used for the period ("1d" or "1wk")
func (p HistoricalPeriod) Interval() string {
	if p == Period5Years {
		return "1wk"
	}
	return "1d"
}

// OptionContract represents a single option contract of a chain
type OptionContract struct {
	ContractSymbol string     `json:"contract_symbol"` // e.g. "AAPL240101C00100000"
	Type           OptionType `json:"type"`
	Strike         float64    `json:"strike"`
	LastPrice      float64    `json:"last_price"`
	Bid            float64    `json:"bid"`
	Ask            float64    `json:"ask"`
	Volume         int64      `json:"volume"`
	OpenInterest   int64      `json:"open_interest"`
}

// Value returns the contract field selected by the plot parameter
func (c OptionContract) Value(param PlotParameter) float64 {
	switch param {
	case PlotVolume:
		return float64(c.Volume)
	case PlotOpenInterest:
		return float64(c.OpenInterest)
	default:
		return c.LastPrice
	}
}

// OptionChain represents the calls and puts of one underlying for one expiration
type OptionChain struct {
	Ticker         string           `json:"ticker"`
	ExpirationDate time.Time        `json:"expiration_date"`
	Calls          []OptionContract `json:"calls"`
	Puts           []OptionContract `json:"puts"`
}

// NewOptionChain builds a chain, dropping any contract whose symbol was already seen.
// Calls are scanned before puts, so a duplicate symbol keeps its first occurrence.
func NewOptionChain(ticker string, expiration time.Time, calls, puts []OptionContract) *OptionChain {
	seen := make(map[string]struct{}, len(calls)+len(puts))
	keep := func(contracts []OptionContract, typ OptionType) []OptionContract {
		out := make([]OptionContract, 0, len(contracts))
		for _, contract := range contracts {
			if _, dup := seen[contract.ContractSymbol]; dup {
				continue
			}
			seen[contract.ContractSymbol] = struct{}{}
			contract.Type = typ
			out = append(out, contract)
		}
		return out
	}

	return &OptionChain{
		Ticker:         ticker,
		ExpirationDate: expiration,
		Calls:          keep(calls, OptionTypeCall),
		Puts:           keep(puts, OptionTypePut),
	}
}

// Len returns the number of contracts across calls and puts
func (c *OptionChain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Calls) + len(c.Puts)
}

// PricePoint is one bar of a historical series
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// HistoricalSeries is a date-ascending price history without duplicate dates
type HistoricalSeries struct {
	Symbol string           `json:"symbol"`
	Period HistoricalPeriod `json:"period"`
	Points []PricePoint     `json:"points"`
}

// RawPriceRow is a price row as delivered by an upstream that batches several
// symbols per request: every field may carry one value per symbol.
type RawPriceRow struct {
	Date   time.Time
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []int64
}

// Page limits which dashboard sections are built
type Page string

const (
	PageAll     Page = "all"
	PageChain   Page = "chain"
	PageHistory Page = "history"
)

// UserSelection is the complete input of one dashboard render
type UserSelection struct {
	Ticker                 string           `json:"ticker"`
	ExpirationDate         time.Time        `json:"expiration_date"`
	PlotParameter          PlotParameter    `json:"plot_parameter"`
	SelectedContractSymbol string           `json:"selected_contract_symbol,omitempty"`
	HistoricalPeriod       HistoricalPeriod `json:"historical_period"`
	Page                   Page             `json:"page"`
}

// WithDefaults returns a copy with empty fields filled in
func (s UserSelection) WithDefaults(parameter PlotParameter, period HistoricalPeriod) UserSelection {
	if s.PlotParameter == "" {
		s.PlotParameter = parameter
	}
	if s.HistoricalPeriod == "" {
		s.HistoricalPeriod = period
	}
	if s.Page == "" {
		s.Page = PageAll
	}
	return s
}

// WithExpiration returns a copy using the given expiration date
func (s UserSelection) WithExpiration(expiration time.Time) UserSelection {
	s.ExpirationDate = expiration
	return s
}

// WithContract returns a copy with the selected contract symbol set
func (s UserSelection) WithContract(symbol string) UserSelection {
	s.SelectedContractSymbol = symbol
	return s
}

// Validate checks the selection for values the services cannot serve
func (s UserSelection) Validate() error {
	if s.Ticker == "" {
		return NewValidationError("ticker", s.Ticker, "ticker is required")
	}
	if !s.PlotParameter.Valid() {
		return NewValidationError("parameter", s.PlotParameter, fmt.Sprintf("must be one of %v", PlotParameters))
	}
	if !s.HistoricalPeriod.Valid() {
		return NewValidationError("period", s.HistoricalPeriod, fmt.Sprintf("must be one of %v", HistoricalPeriods))
	}
	switch s.Page {
	case PageAll, PageChain, PageHistory:
	default:
		return NewValidationError("page", s.Page, "must be one of all, chain, history")
	}
	return nil
}

// OptionDataService resolves expirations, chains and spot prices for an underlying
type OptionDataService interface {
	ListExpirations(ctx context.Context, ticker string) ([]time.Time, error)
	GetOptionChain(ctx context.Context, ticker string, expiration time.Time) (*OptionChain, error)
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
}

// HistoryService fetches price history for a ticker or an option contract symbol
type HistoryService interface {
	GetHistoricalSeries(ctx context.Context, symbol string, period HistoricalPeriod) (*HistoricalSeries, error)
}
