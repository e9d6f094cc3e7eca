package interfaces

import (
	"time"
)

// ChartKind describes how a chart is drawn
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartBar     ChartKind = "bar"
	ChartOverlay ChartKind = "overlay"
)

// SeriesKind describes how a single series is drawn
type SeriesKind string

const (
	SeriesLine SeriesKind = "line"
	SeriesBar  SeriesKind = "bar"
)

// Axis selects the y axis a series is plotted against
type Axis string

const (
	AxisPrimary   Axis = "primary"
	AxisSecondary Axis = "secondary"
)

// ChartSeries is one plotted series. Exactly one of X and Dates is populated.
type ChartSeries struct {
	Name  string      `json:"name"`
	Kind  SeriesKind  `json:"kind"`
	Axis  Axis        `json:"axis"`
	X     []float64   `json:"x,omitempty"`
	Dates []time.Time `json:"dates,omitempty"`
	Y     []float64   `json:"y"`
}

// ChartSpec is a renderer-independent chart description
type ChartSpec struct {
	Title   string        `json:"title"`
	Kind    ChartKind     `json:"kind"`
	XLabel  string        `json:"x_label"`
	YLabel  string        `json:"y_label"`
	Y2Label string        `json:"y2_label,omitempty"`
	Series  []ChartSeries `json:"series"`
}

// ContractRow is one row of a contract table
type ContractRow struct {
	Rank           int     `json:"rank" csv:"rank"`
	ContractSymbol string  `json:"contract_symbol" csv:"contractSymbol"`
	Type           string  `json:"type" csv:"type"`
	Strike         float64 `json:"strike" csv:"strike"`
	LastPrice      float64 `json:"last_price" csv:"lastPrice"`
	Bid            float64 `json:"bid" csv:"bid"`
	Ask            float64 `json:"ask" csv:"ask"`
	Volume         int64   `json:"volume" csv:"volume"`
	OpenInterest   int64   `json:"open_interest" csv:"openInterest"`
}

// TableSpec is a renderer-independent contract table
type TableSpec struct {
	Title   string        `json:"title"`
	Columns []string      `json:"columns"`
	Rows    []ContractRow `json:"rows"`
}

// SeriesSummary holds headline statistics shown next to the history charts
type SeriesSummary struct {
	Symbol        string  `json:"symbol"`
	LastClose     float64 `json:"last_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	PeriodHigh    float64 `json:"period_high"`
	PeriodLow     float64 `json:"period_low"`
	AvgVolume     int64   `json:"avg_volume"`
	Volatility    float64 `json:"volatility_percent"` // std dev of bar-to-bar returns
	SMA20         float64 `json:"sma_20,omitempty"`
	Points        int     `json:"points"`
}

// LookupRecord is one journaled dashboard request
type LookupRecord struct {
	RequestID        string            `json:"request_id"`
	Ticker           string            `json:"ticker"`
	ExpirationDate   time.Time         `json:"expiration_date"`
	PlotParameter    string            `json:"plot_parameter"`
	Period           string            `json:"period"`
	Page             string            `json:"page"`
	SelectedContract string            `json:"selected_contract,omitempty"`
	ContractCount    int               `json:"contract_count"`
	CurrentPrice     float64           `json:"current_price"`
	Errors           map[string]string `json:"errors,omitempty"`
	Duration         time.Duration     `json:"duration_ns"`
	CreatedAt        time.Time         `json:"created_at"`
}

// LookupRecorder persists dashboard lookups for later auditing
type LookupRecorder interface {
	SaveLookup(record *LookupRecord) error
	GetLookups(ticker string, limit int) ([]*LookupRecord, error)
}
