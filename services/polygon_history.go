package services

import (
	"context"
	"option-explorer/interfaces"
	"strings"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/sirupsen/logrus"
)

// PolygonHistoryService reads aggregate bars from Polygon
type PolygonHistoryService struct {
	client *polygon.Client
	logger *logrus.Logger
}

// NewPolygonHistoryService creates a new Polygon history service
func NewPolygonHistoryService(apiKey string, logger *logrus.Logger) *PolygonHistoryService {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &PolygonHistoryService{
		client: polygon.New(apiKey),
		logger: logger,
	}
}

// GetHistoricalSeries returns daily (weekly for 5y) aggregates for a ticker or option contract
func (s *PolygonHistoryService) GetHistoricalSeries(ctx context.Context, symbol string, period interfaces.HistoricalPeriod) (*interfaces.HistoricalSeries, error) {
	end := time.Now()
	start := period.Start(end)

	timespan := models.Day
	if period.Interval() == "1wk" {
		timespan = models.Week
	}

	params := models.ListAggsParams{
		Ticker:     polygonTicker(symbol),
		Multiplier: 1,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithOrder(models.Asc).WithAdjusted(true)

	s.logger.WithFields(logrus.Fields{
		"symbol": params.Ticker,
		"period": period,
	}).Debug("Fetching polygon aggregates")

	iter := s.client.ListAggs(ctx, params)

	var aggs []models.Agg
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}
	if err := iter.Err(); err != nil {
		return nil, interfaces.NewFetchError("history", symbol, err)
	}

	return NormalizeSeriesColumns(symbol, period, polygonRawRows(aggs))
}

// polygonTicker prefixes OCC option symbols with "O:" as Polygon expects
func polygonTicker(symbol string) string {
	if strings.HasPrefix(symbol, "O:") || !IsOptionSymbol(symbol) {
		return symbol
	}
	return "O:" + symbol
}

func polygonRawRows(aggs []models.Agg) []interfaces.RawPriceRow {
	rows := make([]interfaces.RawPriceRow, len(aggs))
	for i, agg := range aggs {
		rows[i] = interfaces.RawPriceRow{
			Date:   time.Time(agg.Timestamp).UTC(),
			Open:   []float64{agg.Open},
			High:   []float64{agg.High},
			Low:    []float64{agg.Low},
			Close:  []float64{agg.Close},
			Volume: []int64{int64(agg.Volume)},
		}
	}
	return rows
}
