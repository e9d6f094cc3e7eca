package services

import (
	"math"

	"option-explorer/interfaces"
)

// SummarizeSeries computes the headline statistics of a price history
func SummarizeSeries(series *interfaces.HistoricalSeries) (*interfaces.SeriesSummary, error) {
	if err := requirePoints(series); err != nil {
		return nil, err
	}

	points := series.Points
	latest := points[len(points)-1]
	summary := &interfaces.SeriesSummary{
		Symbol:     series.Symbol,
		LastClose:  latest.Close,
		PeriodHigh: points[0].High,
		PeriodLow:  points[0].Low,
		Points:     len(points),
	}

	// Change over the whole window
	first := points[0].Close
	summary.Change = latest.Close - first
	if first != 0 {
		summary.ChangePercent = (summary.Change / first) * 100
	}

	totalVolume := int64(0)
	for _, point := range points {
		totalVolume += point.Volume
		if point.High > summary.PeriodHigh {
			summary.PeriodHigh = point.High
		}
		if point.Low < summary.PeriodLow {
			summary.PeriodLow = point.Low
		}
	}
	summary.AvgVolume = totalVolume / int64(len(points))

	// Volatility (standard deviation of bar-to-bar returns)
	if len(points) > 1 {
		returns := make([]float64, 0, len(points)-1)
		for i := 1; i < len(points); i++ {
			if points[i-1].Close == 0 {
				continue
			}
			returns = append(returns, (points[i].Close-points[i-1].Close)/points[i-1].Close)
		}
		summary.Volatility = standardDeviation(returns) * 100
	}

	summary.SMA20 = CalculateSMA(points, 20)

	return summary, nil
}

// CalculateSMA calculates the simple moving average of the last period closes.
// It returns 0 when there are fewer points than the period.
func CalculateSMA(points []interfaces.PricePoint, period int) float64 {
	if period <= 0 || len(points) < period {
		return 0
	}

	sum := 0.0
	for i := len(points) - period; i < len(points); i++ {
		sum += points[i].Close
	}

	return sum / float64(period)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func standardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
