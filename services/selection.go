package services

import (
	"sort"

	"option-explorer/interfaces"
)

// RankByVolume returns the contracts ordered by descending volume.
// Contracts with equal volume keep their input order. The input slice is not modified.
func RankByVolume(contracts []interfaces.OptionContract) []interfaces.OptionContract {
	ranked := make([]interfaces.OptionContract, len(contracts))
	copy(ranked, contracts)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Volume > ranked[j].Volume
	})

	return ranked
}

// DefaultSelection returns the symbol of the highest-volume contract of a ranked list
func DefaultSelection(ranked []interfaces.OptionContract) (string, error) {
	if len(ranked) == 0 {
		return "", &interfaces.EmptySelectionError{}
	}
	return ranked[0].ContractSymbol, nil
}

// CombineChain merges calls and puts (calls first) and ranks the union by volume
func CombineChain(chain *interfaces.OptionChain) []interfaces.OptionContract {
	if chain == nil {
		return []interfaces.OptionContract{}
	}

	combined := make([]interfaces.OptionContract, 0, chain.Len())
	combined = append(combined, chain.Calls...)
	combined = append(combined, chain.Puts...)

	return RankByVolume(combined)
}

// ResolveSelection returns the contract symbol to chart: the user's override when
// present, otherwise the default selection of the ranked contracts.
func ResolveSelection(selection interfaces.UserSelection, ranked []interfaces.OptionContract) (string, error) {
	if selection.SelectedContractSymbol != "" {
		return selection.SelectedContractSymbol, nil
	}
	return DefaultSelection(ranked)
}

// NormalizeSeriesColumns flattens rows whose fields may hold several values into a
// HistoricalSeries by keeping the first value of every field.
//
// Upstreams that batch several symbols in one request return one value per symbol
// for each field. Taking the first element assumes the first value belongs to the
// requested symbol; that is observed upstream behaviour, not a guarantee, and any
// further values are discarded. Rows with an empty field are dropped, the result is
// sorted by date and only the first row of a calendar day is kept, so an intraday
// bar stamped later on the same day as a daily bar is dropped.
func NormalizeSeriesColumns(symbol string, period interfaces.HistoricalPeriod, rows []interfaces.RawPriceRow) (*interfaces.HistoricalSeries, error) {
	points := make([]interfaces.PricePoint, 0, len(rows))

	for _, row := range rows {
		if len(row.Open) == 0 || len(row.High) == 0 || len(row.Low) == 0 || len(row.Close) == 0 || len(row.Volume) == 0 {
			continue
		}
		points = append(points, interfaces.PricePoint{
			Date:   row.Date,
			Open:   row.Open[0],
			High:   row.High[0],
			Low:    row.Low[0],
			Close:  row.Close[0],
			Volume: row.Volume[0],
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	deduped := points[:0]
	seen := make(map[string]struct{}, len(points))
	for _, point := range points {
		key := point.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, point)
	}

	if len(deduped) == 0 {
		return nil, &interfaces.NoDataError{Symbol: symbol, Period: period}
	}

	return &interfaces.HistoricalSeries{
		Symbol: symbol,
		Period: period,
		Points: deduped,
	}, nil
}
