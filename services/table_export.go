package services

import (
	"fmt"
	"io"
	"option-explorer/interfaces"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// WriteTableCSV writes the table rows as CSV with a header line
func WriteTableCSV(table interfaces.TableSpec, w io.Writer) error {
	rows := table.Rows
	if rows == nil {
		rows = []interfaces.ContractRow{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// FormatRow renders a table row as display strings in ContractColumns order.
// Prices are shown with two decimals.
func FormatRow(row interfaces.ContractRow) []string {
	return []string{
		strconv.Itoa(row.Rank),
		row.ContractSymbol,
		row.Type,
		formatPrice(row.Strike),
		formatPrice(row.LastPrice),
		formatPrice(row.Bid),
		formatPrice(row.Ask),
		strconv.FormatInt(row.Volume, 10),
		strconv.FormatInt(row.OpenInterest, 10),
	}
}

func formatPrice(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}
