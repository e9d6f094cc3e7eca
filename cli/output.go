package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"option-explorer/interfaces"
	"option-explorer/services"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer   io.Writer
	jsonMode bool
	csvMode  bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	csvMode, _ := cmd.Flags().GetBool("csv")
	return &Output{
		writer:   cmd.OutOrStdout(),
		jsonMode: jsonMode,
		csvMode:  csvMode,
	}
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Table prints a contract table, as CSV when --csv is set.
func (o *Output) Table(table interfaces.TableSpec) error {
	if o.csvMode {
		return services.WriteTableCSV(table, o.writer)
	}

	o.Printf("%s\n", table.Title)
	if len(table.Rows) == 0 {
		o.Println("  (no contracts)")
		return nil
	}

	writer := tablewriter.NewWriter(o.writer)
	writer.SetHeader(table.Columns)
	writer.SetAutoFormatHeaders(false)
	writer.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, row := range table.Rows {
		writer.Append(services.FormatRow(row))
	}
	writer.Render()
	return nil
}

// Series prints a price history as a table.
func (o *Output) Series(series *interfaces.HistoricalSeries) {
	writer := tablewriter.NewWriter(o.writer)
	writer.SetHeader([]string{"Date", "Open", "High", "Low", "Close", "Volume"})
	writer.SetAutoFormatHeaders(false)
	writer.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, point := range series.Points {
		writer.Append([]string{
			point.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", point.Open),
			fmt.Sprintf("%.2f", point.High),
			fmt.Sprintf("%.2f", point.Low),
			fmt.Sprintf("%.2f", point.Close),
			fmt.Sprintf("%d", point.Volume),
		})
	}
	writer.Render()
}

// Summary prints the headline statistics of a series.
func (o *Output) Summary(summary *interfaces.SeriesSummary) {
	if summary == nil {
		return
	}
	o.Printf("%s: last %.2f, change %+.2f (%+.2f%%), range %.2f - %.2f, avg volume %d, volatility %.2f%%",
		summary.Symbol, summary.LastClose, summary.Change, summary.ChangePercent,
		summary.PeriodLow, summary.PeriodHigh, summary.AvgVolume, summary.Volatility)
	if summary.SMA20 > 0 {
		o.Printf(", SMA20 %.2f", summary.SMA20)
	}
	o.Println()
}
