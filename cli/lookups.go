package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newLookupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookups",
		Short: "List journaled dashboard lookups",
		Long:  "Show recent dashboard requests recorded in the lookup journal (requires storage.db_path).",
		Example: `  option-explorer lookups
  option-explorer lookups --ticker AAPL --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Recorder == nil {
				return fmt.Errorf("lookup journal is disabled; set storage.db_path")
			}

			ticker, _ := cmd.Flags().GetString("ticker")
			limit, _ := cmd.Flags().GetInt("limit")

			lookups, err := app.Recorder.GetLookups(strings.ToUpper(ticker), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(lookups)
			}

			table := tablewriter.NewWriter(output.writer)
			table.SetHeader([]string{"Time", "Ticker", "Expiration", "Contract", "Contracts", "Errors", "Duration"})
			table.SetAutoFormatHeaders(false)
			for _, lookup := range lookups {
				expiration := ""
				if !lookup.ExpirationDate.IsZero() {
					expiration = lookup.ExpirationDate.Format("2006-01-02")
				}
				table.Append([]string{
					lookup.CreatedAt.Format("2006-01-02 15:04:05"),
					lookup.Ticker,
					expiration,
					lookup.SelectedContract,
					fmt.Sprintf("%d", lookup.ContractCount),
					fmt.Sprintf("%d", len(lookup.Errors)),
					lookup.Duration.String(),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("ticker", "", "only show lookups for this ticker")
	cmd.Flags().Int("limit", 20, "maximum number of lookups")
	return cmd
}
