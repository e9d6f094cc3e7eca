package cli

import (
	"fmt"
	"option-explorer/controllers"
	"option-explorer/interfaces"
	"option-explorer/services"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// addMarketCommands adds the chain and history commands.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExpirationsCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newDashboardCmd(app))
}

func tickerArg(app *App, args []string) string {
	if len(args) > 0 {
		return strings.ToUpper(strings.TrimSpace(args[0]))
	}
	return app.Config.Defaults.Ticker
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, interfaces.NewValidationError(name, raw, "expected YYYY-MM-DD")
	}
	return date, nil
}

func newExpirationsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "expirations [ticker]",
		Short:   "List option expiration dates",
		Example: "  option-explorer expirations AAPL",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.requestContext()
			defer cancel()

			ticker := tickerArg(app, args)
			expirations, err := app.Options.ListExpirations(ctx, ticker)
			if err != nil {
				return err
			}

			dates := make([]string, len(expirations))
			for i, expiration := range expirations {
				dates[i] = expiration.Format("2006-01-02")
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"ticker": ticker, "expirations": dates})
			}

			output.Printf("%s expirations (%d)\n", ticker, len(dates))
			for _, date := range dates {
				output.Printf("  %s\n", date)
			}
			return nil
		},
	}
}

func newChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain [ticker]",
		Short: "Show an option chain ranked by volume",
		Long: `Fetch the option chain for one expiration and print the calls and puts tables,
each sorted by traded volume. Without --expiration the nearest expiration is used.`,
		Example: `  option-explorer chain AAPL
  option-explorer chain AAPL --expiration 2024-01-19 --type calls --csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.requestContext()
			defer cancel()

			expiration, err := parseDateFlag(cmd, "expiration")
			if err != nil {
				return err
			}
			rawParameter, _ := cmd.Flags().GetString("parameter")
			parameter := app.Config.DefaultParameter()
			if rawParameter != "" {
				parameter = interfaces.PlotParameter(rawParameter)
				if !parameter.Valid() {
					return interfaces.NewValidationError("parameter", rawParameter, fmt.Sprintf("must be one of %v", interfaces.PlotParameters))
				}
			}

			oc := controllers.NewOptionsController(app.Options, app.History, app.defaults(), app.Logger)
			result, err := oc.GetChain(ctx, tickerArg(app, args), expiration, parameter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			tables := []interfaces.TableSpec{result.CallsTable, result.PutsTable}
			switch kind, _ := cmd.Flags().GetString("type"); strings.ToLower(kind) {
			case "calls", "call":
				tables = tables[:1]
			case "puts", "put":
				tables = tables[1:]
			case "all":
				tables = []interfaces.TableSpec{result.RankedTable}
			}

			if !output.csvMode {
				if price, err := app.Options.GetCurrentPrice(ctx, result.Ticker); err == nil {
					output.Printf("%s %s  current price %.2f\n\n", result.Ticker, result.ExpirationDate, price)
				} else {
					output.Printf("%s %s\n\n", result.Ticker, result.ExpirationDate)
				}
			}
			for i, table := range tables {
				if i > 0 && !output.csvMode {
					output.Println()
				}
				if err := output.Table(table); err != nil {
					return err
				}
			}
			if result.DefaultSelection != "" && !output.csvMode {
				output.Printf("\nMost traded contract: %s\n", result.DefaultSelection)
			}
			return nil
		},
	}

	cmd.Flags().String("expiration", "", "expiration date (YYYY-MM-DD)")
	cmd.Flags().String("parameter", "", "plotted field: lastPrice, volume or openInterest")
	cmd.Flags().String("type", "", "calls, puts or all (default: calls and puts)")
	cmd.Flags().Bool("csv", false, "print tables as CSV")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Show price history for a ticker or option contract",
		Example: `  option-explorer history AAPL --period 6mo
  option-explorer history AAPL240119C00190000 --chart price.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.requestContext()
			defer cancel()

			rawPeriod, _ := cmd.Flags().GetString("period")
			period := app.Config.DefaultPeriod()
			if rawPeriod != "" {
				period = interfaces.HistoricalPeriod(rawPeriod)
				if !period.Valid() {
					return interfaces.NewValidationError("period", rawPeriod, fmt.Sprintf("must be one of %v", interfaces.HistoricalPeriods))
				}
			}

			oc := controllers.NewOptionsController(app.Options, app.History, app.defaults(), app.Logger)
			result, err := oc.GetHistory(ctx, strings.ToUpper(args[0]), period)
			if err != nil {
				return err
			}

			if path, _ := cmd.Flags().GetString("chart"); path != "" {
				if err := writeChartFile(path, result.OverlayChart); err != nil {
					return err
				}
				app.Logger.WithField("path", path).Info("Chart written")
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Series(result.Series)
			output.Summary(result.Summary)
			return nil
		},
	}

	cmd.Flags().String("period", "", "look-back period: 1mo, 6mo, 1y or 5y")
	cmd.Flags().String("chart", "", "also write the close/volume chart to this PNG file")
	return cmd
}

func newDashboardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard [ticker]",
		Short: "Render the full dashboard for a ticker",
		Long: `Run the complete lookup: expirations, current price, chain tables, the most traded
(or selected) contract and its price history. Failed sections are reported and skipped.`,
		Example: `  option-explorer dashboard AAPL --parameter volume
  option-explorer dashboard AAPL --contract AAPL240119C00190000 --period 6mo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.requestContext()
			defer cancel()

			expiration, err := parseDateFlag(cmd, "expiration")
			if err != nil {
				return err
			}
			parameter, _ := cmd.Flags().GetString("parameter")
			contract, _ := cmd.Flags().GetString("contract")
			period, _ := cmd.Flags().GetString("period")
			page, _ := cmd.Flags().GetString("page")

			selection := interfaces.UserSelection{
				Ticker:                 tickerArg(app, args),
				ExpirationDate:         expiration,
				PlotParameter:          interfaces.PlotParameter(parameter),
				SelectedContractSymbol: strings.ToUpper(contract),
				HistoricalPeriod:       interfaces.HistoricalPeriod(period),
				Page:                   interfaces.Page(page),
			}.WithDefaults(app.Config.DefaultParameter(), app.Config.DefaultPeriod())
			if err := selection.Validate(); err != nil {
				return err
			}

			dashboard := services.NewDashboardService(app.Options, app.History, app.Recorder, app.Logger)
			view := dashboard.Render(ctx, selection)

			if output.IsJSON() {
				return output.JSON(view)
			}
			return printDashboard(output, view)
		},
	}

	cmd.Flags().String("expiration", "", "expiration date (YYYY-MM-DD, default: nearest)")
	cmd.Flags().String("parameter", "", "plotted field: lastPrice, volume or openInterest")
	cmd.Flags().String("contract", "", "contract symbol to chart instead of the most traded one")
	cmd.Flags().String("period", "", "look-back period: 1mo, 6mo, 1y or 5y")
	cmd.Flags().String("page", "", "all, chain or history")
	return cmd
}

func printDashboard(output *Output, view *services.DashboardView) error {
	selection := view.Selection
	output.Printf("%s", selection.Ticker)
	if !selection.ExpirationDate.IsZero() {
		output.Printf("  expiration %s", selection.ExpirationDate.Format("2006-01-02"))
	}
	if view.CurrentPrice != nil {
		output.Printf("  current price %.2f", *view.CurrentPrice)
	}
	output.Println()
	if len(view.Expirations) > 0 {
		output.Printf("Expirations: %s\n", strings.Join(view.Expirations, ", "))
	}
	output.Println()

	for _, table := range []*interfaces.TableSpec{view.CallsTable, view.PutsTable} {
		if table == nil {
			continue
		}
		if err := output.Table(*table); err != nil {
			return err
		}
		output.Println()
	}

	if view.SelectedContract != "" {
		output.Printf("Selected contract: %s\n", view.SelectedContract)
	}
	output.Summary(view.Summary)

	if len(view.Errors) > 0 {
		sections := make([]string, 0, len(view.Errors))
		for section := range view.Errors {
			sections = append(sections, section)
		}
		sort.Strings(sections)

		output.Println()
		output.Println("Unavailable sections:")
		for _, section := range sections {
			output.Printf("  %s: %s\n", section, view.Errors[section])
		}
	}
	return nil
}
