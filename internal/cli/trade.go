package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zentrade/internal/models"
	"zentrade/internal/store"
)

// addTradeCommands adds trade journaling commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	tradeCmd := &cobra.Command{
		Use:   "trade",
		Short: "Log and manage trades",
		Long:  "Log new trades, close open positions and annotate them with journal notes.",
	}

	tradeCmd.AddCommand(newTradeAddCmd(app))
	tradeCmd.AddCommand(newTradeCloseCmd(app))
	tradeCmd.AddCommand(newTradeListCmd(app))
	tradeCmd.AddCommand(newTradeNoteCmd(app))
	tradeCmd.AddCommand(newTradeDeleteCmd(app))

	rootCmd.AddCommand(tradeCmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	var (
		side      string
		qty       float64
		entry     float64
		exit      float64
		pnl       float64
		entryDate string
		exitDate  string
		strategy  string
		notes     string
		risk      float64
	)

	cmd := &cobra.Command{
		Use:   "add SYMBOL",
		Short: "Log a new trade",
		Long: `Log a new trade. With only entry data the trade stays open;
supplying --exit and --pnl records it as already closed.`,
		Example: `  zentrade trade add AAPL --side long --qty 100 --entry 190.50
  zentrade trade add TSLA --side short --qty 50 --entry 250 --exit 245 --pnl 250 --notes "gap fade"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			trade := &models.Trade{
				Symbol:   strings.ToUpper(args[0]),
				Type:     models.TradeType(strings.ToLower(side)),
				Quantity: qty,
				Strategy: strategy,
				Notes:    notes,
			}
			if trade.Strategy == "" {
				trade.Strategy = app.Config.Journal.DefaultStrategy
			}
			trade.EntryPrice = entry
			if entryDate != "" {
				d, err := models.ParseDateKey(entryDate)
				if err != nil {
					output.Error("Invalid entry date %q (want YYYY-MM-DD)", entryDate)
					return err
				}
				trade.EntryDate = d
			} else {
				trade.EntryDate = time.Now()
			}
			if risk > 0 {
				trade.RiskAmount = &risk
			}
			if cmd.Flags().Changed("exit") {
				trade.ExitPrice = &exit
			}
			if cmd.Flags().Changed("pnl") {
				trade.PnL = &pnl
			}
			if exitDate != "" {
				d, err := models.ParseDateKey(exitDate)
				if err != nil {
					output.Error("Invalid exit date %q (want YYYY-MM-DD)", exitDate)
					return err
				}
				trade.ExitDate = &d
			} else if trade.ExitPrice != nil {
				now := time.Now()
				trade.ExitDate = &now
			}

			if err := app.Journal.LogTrade(context.Background(), trade); err != nil {
				output.Error("Failed to log trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			if trade.Status == models.TradeClosed {
				output.Success("Logged closed trade %s %s (%s)", trade.Symbol, trade.ID, output.FormatPnL(*trade.PnL))
			} else {
				output.Success("Logged open trade %s %s", trade.Symbol, trade.ID)
			}
			output.Dim("Run 'zentrade progress refresh' to update XP")
			return nil
		},
	}

	cmd.Flags().StringVar(&side, "side", "long", "trade side: long or short")
	cmd.Flags().Float64Var(&qty, "qty", 0, "quantity (required)")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (required)")
	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price (closes the trade with --pnl)")
	cmd.Flags().Float64Var(&pnl, "pnl", 0, "realized P&L including fees")
	cmd.Flags().StringVar(&entryDate, "date", "", "entry date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&exitDate, "exit-date", "", "exit date YYYY-MM-DD")
	cmd.Flags().StringVar(&strategy, "strategy", "", "strategy label")
	cmd.Flags().StringVar(&notes, "notes", "", "journal notes")
	cmd.Flags().Float64Var(&risk, "risk", 0, "risk amount for the trade")
	cmd.MarkFlagRequired("qty")
	cmd.MarkFlagRequired("entry")

	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	var (
		exit     float64
		pnl      float64
		exitDate string
	)

	cmd := &cobra.Command{
		Use:   "close TRADE_ID",
		Short: "Close an open trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			when := time.Now()
			if exitDate != "" {
				d, err := models.ParseDateKey(exitDate)
				if err != nil {
					output.Error("Invalid exit date %q (want YYYY-MM-DD)", exitDate)
					return err
				}
				when = d
			}

			if err := app.Journal.CloseTrade(context.Background(), args[0], exit, when, pnl); err != nil {
				output.Error("Failed to close trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"id": args[0], "pnl": pnl, "closed": true})
			}
			output.Success("Closed trade %s (%s)", args[0], output.FormatPnL(pnl))
			return nil
		},
	}

	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price (required)")
	cmd.Flags().Float64Var(&pnl, "pnl", 0, "realized P&L including fees (required)")
	cmd.Flags().StringVar(&exitDate, "date", "", "exit date YYYY-MM-DD (default: today)")
	cmd.MarkFlagRequired("exit")
	cmd.MarkFlagRequired("pnl")

	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	var (
		symbol   string
		strategy string
		status   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			filter := store.TradeFilter{
				Symbol:   strings.ToUpper(symbol),
				Strategy: strategy,
				Status:   models.TradeStatus(status),
				Limit:    limit,
			}
			trades, err := app.Store.GetTrades(context.Background(), filter)
			if err != nil {
				output.Error("Failed to load trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found")
				return nil
			}
			renderTradeTable(output, trades)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&strategy, "strategy", "", "filter by strategy")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: open or closed")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of trades")

	return cmd
}

func renderTradeTable(output *Output, trades []models.Trade) {
	table := NewTable(output, "ID", "DATE", "SYMBOL", "SIDE", "QTY", "ENTRY", "EXIT", "P&L", "STATUS", "NOTES")
	for i := range trades {
		t := &trades[i]
		exitStr := "-"
		if t.ExitPrice != nil {
			exitStr = FormatCurrency(*t.ExitPrice)
		}
		pnlStr := "-"
		if t.PnL != nil {
			pnlStr = output.FormatPnL(*t.PnL)
		}
		statusStr := string(t.Status)
		if t.Status == models.TradeOpen {
			statusStr = output.Yellow(statusStr)
		}
		table.AddRow(
			TruncateString(t.ID, 10),
			FormatDate(t.SortDate()),
			t.Symbol,
			string(t.Type),
			FormatQuantity(t.Quantity),
			FormatCurrency(t.EntryPrice),
			exitStr,
			pnlStr,
			statusStr,
			TruncateString(t.Notes, 30),
		)
	}
	table.Render()
	output.Println()
	output.Dim("%d trade(s)", len(trades))
}

func newTradeNoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note TRADE_ID NOTES",
		Short: "Set journal notes on a trade",
		Long: `Set the journal notes on a trade. Journaled trades earn extra XP;
journaling a loss earns the most.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			notes := strings.Join(args[1:], " ")
			if err := app.Journal.Annotate(context.Background(), args[0], notes); err != nil {
				output.Error("Failed to update notes: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"id": args[0], "notes": notes})
			}
			output.Success("Notes updated for trade %s", args[0])
			return nil
		},
	}
	return cmd
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete TRADE_ID",
		Short: "Delete a trade from the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			if err := app.Store.DeleteTrade(context.Background(), args[0]); err != nil {
				output.Error("Failed to delete trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"id": args[0], "deleted": true})
			}
			output.Success("Deleted trade %s", args[0])
			return nil
		},
	}
	return cmd
}
