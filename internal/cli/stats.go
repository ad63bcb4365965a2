package cli

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"zentrade/internal/models"
	"zentrade/internal/stats"
	"zentrade/internal/store"
)

// addStatsCommands adds performance reporting commands.
func addStatsCommands(rootCmd *cobra.Command, app *App) {
	var (
		symbol    string
		strategy  string
		startDate string
		endDate   string
		full      bool
	)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show performance statistics",
		Long: `Reduce the closed trades in the journal into a performance report:
P&L, win rate, profit factor, drawdown, streaks and per-strategy,
per-symbol and per-day rollups.`,
		Example: `  zentrade stats
  zentrade stats --strategy ORB --from 2026-01-01
  zentrade stats --full`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			filter := store.TradeFilter{
				Symbol:   strings.ToUpper(symbol),
				Strategy: strategy,
			}
			if startDate != "" {
				d, err := models.ParseDateKey(startDate)
				if err != nil {
					output.Error("Invalid --from date %q (want YYYY-MM-DD)", startDate)
					return err
				}
				filter.StartDate = d
			}
			if endDate != "" {
				d, err := models.ParseDateKey(endDate)
				if err != nil {
					output.Error("Invalid --to date %q (want YYYY-MM-DD)", endDate)
					return err
				}
				filter.EndDate = d
			}

			report, err := app.Journal.Stats(context.Background(), filter)
			if err != nil {
				output.Error("Failed to compute statistics: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderReport(output, report, full)
			return nil
		},
	}

	statsCmd.Flags().StringVar(&symbol, "symbol", "", "restrict to one symbol")
	statsCmd.Flags().StringVar(&strategy, "strategy", "", "restrict to one strategy")
	statsCmd.Flags().StringVar(&startDate, "from", "", "start date YYYY-MM-DD")
	statsCmd.Flags().StringVar(&endDate, "to", "", "end date YYYY-MM-DD")
	statsCmd.Flags().BoolVar(&full, "full", false, "include per-day, monthly and equity detail")

	rootCmd.AddCommand(statsCmd)
}

func renderReport(output *Output, report stats.Report, full bool) {
	if report.TotalTrades == 0 {
		output.Info("No closed trades to report on")
		return
	}

	output.Bold("Performance Report")
	output.Println()

	output.Printf("  Trades:         %d (%s%d wins%s / %s%d losses%s)\n",
		report.TotalTrades,
		colorOn(output, ColorGreen), report.WinningTrades, colorOff(output),
		colorOn(output, ColorRed), report.LosingTrades, colorOff(output))
	output.Printf("  Net P&L:        %s\n", output.FormatPnL(report.TotalPnL))
	output.Printf("  Win Rate:       %.1f%%\n", report.WinRate)
	output.Printf("  Profit Factor:  %s\n", formatProfitFactor(report.ProfitFactor))
	output.Printf("  Expectancy:     %s per trade\n", output.FormatPnL(report.Expectancy))
	output.Printf("  Sharpe (ann.):  %.2f\n", report.SharpeRatio)
	output.Println()

	output.Bold("Wins & Losses")
	output.Printf("  Average Win:    %s\n", FormatCurrency(report.AverageWin))
	output.Printf("  Average Loss:   %s\n", FormatCurrency(report.AverageLoss))
	output.Printf("  Largest Win:    %s\n", output.FormatPnL(report.LargestWin))
	output.Printf("  Largest Loss:   %s\n", output.FormatPnL(report.LargestLoss))
	output.Printf("  Avg Hold Time:  %s\n", report.AverageHoldTime)
	output.Println()

	output.Bold("Drawdown & Streaks")
	output.Printf("  Max Drawdown:     %s (%.1f%%)\n", FormatCurrency(report.MaxDrawdown), report.MaxDrawdownPercent)
	output.Printf("  Current Drawdown: %s\n", FormatCurrency(report.CurrentDrawdown))
	output.Printf("  Current Streak:   %s\n", formatTradeStreak(output, report.CurrentStreak))
	output.Printf("  Best Win Streak:  %d\n", report.MaxWinningStreak)
	output.Printf("  Worst Loss Streak: %d\n", report.MaxLosingStreak)
	output.Println()

	renderHighlights(output, report)

	if full {
		renderGroupTable(output, "By Strategy", report.ByStrategy)
		renderGroupTable(output, "By Symbol", report.BySymbol)
		renderGroupTable(output, "By Month", report.ByMonth)
		renderEquityTail(output, report.EquityCurve)
	}
}

func renderHighlights(output *Output, report stats.Report) {
	output.Bold("Highlights")
	printGroupKey(output, "Best Day", report.BestDay)
	printGroupKey(output, "Worst Day", report.WorstDay)
	printGroupKey(output, "Top Strategy", report.TopStrategy)
	printGroupKey(output, "Worst Strategy", report.WorstStrategy)
	printGroupKey(output, "Top Symbol", report.TopSymbol)
	printGroupKey(output, "Worst Symbol", report.WorstSymbol)
	output.Println()
}

func printGroupKey(output *Output, label string, key *stats.GroupKey) {
	if key == nil {
		return
	}
	output.Printf("  %-15s %s (%s over %d trades)\n", label+":", key.Key, output.FormatPnL(key.PnL), key.Trades)
}

func renderGroupTable(output *Output, title string, groups map[string]stats.GroupStat) {
	if len(groups) == 0 {
		return
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	output.Bold(title)
	table := NewTable(output, "KEY", "TRADES", "WINS", "WIN RATE", "P&L")
	for _, k := range keys {
		g := groups[k]
		table.AddRow(
			k,
			FormatQuantity(float64(g.Trades)),
			FormatQuantity(float64(g.Wins)),
			FormatQuantity(g.WinRate)+"%",
			output.FormatPnL(g.PnL),
		)
	}
	table.Render()
	output.Println()
}

// renderEquityTail shows the last stretch of the equity curve.
func renderEquityTail(output *Output, curve []stats.EquityPoint) {
	if len(curve) == 0 {
		return
	}
	const tail = 10
	start := 0
	if len(curve) > tail {
		start = len(curve) - tail
	}

	output.Bold("Equity Curve (last %d points)", len(curve)-start)
	table := NewTable(output, "DATE", "EQUITY", "DRAWDOWN")
	for _, p := range curve[start:] {
		table.AddRow(p.Date, output.FormatPnL(p.Equity), FormatCurrency(p.Drawdown))
	}
	table.Render()
	output.Println()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf (no losses)"
	}
	return FormatQuantity(math.Round(pf*100) / 100)
}

func formatTradeStreak(output *Output, streak int) string {
	switch {
	case streak > 0:
		return output.Green(FormatQuantity(float64(streak)) + " wins")
	case streak < 0:
		return output.Red(FormatQuantity(float64(-streak)) + " losses")
	default:
		return "none"
	}
}

func colorOn(output *Output, color string) string {
	if output.colorEnabled {
		return color
	}
	return ""
}

func colorOff(output *Output) string {
	if output.colorEnabled {
		return ColorReset
	}
	return ""
}
