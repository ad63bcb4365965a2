package stats

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"zentrade/internal/models"
)

// genClosedTrades produces arbitrary closed-trade histories: mixed signs,
// break-evens, random day spreads and duplicate days.
func genClosedTrades() gopter.Gen {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	symbols := []string{"AAPL", "TSLA", "SPY", "NVDA"}
	strategies := []string{"", "ORB", "Breakout", "Fade"}

	tradeGen := gopter.CombineGens(
		gen.Float64Range(-5000, 5000),
		gen.IntRange(0, 120),
		gen.IntRange(0, len(symbols)-1),
		gen.IntRange(0, len(strategies)-1),
	).Map(func(vals []interface{}) models.Trade {
		pnl := vals[0].(float64)
		dayOffset := vals[1].(int)
		exit := base.AddDate(0, 0, dayOffset)
		entry := exit.Add(-3 * time.Hour)
		exitPrice := 100.0
		return models.Trade{
			ID:         "t",
			Symbol:     symbols[vals[2].(int)],
			Strategy:   strategies[vals[3].(int)],
			Type:       models.TradeLong,
			Quantity:   1,
			EntryPrice: 100,
			ExitPrice:  &exitPrice,
			EntryDate:  entry,
			ExitDate:   &exit,
			PnL:        &pnl,
			Status:     models.TradeClosed,
		}
	})

	return gen.SliceOf(tradeGen)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Property: no trade history produces NaN or unexpected infinities anywhere
// in the report. ProfitFactor is the only field allowed to be +Inf, and only
// when there are wins without losses.
func TestProperty_ReportNeverNaN(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("report fields stay finite", prop.ForAll(
		func(trades []models.Trade) bool {
			report := Compute(trades)

			for _, v := range []float64{
				report.TotalPnL, report.WinRate,
				report.AverageWin, report.AverageLoss,
				report.LargestWin, report.LargestLoss,
				report.Expectancy, report.SharpeRatio,
				report.MaxDrawdown, report.MaxDrawdownPercent,
				report.CurrentDrawdown,
			} {
				if !finite(v) {
					return false
				}
			}

			if math.IsNaN(report.ProfitFactor) || math.IsInf(report.ProfitFactor, -1) {
				return false
			}
			if math.IsInf(report.ProfitFactor, 1) && report.LosingTrades != 0 {
				return false
			}
			for _, p := range report.EquityCurve {
				if !finite(p.Equity) || !finite(p.Drawdown) {
					return false
				}
			}
			return true
		},
		genClosedTrades(),
	))

	properties.TestingRun(t)
}

// Property: the counting fields are internally consistent for any input:
// wins + losses never exceed the total, the win rate matches the counts and
// the equity curve has exactly one point per closed trade.
func TestProperty_ReportCountsConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("counts and win rate agree", prop.ForAll(
		func(trades []models.Trade) bool {
			report := Compute(trades)

			if report.WinningTrades+report.LosingTrades > report.TotalTrades {
				return false
			}
			if len(report.EquityCurve) != report.TotalTrades {
				return false
			}
			if report.TotalTrades == 0 {
				return report.WinRate == 0
			}

			expected := float64(report.WinningTrades) / float64(report.TotalTrades) * 100
			if math.Abs(report.WinRate-expected) > 1e-9 {
				return false
			}
			return report.WinRate >= 0 && report.WinRate <= 100
		},
		genClosedTrades(),
	))

	properties.TestingRun(t)
}

// Property: drawdown is non-negative and never exceeds the distance from
// the running equity peak; the max is at least the final drawdown.
func TestProperty_DrawdownBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("drawdown stays within bounds", prop.ForAll(
		func(trades []models.Trade) bool {
			report := Compute(trades)

			if report.MaxDrawdown < 0 || report.CurrentDrawdown < 0 {
				return false
			}
			if report.CurrentDrawdown > report.MaxDrawdown {
				return false
			}
			for _, p := range report.EquityCurve {
				if p.Drawdown < 0 || p.Drawdown > report.MaxDrawdown {
					return false
				}
			}
			return true
		},
		genClosedTrades(),
	))

	properties.TestingRun(t)
}
