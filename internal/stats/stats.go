// Package stats reduces closed trades into a performance report.
//
// Compute is a pure function: no I/O, deterministic for a given input list,
// and it never fails. Trades that are not closed with a recorded PnL are
// ignored for every metric.
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"zentrade/internal/models"
)

// annualization factor for the Sharpe-like ratio (√252 trading days).
var annualization = math.Sqrt(252)

// EquityPoint is one point of the running equity curve.
type EquityPoint struct {
	Date     string
	Equity   float64
	Drawdown float64
}

// GroupStat is a per-key rollup (day, strategy, symbol or month).
type GroupStat struct {
	Trades  int
	Wins    int
	PnL     float64
	WinRate float64
}

// GroupKey names the best or worst group of a rollup.
type GroupKey struct {
	Key    string
	PnL    float64
	Trades int
}

// Report is the immutable output of Compute.
type Report struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int

	TotalPnL float64
	WinRate  float64
	// ProfitFactor is gross profit over absolute gross loss. It is
	// math.Inf(1) when there are wins but no losses, and 0 when there are
	// neither.
	ProfitFactor float64
	AverageWin   float64
	AverageLoss  float64 // positive magnitude
	LargestWin   float64
	LargestLoss  float64
	Expectancy   float64
	SharpeRatio  float64

	MaxDrawdown        float64
	MaxDrawdownPercent float64
	CurrentDrawdown    float64
	EquityCurve        []EquityPoint

	// CurrentStreak is signed: positive for an active win streak, negative
	// for an active loss streak.
	CurrentStreak    int
	MaxWinningStreak int
	MaxLosingStreak  int

	AverageHoldTime string

	ByDay      map[string]GroupStat
	ByStrategy map[string]GroupStat
	BySymbol   map[string]GroupStat
	ByMonth    map[string]GroupStat

	BestDay       *GroupKey
	WorstDay      *GroupKey
	TopStrategy   *GroupKey
	WorstStrategy *GroupKey
	TopSymbol     *GroupKey
	WorstSymbol   *GroupKey
}

// MarshalJSON renders the infinite profit-factor sentinel as the string
// "inf", since JSON has no encoding for it and a report with wins and no
// losses is a perfectly valid result.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	doc := struct {
		plain
		ProfitFactor interface{} `json:"ProfitFactor"`
	}{plain: plain(r), ProfitFactor: r.ProfitFactor}
	if math.IsInf(r.ProfitFactor, 1) {
		doc.ProfitFactor = "inf"
	}
	return json.Marshal(doc)
}

// Compute reduces an arbitrary-order trade list into a Report.
// Only closed trades with a recorded PnL participate; an empty filtered
// list yields the zero-valued report with "0d 0h" hold time.
func Compute(trades []models.Trade) Report {
	report := Report{
		AverageHoldTime: "0d 0h",
		ByDay:           map[string]GroupStat{},
		ByStrategy:      map[string]GroupStat{},
		BySymbol:        map[string]GroupStat{},
		ByMonth:         map[string]GroupStat{},
	}

	closed := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}
	if len(closed) == 0 {
		return report
	}

	// Cumulative metrics need chronological order. The sort is stable so
	// same-day trades keep their input order.
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].SortDate().Before(closed[j].SortDate())
	})

	var grossProfit, grossLoss float64
	for _, t := range closed {
		pnl := *t.PnL
		report.TotalPnL += pnl
		if pnl > 0 {
			report.WinningTrades++
			grossProfit += pnl
			if pnl > report.LargestWin {
				report.LargestWin = pnl
			}
		} else if pnl < 0 {
			report.LosingTrades++
			grossLoss += pnl
			if pnl < report.LargestLoss {
				report.LargestLoss = pnl
			}
		}
	}

	report.TotalTrades = len(closed)
	report.WinRate = float64(report.WinningTrades) / float64(len(closed)) * 100

	switch {
	case grossLoss != 0:
		report.ProfitFactor = grossProfit / -grossLoss
	case grossProfit > 0:
		report.ProfitFactor = math.Inf(1)
	}

	if report.WinningTrades > 0 {
		report.AverageWin = grossProfit / float64(report.WinningTrades)
	}
	if report.LosingTrades > 0 {
		report.AverageLoss = -grossLoss / float64(report.LosingTrades)
	}
	report.Expectancy = report.WinRate/100*report.AverageWin -
		(100-report.WinRate)/100*report.AverageLoss

	computeEquityCurve(closed, &report)
	report.SharpeRatio = sharpe(closed)
	computeStreaks(closed, &report)
	report.AverageHoldTime = averageHoldTime(closed)
	computeRollups(closed, &report)

	return report
}

func computeEquityCurve(closed []models.Trade, report *Report) {
	var equity, peak float64
	curve := make([]EquityPoint, 0, len(closed))

	for _, t := range closed {
		equity += *t.PnL
		if equity > peak {
			peak = equity
		}
		drawdown := peak - equity
		if drawdown > report.MaxDrawdown {
			report.MaxDrawdown = drawdown
			if peak > 0 {
				report.MaxDrawdownPercent = drawdown / peak * 100
			}
		}
		curve = append(curve, EquityPoint{
			Date:     models.DateKey(t.SortDate()),
			Equity:   equity,
			Drawdown: drawdown,
		})
	}

	report.EquityCurve = curve
	report.CurrentDrawdown = curve[len(curve)-1].Drawdown
}

// sharpe treats each trade's PnL as one return sample, not normalized by
// capital, and annualizes by √252. Returns 0 when the samples do not vary.
func sharpe(closed []models.Trade) float64 {
	n := float64(len(closed))

	var mean float64
	for _, t := range closed {
		mean += *t.PnL
	}
	mean /= n

	var variance float64
	for _, t := range closed {
		d := *t.PnL - mean
		variance += d * d
	}
	variance /= n // population variance

	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}
	return mean / stddev * annualization
}

func computeStreaks(closed []models.Trade, report *Report) {
	var winRun, lossRun int
	for _, t := range closed {
		pnl := *t.PnL
		switch {
		case pnl > 0:
			winRun++
			lossRun = 0
			if winRun > report.MaxWinningStreak {
				report.MaxWinningStreak = winRun
			}
		case pnl < 0:
			lossRun++
			winRun = 0
			if lossRun > report.MaxLosingStreak {
				report.MaxLosingStreak = lossRun
			}
		default:
			// Break-even trades end both runs.
			winRun = 0
			lossRun = 0
		}
	}

	if winRun > 0 {
		report.CurrentStreak = winRun
	} else if lossRun > 0 {
		report.CurrentStreak = -lossRun
	}
}

func averageHoldTime(closed []models.Trade) string {
	var totalHours float64
	var count int
	for _, t := range closed {
		if t.ExitDate == nil {
			continue
		}
		totalHours += t.ExitDate.Sub(t.EntryDate).Hours()
		count++
	}
	if count == 0 {
		return "0d 0h"
	}

	mean := totalHours / float64(count)
	days := int(mean / 24)
	hours := int(mean) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

func computeRollups(closed []models.Trade, report *Report) {
	for _, t := range closed {
		day := models.DateKey(t.SortDate())
		strategy := t.Strategy
		if strategy == "" {
			strategy = "Manual"
		}

		addToGroup(report.ByDay, day, *t.PnL)
		addToGroup(report.ByStrategy, strategy, *t.PnL)
		addToGroup(report.BySymbol, t.Symbol, *t.PnL)
		addToGroup(report.ByMonth, models.MonthKey(t.SortDate()), *t.PnL)
	}

	for _, g := range []map[string]GroupStat{report.ByDay, report.ByStrategy, report.BySymbol, report.ByMonth} {
		for k, s := range g {
			s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
			g[k] = s
		}
	}

	report.BestDay, report.WorstDay = extremes(report.ByDay)
	report.TopStrategy, report.WorstStrategy = extremes(report.ByStrategy)
	report.TopSymbol, report.WorstSymbol = extremes(report.BySymbol)
}

func addToGroup(groups map[string]GroupStat, key string, pnl float64) {
	s := groups[key]
	s.Trades++
	s.PnL += pnl
	if pnl > 0 {
		s.Wins++
	}
	groups[key] = s
}

// extremes selects the best and worst group by total PnL. Ties break on the
// lexicographically smaller key so the selection is deterministic.
func extremes(groups map[string]GroupStat) (best, worst *GroupKey) {
	if len(groups) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s := groups[k]
		if best == nil || s.PnL > best.PnL {
			best = &GroupKey{Key: k, PnL: s.PnL, Trades: s.Trades}
		}
		if worst == nil || s.PnL < worst.PnL {
			worst = &GroupKey{Key: k, PnL: s.PnL, Trades: s.Trades}
		}
	}
	return best, worst
}
