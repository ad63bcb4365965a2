package xp

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"zentrade/internal/models"
)

// Property: for any non-negative total XP the level resolution terminates
// in the correct bracket: the XP consumed by earlier levels plus the XP
// still needed exactly fills the current level requirement.
func TestProperty_LevelBracket(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("level is exactly the bracket the XP falls into", prop.ForAll(
		func(totalXP int) bool {
			level, toNext := LevelFromTotalXP(totalXP)
			if level < 1 || toNext < 1 || toNext > ForLevel(level) {
				return false
			}

			// XP consumed finishing levels 1..level-1
			consumedByPrior := 0
			for l := 1; l < level; l++ {
				consumedByPrior += ForLevel(l)
			}
			withinLevel := totalXP - consumedByPrior
			if withinLevel < 0 || withinLevel >= ForLevel(level) {
				return false
			}
			return withinLevel+toNext == ForLevel(level)
		},
		gen.IntRange(0, 50_000_000),
	))

	properties.TestingRun(t)
}

// genHistory builds random trade and activity histories over a small day
// window, so consecutive days, gaps, silent losses and activity-only days
// all occur.
func genHistory() gopter.Gen {
	base := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	notesPool := []string{"", "stuck to plan", "overtraded, wrote it up"}
	activityTypes := []models.ActivityType{
		models.ActivityBacktest, models.ActivityReengineer, models.ActivityPostTradeReview,
	}

	tradeGen := gopter.CombineGens(
		gen.Float64Range(-500, 500),
		gen.IntRange(0, 14),
		gen.IntRange(0, len(notesPool)-1),
	).Map(func(vals []interface{}) models.Trade {
		pnl := vals[0].(float64)
		day := base.AddDate(0, 0, vals[1].(int))
		exit := day.Add(2 * time.Hour)
		exitPrice := 100.0
		return models.Trade{
			ID: "t", Symbol: "SPY", Type: models.TradeLong, Quantity: 1,
			EntryPrice: 100, ExitPrice: &exitPrice,
			EntryDate: day, ExitDate: &exit, PnL: &pnl,
			Status: models.TradeClosed,
			Notes:  notesPool[vals[2].(int)],
		}
	})

	activityGen := gopter.CombineGens(
		gen.IntRange(0, 14),
		gen.IntRange(0, len(activityTypes)-1),
	).Map(func(vals []interface{}) models.Activity {
		return models.Activity{
			ID:    "a",
			Type:  activityTypes[vals[1].(int)],
			Date:  base.AddDate(0, 0, vals[0].(int)),
			Notes: "did the work",
		}
	})

	return gopter.CombineGens(
		gen.SliceOf(tradeGen),
		gen.SliceOf(activityGen),
	)
}

// Property: recomputing twice with the previous output as prior yields an
// identical result. Refreshing progress repeatedly must not drift.
func TestProperty_RecomputeIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("second recompute is a fixed point", prop.ForAll(
		func(vals []interface{}) bool {
			trades := vals[0].([]models.Trade)
			activities := vals[1].([]models.Activity)

			first := Recompute(trades, activities, models.NewUserProgress())
			second := Recompute(trades, activities, first)
			return reflect.DeepEqual(first, second)
		},
		genHistory(),
	))

	properties.TestingRun(t)
}

// Property: the longest streak never decreases across a recompute, whatever
// the prior state claims.
func TestProperty_LongestStreakMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("longest streak only grows", prop.ForAll(
		func(vals []interface{}, priorLongest int) bool {
			trades := vals[0].([]models.Trade)
			activities := vals[1].([]models.Activity)

			prior := models.NewUserProgress()
			prior.LongestStreak = priorLongest

			next := Recompute(trades, activities, prior)
			return next.LongestStreak >= priorLongest
		},
		genHistory(),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// Property: the total XP always equals the sum of the daily ledger, and the
// stored level matches the pure level function.
func TestProperty_XPLedgerConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("XP equals the daily ledger sum", prop.ForAll(
		func(vals []interface{}) bool {
			trades := vals[0].([]models.Trade)
			activities := vals[1].([]models.Activity)

			next := Recompute(trades, activities, models.NewUserProgress())

			sum := 0
			for _, v := range next.DailyXPLog {
				if v < 0 {
					return false
				}
				sum += v
			}
			if sum != next.XP {
				return false
			}

			level, toNext := LevelFromTotalXP(next.XP)
			return level == next.Level && toNext == next.XPToNextLevel
		},
		genHistory(),
	))

	properties.TestingRun(t)
}
