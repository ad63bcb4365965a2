// Package xp converts a full trade and activity history into a daily XP
// ledger, a level and a streak state.
//
// Every function here is pure and deterministic. Progress is recomputed
// wholesale from history on each refresh rather than patched incrementally,
// so edits or deletions of past records are always reflected on the next
// recompute.
package xp

import (
	"sort"

	"zentrade/internal/models"
)

// ForLevel returns the XP required to advance from the given level to the
// next one. The requirement grows strictly with the level.
func ForLevel(level int) int {
	return 1000 * level
}

// LevelFromTotalXP resolves cumulative XP into a level and the XP still
// needed to finish the current level. Levels start at 1.
func LevelFromTotalXP(totalXP int) (level, xpToNextLevel int) {
	level = 1
	remainder := totalXP
	for remainder >= ForLevel(level) {
		remainder -= ForLevel(level)
		level++
	}
	return level, ForLevel(level) - remainder
}

// DailyXP computes the XP earned on one calendar day from the trades and
// activities touching that day.
func DailyXP(trades []models.Trade, activities []models.Activity, day string) int {
	total := 0
	hasTrade := false

	for i := range trades {
		t := &trades[i]
		if !t.TouchesDay(day) {
			continue
		}
		hasTrade = true
		total += models.XPTradeLogged
		if t.Notes != "" {
			total += models.XPEmotionTagged + models.XPJournalWrite
			if t.IsLoss() {
				total += models.XPLossJournaled
			}
		}
	}

	if hasTrade && QualifiesForStreak(trades, activities, day) {
		total += models.XPAllRulesBonus
	}

	for i := range activities {
		a := &activities[i]
		if models.DateKey(a.Date) == day {
			total += a.XPReward()
		}
	}

	return total
}

// QualifiesForStreak reports whether a day counts toward the streak.
// A day qualifies when it has at least one trade or activity, no losing
// trade went unjournaled (a silent loss disqualifies the day), and, if it
// has trades at all, at least one of them carries notes. An activity-only
// day qualifies trivially.
func QualifiesForStreak(trades []models.Trade, activities []models.Activity, day string) bool {
	hasTrade := false
	hasNotes := false

	for i := range trades {
		t := &trades[i]
		if !t.TouchesDay(day) {
			continue
		}
		hasTrade = true
		if t.Notes != "" {
			hasNotes = true
		} else if t.IsLoss() {
			return false
		}
	}

	if hasTrade {
		return hasNotes
	}

	for i := range activities {
		if models.DateKey(activities[i].Date) == day {
			return true
		}
	}
	return false
}

// activeDays returns the sorted set of calendar days that have at least one
// trade or activity.
func activeDays(trades []models.Trade, activities []models.Activity) []string {
	set := map[string]struct{}{}
	for i := range trades {
		t := &trades[i]
		set[models.DateKey(t.EntryDate)] = struct{}{}
		if t.ExitDate != nil {
			set[models.DateKey(*t.ExitDate)] = struct{}{}
		}
	}
	for i := range activities {
		set[models.DateKey(activities[i].Date)] = struct{}{}
	}

	days := make([]string, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// consecutive reports whether day b is the calendar day right after a.
func consecutive(a, b string) bool {
	ta, errA := models.ParseDateKey(a)
	tb, errB := models.ParseDateKey(b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.AddDate(0, 0, 1).Equal(tb)
}

// Recompute replays the full history into a fresh UserProgress. The prior
// progress contributes only what must survive a recompute: the longest
// streak (never lowered) and the already-unlocked titles (never removed).
func Recompute(trades []models.Trade, activities []models.Activity, prior models.UserProgress) models.UserProgress {
	next := models.NewUserProgress()
	next.LongestStreak = prior.LongestStreak
	next.TitlesUnlocked = append([]string(nil), prior.TitlesUnlocked...)

	days := activeDays(trades, activities)
	for _, day := range days {
		next.DailyXPLog[day] = DailyXP(trades, activities, day)
		next.XP += next.DailyXPLog[day]
	}
	next.Level, next.XPToNextLevel = LevelFromTotalXP(next.XP)

	// Walk runs of consecutive qualifying calendar days. The run ending at
	// the most recent active day is the current streak; the longest run
	// anywhere in history can only raise the persisted longest streak.
	run := 0
	prevDay := ""
	prevQualified := false
	for _, day := range days {
		qualifies := QualifiesForStreak(trades, activities, day)
		if qualifies {
			if prevQualified && consecutive(prevDay, day) {
				run++
			} else {
				run = 1
			}
			if run > next.LongestStreak {
				next.LongestStreak = run
			}
		} else {
			run = 0
		}
		prevDay = day
		prevQualified = qualifies
	}
	if len(days) > 0 {
		next.LastActivity = days[len(days)-1]
		if prevQualified {
			next.Streak = run
		}
	}

	unlockTitles(&next)
	return next
}

// Title pairs a badge name with its unlock predicate.
type Title struct {
	Name     string
	Unlocked func(p *models.UserProgress) bool
}

// Titles is the fixed, ordered unlock table. Predicates are evaluated on
// every recompute; newly true ones add their title to the unlocked set and
// titles are never removed.
var Titles = []Title{
	{"Novice Journaler", func(p *models.UserProgress) bool { return p.XP >= 100 }},
	{"Consistent", func(p *models.UserProgress) bool { return p.LongestStreak >= 3 }},
	{"Week of Discipline", func(p *models.UserProgress) bool { return p.LongestStreak >= 7 }},
	{"Iron Streak", func(p *models.UserProgress) bool { return p.LongestStreak >= 30 }},
	{"Apprentice", func(p *models.UserProgress) bool { return p.Level >= 5 }},
	{"Journeyman", func(p *models.UserProgress) bool { return p.Level >= 10 }},
	{"Master of Process", func(p *models.UserProgress) bool { return p.Level >= 20 }},
	{"XP Grinder", func(p *models.UserProgress) bool { return p.XP >= 25000 }},
}

func unlockTitles(p *models.UserProgress) {
	for _, t := range Titles {
		if !p.HasTitle(t.Name) && t.Unlocked(p) {
			p.TitlesUnlocked = append(p.TitlesUnlocked, t.Name)
		}
	}
}
