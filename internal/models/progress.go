package models

import "time"

// UserProgress is the derived gamification state, persisted as a single
// document and recomputed wholesale from the full trade/activity history.
//
// Invariants: XP equals the sum of DailyXPLog values; Level and
// XPToNextLevel are a pure function of XP and are never stored with values
// inconsistent with it; LongestStreak never decreases across recomputes.
type UserProgress struct {
	XP             int
	Level          int
	XPToNextLevel  int
	Streak         int
	LongestStreak  int
	DailyXPLog     map[string]int
	TitlesUnlocked []string
	LastActivity   string
	UpdatedAt      time.Time
}

// NewUserProgress returns the initial progress state for a fresh account.
func NewUserProgress() UserProgress {
	return UserProgress{
		Level:         1,
		XPToNextLevel: 1000,
		DailyXPLog:    map[string]int{},
	}
}

// HasTitle reports whether the given title is already unlocked.
func (p *UserProgress) HasTitle(title string) bool {
	for _, t := range p.TitlesUnlocked {
		if t == title {
			return true
		}
	}
	return false
}
