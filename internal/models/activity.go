package models

import "time"

// ActivityType represents a logged non-trade learning activity.
type ActivityType string

const (
	ActivityBacktest        ActivityType = "backtest"
	ActivityReengineer      ActivityType = "reengineer"
	ActivityPostTradeReview ActivityType = "postTradeReview"
)

// ActivityXP is the single source of truth for per-activity XP rewards.
// The same table is read by the XP engine, CLI previews and reports;
// duplicating these values elsewhere would let display and scoring drift.
var ActivityXP = map[ActivityType]int{
	ActivityBacktest:        40,
	ActivityReengineer:      25,
	ActivityPostTradeReview: 20,
}

// Activity represents one logged learning activity.
type Activity struct {
	ID        string
	Type      ActivityType
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}

// XPReward returns the fixed XP reward for the activity's type, 0 for an
// unknown type.
func (a *Activity) XPReward() int {
	return ActivityXP[a.Type]
}

// Valid reports whether the activity type is one of the known types.
func (t ActivityType) Valid() bool {
	_, ok := ActivityXP[t]
	return ok
}
