package models

import "time"

// RuleCheckIn is the end-of-session rule-adherence self-report. At most one
// exists per calendar day; once written it is never edited or deleted.
type RuleCheckIn struct {
	Date             string
	RulesFollowed    []string
	RulesBroken      []string
	HonestyConfirmed bool
	XPAwarded        int
	Timestamp        time.Time
}
