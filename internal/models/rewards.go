package models

// XP rewards shared by the engines and every display surface. These tables
// are the single source of truth; the XP engine, the rule-adherence engine
// and the CLI previews all read from here.
const (
	// Per-trade daily XP components.
	XPTradeLogged   = 10 // any trade touching the day
	XPEmotionTagged = 10 // trade has notes
	XPJournalWrite  = 10 // trade has notes
	XPLossJournaled = 20 // losing trade journaled with notes

	// Daily bonus when the day has at least one trade and qualifies for
	// the streak.
	XPAllRulesBonus = 25
)

// Rule-adherence check-in tiers, first match wins.
const (
	XPCheckInAllRules = 25 // every configured rule followed
	XPCheckInPartial  = 10 // at least 3 rules followed
	XPCheckInHonesty  = 5  // honesty confirmed, fewer than 3 followed
)

// CheckInPartialThreshold is the absolute follow count for the partial
// tier. It is a count, not a percentage: a user with only 1 or 2 configured
// rules can never reach this tier, which is intended behavior.
const CheckInPartialThreshold = 3
