// Package rules scores the end-of-session rule-adherence check-in.
package rules

import (
	apperrors "zentrade/internal/errors"
	"zentrade/internal/models"
)

// Answer is one (rule, followed) tuple of a check-in submission. Followed
// is a pointer so an unanswered rule is distinguishable from "not followed".
type Answer struct {
	Rule     string
	Followed *bool
}

// Result is the outcome of scoring one check-in.
type Result struct {
	XPAwarded int
	NewStreak int
	Followed  []string
	Broken    []string
}

// Validate rejects partial submissions: every configured rule must be
// answered and the honesty confirmation must be set.
func Validate(answers []Answer, honestyConfirmed *bool) error {
	if len(answers) == 0 {
		return apperrors.NewValidationError("answers", nil, "no rules answered")
	}
	for _, a := range answers {
		if a.Rule == "" {
			return apperrors.NewValidationError("rule", a.Rule, "empty rule text")
		}
		if a.Followed == nil {
			return apperrors.NewValidationError("rule", a.Rule, "rule not answered")
		}
	}
	if honestyConfirmed == nil {
		return apperrors.NewValidationError("honestyConfirmed", nil, "honesty confirmation not set")
	}
	return nil
}

// Score evaluates a complete check-in against the XP tiers and returns the
// award plus the resulting streak.
//
// Tiers are evaluated in strict priority order, first match wins:
//  1. every rule followed (and at least one configured) — full award,
//     streak +1
//  2. at least 3 rules followed — partial award
//  3. honesty confirmed — honesty award
//  4. otherwise 0
//
// The streak only resets when nothing was followed and honesty was not
// confirmed; partial adherence leaves it unchanged. The 3+ threshold is an
// absolute count, so with fewer than 3 configured rules only tiers 1 and 3
// are reachable. That asymmetry is intended and preserved.
func Score(answers []Answer, honestyConfirmed *bool, priorStreak int) (Result, error) {
	if err := Validate(answers, honestyConfirmed); err != nil {
		return Result{}, apperrors.Wrap(apperrors.ErrIncompleteCheckIn, err.Error())
	}

	res := Result{NewStreak: priorStreak}
	for _, a := range answers {
		if *a.Followed {
			res.Followed = append(res.Followed, a.Rule)
		} else {
			res.Broken = append(res.Broken, a.Rule)
		}
	}

	followed := len(res.Followed)
	honest := *honestyConfirmed

	switch {
	case followed == len(answers) && len(answers) > 0:
		res.XPAwarded = models.XPCheckInAllRules
		res.NewStreak = priorStreak + 1
	case followed >= models.CheckInPartialThreshold:
		res.XPAwarded = models.XPCheckInPartial
	case honest:
		res.XPAwarded = models.XPCheckInHonesty
	}

	if followed == 0 && !honest {
		res.NewStreak = 0
	}

	return res, nil
}
