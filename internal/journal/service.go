// Package journal wires the pure engines to the data store. Each operation
// is a "load snapshot, compute, write back" unit; the engines themselves
// never perform I/O.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "zentrade/internal/errors"
	"zentrade/internal/logging"
	"zentrade/internal/models"
	"zentrade/internal/rules"
	"zentrade/internal/stats"
	"zentrade/internal/store"
	"zentrade/internal/xp"
	"zentrade/pkg/id"
)

// Service exposes the journal operations used by the CLI.
type Service struct {
	store  store.DataStore
	logger zerolog.Logger
	rules  []string
	now    func() time.Time
}

// NewService creates a journal service over the given store. ruleList is
// the user's configured trading rules, scored by the daily check-in.
func NewService(dataStore store.DataStore, logger zerolog.Logger, ruleList []string) *Service {
	return &Service{
		store:  dataStore,
		logger: logger,
		rules:  ruleList,
		now:    time.Now,
	}
}

// Rules returns the configured rule list.
func (s *Service) Rules() []string {
	return s.rules
}

// LogTrade validates and persists a new trade. The ID and timestamps are
// assigned here when absent.
func (s *Service) LogTrade(ctx context.Context, trade *models.Trade) error {
	if trade.Symbol == "" {
		return apperrors.NewValidationError("symbol", trade.Symbol, "symbol is required")
	}
	if trade.Type != models.TradeLong && trade.Type != models.TradeShort {
		return apperrors.NewValidationError("type", trade.Type, "type must be long or short")
	}
	if trade.Quantity <= 0 {
		return apperrors.NewValidationError("quantity", trade.Quantity, "quantity must be positive")
	}
	if trade.EntryPrice <= 0 {
		return apperrors.NewValidationError("entryPrice", trade.EntryPrice, "entry price must be positive")
	}
	// Exit price and PnL are set together or not at all; a lone half would
	// leave a trade the stats and XP engines can never account for.
	if (trade.ExitPrice != nil) != (trade.PnL != nil) {
		return apperrors.NewValidationError("exitPrice", trade.ExitPrice, "exit price and pnl must be supplied together")
	}

	if trade.ID == "" {
		trade.ID = id.New()
	}
	now := s.now().UTC()
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = now
	}
	trade.UpdatedAt = now

	if trade.Status == "" {
		trade.Status = models.TradeOpen
	}
	// Exit data already known (e.g. pasted from a closed position) means
	// the trade starts closed.
	if trade.PnL != nil && trade.ExitPrice != nil {
		trade.Status = models.TradeClosed
	}

	if err := s.store.SaveTrade(ctx, trade); err != nil {
		return err
	}
	logging.LogTradeLogged(s.logger, trade.ID, trade.Symbol, string(trade.Type), trade.Quantity)
	return nil
}

// CloseTrade closes an open trade with its exit data and stored PnL.
func (s *Service) CloseTrade(ctx context.Context, tradeID string, exitPrice float64, exitDate time.Time, pnl float64) error {
	if exitPrice <= 0 {
		return apperrors.NewValidationError("exitPrice", exitPrice, "exit price must be positive")
	}
	if err := s.store.CloseTrade(ctx, tradeID, exitPrice, exitDate, pnl); err != nil {
		return err
	}
	logging.LogTradeClosed(s.logger, tradeID, pnl)
	return nil
}

// Annotate sets the journal notes on a trade.
func (s *Service) Annotate(ctx context.Context, tradeID, notes string) error {
	return s.store.UpdateTradeNotes(ctx, tradeID, notes)
}

// LogActivity validates and persists a learning activity.
func (s *Service) LogActivity(ctx context.Context, activityType models.ActivityType, date time.Time, notes string) (*models.Activity, error) {
	if !activityType.Valid() {
		return nil, apperrors.NewValidationError("type", activityType, "unknown activity type")
	}
	if strings.TrimSpace(notes) == "" {
		return nil, apperrors.NewValidationError("notes", notes, "notes are required")
	}

	activity := &models.Activity{
		ID:        id.New(),
		Type:      activityType,
		Date:      date,
		Notes:     notes,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveActivity(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// Stats loads trades and reduces them into a performance report.
func (s *Service) Stats(ctx context.Context, filter store.TradeFilter) (stats.Report, error) {
	trades, err := s.store.GetTrades(ctx, filter)
	if err != nil {
		return stats.Report{}, err
	}
	return stats.Compute(trades), nil
}

// RefreshProgress reloads the full history, replays it through the XP
// engine and persists the result. A missing prior progress document aborts
// the refresh: writing a default over real history would clobber it, so
// load and recompute-and-save succeed together or not at all.
func (s *Service) RefreshProgress(ctx context.Context) (models.UserProgress, error) {
	prior, err := s.store.GetProgress(ctx)
	if err != nil {
		return models.UserProgress{}, err
	}

	trades, err := s.store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		return models.UserProgress{}, err
	}
	activities, err := s.store.GetActivities(ctx, store.ActivityFilter{})
	if err != nil {
		return models.UserProgress{}, err
	}

	next := xp.Recompute(trades, activities, prior)

	// Check-in awards live outside the trade/activity replay; fold the
	// stored awards back in so a refresh never erases them.
	checkIns, err := s.store.GetCheckIns(ctx, 0)
	if err != nil {
		return models.UserProgress{}, err
	}
	for i := range checkIns {
		c := &checkIns[i]
		if c.XPAwarded > 0 {
			next.DailyXPLog[c.Date] += c.XPAwarded
			next.XP += c.XPAwarded
		}
	}
	next.Level, next.XPToNextLevel = xp.LevelFromTotalXP(next.XP)

	if next.Level > prior.Level {
		logging.LogLevelUp(s.logger, prior.Level, next.Level, next.XP)
	}

	if err := s.store.SaveProgress(ctx, next); err != nil {
		return models.UserProgress{}, err
	}
	return next, nil
}

// CheckInResult is returned by SubmitCheckIn for display.
type CheckInResult struct {
	CheckIn  models.RuleCheckIn
	Progress models.UserProgress
}

// SubmitCheckIn scores today's rule-adherence self-report and folds the
// award into the progress document. Every configured rule must appear in
// either followed or broken; a second submission for the same day is
// rejected.
func (s *Service) SubmitCheckIn(ctx context.Context, followed, broken []string, honestyConfirmed *bool) (CheckInResult, error) {
	answers, err := s.buildAnswers(followed, broken)
	if err != nil {
		return CheckInResult{}, err
	}

	today := models.DateKey(s.now())
	if _, err := s.store.GetCheckIn(ctx, today); err == nil {
		return CheckInResult{}, apperrors.ErrCheckInExists
	} else if !apperrors.Is(err, apperrors.ErrDataNotFound) {
		return CheckInResult{}, err
	}

	progress, err := s.store.GetProgress(ctx)
	if err != nil {
		return CheckInResult{}, err
	}

	result, err := rules.Score(answers, honestyConfirmed, progress.Streak)
	if err != nil {
		return CheckInResult{}, err
	}

	checkIn := models.RuleCheckIn{
		Date:             today,
		RulesFollowed:    result.Followed,
		RulesBroken:      result.Broken,
		HonestyConfirmed: *honestyConfirmed,
		XPAwarded:        result.XPAwarded,
		Timestamp:        s.now().UTC(),
	}
	if err := s.store.SaveCheckIn(ctx, &checkIn); err != nil {
		return CheckInResult{}, err
	}

	progress.Streak = result.NewStreak
	if progress.Streak > progress.LongestStreak {
		progress.LongestStreak = progress.Streak
	}
	if result.XPAwarded > 0 {
		progress.XP += result.XPAwarded
		progress.DailyXPLog[today] += result.XPAwarded
		progress.Level, progress.XPToNextLevel = xp.LevelFromTotalXP(progress.XP)
	}
	if err := s.store.SaveProgress(ctx, progress); err != nil {
		return CheckInResult{}, err
	}

	logging.LogCheckIn(s.logger, today, len(result.Followed), len(result.Broken), result.XPAwarded, result.NewStreak)
	return CheckInResult{CheckIn: checkIn, Progress: progress}, nil
}

func (s *Service) buildAnswers(followed, broken []string) ([]rules.Answer, error) {
	if len(s.rules) == 0 {
		return nil, apperrors.NewValidationError("rules", nil, "no rules configured")
	}

	verdicts := map[string]*bool{}
	for _, r := range followed {
		v := true
		verdicts[r] = &v
	}
	for _, r := range broken {
		if _, ok := verdicts[r]; ok {
			return nil, apperrors.NewValidationError("rule", r, "rule marked both followed and broken")
		}
		v := false
		verdicts[r] = &v
	}

	known := map[string]bool{}
	answers := make([]rules.Answer, 0, len(s.rules))
	for _, r := range s.rules {
		known[r] = true
		answers = append(answers, rules.Answer{Rule: r, Followed: verdicts[r]})
	}
	for r := range verdicts {
		if !known[r] {
			return nil, apperrors.NewValidationError("rule", r, "not a configured rule")
		}
	}
	return answers, nil
}
