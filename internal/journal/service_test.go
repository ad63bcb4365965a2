package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "zentrade/internal/errors"
	"zentrade/internal/models"
	"zentrade/internal/store"
)

var testRules = []string{
	"Waited for my setup",
	"Respected my stop loss",
	"Position sized within plan",
	"No revenge trading",
}

func newTestService(t *testing.T) (*Service, store.DataStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := NewService(s, zerolog.Nop(), testRules)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	}
	return svc, s
}

func TestLogTradeAssignsIDAndDefaults(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	trade := &models.Trade{
		Symbol:     "AAPL",
		Type:       models.TradeLong,
		Quantity:   100,
		EntryPrice: 190.50,
		EntryDate:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, svc.LogTrade(ctx, trade))

	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, models.TradeOpen, trade.Status)
	assert.False(t, trade.CreatedAt.IsZero())

	got, err := dataStore.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
}

func TestLogTradeWithExitDataStartsClosed(t *testing.T) {
	svc, _ := newTestService(t)

	exitPrice := 195.20
	pnl := 470.0
	exitDate := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	trade := &models.Trade{
		Symbol:     "AAPL",
		Type:       models.TradeLong,
		Quantity:   100,
		EntryPrice: 190.50,
		EntryDate:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		ExitPrice:  &exitPrice,
		ExitDate:   &exitDate,
		PnL:        &pnl,
	}
	require.NoError(t, svc.LogTrade(context.Background(), trade))

	assert.Equal(t, models.TradeClosed, trade.Status)
}

func TestLogTradeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := models.Trade{
		Symbol:     "AAPL",
		Type:       models.TradeLong,
		Quantity:   100,
		EntryPrice: 190.50,
		EntryDate:  time.Now(),
	}

	noSymbol := base
	noSymbol.Symbol = ""
	assert.Error(t, svc.LogTrade(ctx, &noSymbol))

	badType := base
	badType.Type = "sideways"
	assert.Error(t, svc.LogTrade(ctx, &badType))

	zeroQty := base
	zeroQty.Quantity = 0
	assert.Error(t, svc.LogTrade(ctx, &zeroQty))

	zeroEntry := base
	zeroEntry.EntryPrice = 0
	assert.Error(t, svc.LogTrade(ctx, &zeroEntry))

	exitOnly := base
	exitPrice := 195.20
	exitOnly.ExitPrice = &exitPrice
	assert.Error(t, svc.LogTrade(ctx, &exitOnly), "exit price without pnl")

	pnlOnly := base
	pnl := 470.0
	pnlOnly.PnL = &pnl
	assert.Error(t, svc.LogTrade(ctx, &pnlOnly), "pnl without exit price")
}

func TestLogActivityRequiresNotes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LogActivity(ctx, models.ActivityBacktest, time.Now(), "   ")
	assert.Error(t, err)

	_, err = svc.LogActivity(ctx, "meditation", time.Now(), "ohm")
	assert.Error(t, err)

	activity, err := svc.LogActivity(ctx, models.ActivityBacktest, time.Now(), "3 months of SPY")
	require.NoError(t, err)
	assert.NotEmpty(t, activity.ID)
	assert.Equal(t, 40, activity.XPReward())
}

func TestRefreshProgressReplaysHistory(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	_, err := dataStore.InitProgress(ctx)
	require.NoError(t, err)

	pnl := 470.0
	exitPrice := 195.20
	exitDate := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, svc.LogTrade(ctx, &models.Trade{
		Symbol:     "AAPL",
		Type:       models.TradeLong,
		Quantity:   100,
		EntryPrice: 190.50,
		EntryDate:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		ExitPrice:  &exitPrice,
		ExitDate:   &exitDate,
		PnL:        &pnl,
		Notes:      "patient entry, scaled out at target",
	}))

	progress, err := svc.RefreshProgress(ctx)
	require.NoError(t, err)

	// 10 logged + 10 emotion + 10 journal + 25 discipline bonus
	assert.Equal(t, 55, progress.XP)
	assert.Equal(t, 55, progress.DailyXPLog["2026-03-02"])
	assert.Equal(t, 1, progress.Streak)
	assert.Equal(t, 1, progress.Level)

	stored, err := dataStore.GetProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55, stored.XP)
}

func TestRefreshProgressKeepsCheckInXP(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	_, err := dataStore.InitProgress(ctx)
	require.NoError(t, err)

	honest := true
	_, err = svc.SubmitCheckIn(ctx, testRules, nil, &honest)
	require.NoError(t, err)

	pnl := 100.0
	exitPrice := 191.5
	exitDate := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, svc.LogTrade(ctx, &models.Trade{
		Symbol:     "AAPL",
		Type:       models.TradeLong,
		Quantity:   100,
		EntryPrice: 190.50,
		EntryDate:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		ExitPrice:  &exitPrice,
		ExitDate:   &exitDate,
		PnL:        &pnl,
		Notes:      "took the A setup",
	}))

	progress, err := svc.RefreshProgress(ctx)
	require.NoError(t, err)

	// 55 from the journaled winning trade plus the 25 check-in award
	assert.Equal(t, 80, progress.XP)
	assert.Equal(t, 80, progress.DailyXPLog["2026-03-02"])

	// a second refresh must not double-count the check-in
	progress, err = svc.RefreshProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80, progress.XP)
}

func TestRefreshProgressRequiresInit(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RefreshProgress(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrProgressNotFound)
}

func TestSubmitCheckInPerfectDay(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	_, err := dataStore.InitProgress(ctx)
	require.NoError(t, err)

	honest := true
	result, err := svc.SubmitCheckIn(ctx, testRules, nil, &honest)
	require.NoError(t, err)

	assert.Equal(t, 25, result.CheckIn.XPAwarded)
	assert.Equal(t, "2026-03-02", result.CheckIn.Date)
	assert.Len(t, result.CheckIn.RulesFollowed, 4)
	assert.Equal(t, 1, result.Progress.Streak)
	assert.Equal(t, 25, result.Progress.XP)
	assert.Equal(t, 25, result.Progress.DailyXPLog["2026-03-02"])
}

func TestSubmitCheckInTwiceSameDay(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	_, err := dataStore.InitProgress(ctx)
	require.NoError(t, err)

	honest := true
	_, err = svc.SubmitCheckIn(ctx, testRules, nil, &honest)
	require.NoError(t, err)

	_, err = svc.SubmitCheckIn(ctx, testRules, nil, &honest)
	assert.ErrorIs(t, err, apperrors.ErrCheckInExists)

	// XP was not double-awarded
	progress, err := dataStore.GetProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, progress.XP)
}

func TestSubmitCheckInPartial(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	seed := models.NewUserProgress()
	seed.Streak = 3
	require.NoError(t, dataStore.SaveProgress(ctx, seed))

	honest := true
	result, err := svc.SubmitCheckIn(ctx, testRules[:2], testRules[2:], &honest)
	require.NoError(t, err)

	assert.Equal(t, 5, result.CheckIn.XPAwarded, "2 of 4 followed falls to the honesty tier")
	assert.Equal(t, 3, result.Progress.Streak, "partial adherence keeps the streak")
}

func TestSubmitCheckInDishonestBadDayResetsStreak(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	seed := models.NewUserProgress()
	seed.Streak = 6
	seed.LongestStreak = 6
	require.NoError(t, dataStore.SaveProgress(ctx, seed))

	honest := false
	result, err := svc.SubmitCheckIn(ctx, nil, testRules, &honest)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CheckIn.XPAwarded)
	assert.Equal(t, 0, result.Progress.Streak)
	assert.Equal(t, 6, result.Progress.LongestStreak)
}

func TestSubmitCheckInRejectsUnknownRule(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	_, err := dataStore.InitProgress(ctx)
	require.NoError(t, err)

	honest := true
	_, err = svc.SubmitCheckIn(ctx, []string{"Always wear a hat"}, nil, &honest)
	assert.Error(t, err)
}

func TestSubmitCheckInRejectsConflict(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	_, err := dataStore.InitProgress(ctx)
	require.NoError(t, err)

	honest := true
	_, err = svc.SubmitCheckIn(ctx, testRules, testRules[:1], &honest)
	assert.Error(t, err, "a rule cannot be both followed and broken")
}

func TestSubmitCheckInRejectsUnansweredRule(t *testing.T) {
	svc, dataStore := newTestService(t)
	ctx := context.Background()

	_, err := dataStore.InitProgress(ctx)
	require.NoError(t, err)

	honest := true
	_, err = svc.SubmitCheckIn(ctx, testRules[:3], nil, &honest)
	assert.ErrorIs(t, err, apperrors.ErrIncompleteCheckIn)
}

func TestCloseTradeThenStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	trade := &models.Trade{
		Symbol:     "TSLA",
		Type:       models.TradeShort,
		Quantity:   50,
		EntryPrice: 250,
		EntryDate:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.LogTrade(ctx, trade))
	require.NoError(t, svc.CloseTrade(ctx, trade.ID, 245,
		time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), 250))

	report, err := svc.Stats(ctx, store.TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalTrades)
	assert.Equal(t, 250.0, report.TotalPnL)
	assert.Equal(t, 100.0, report.WinRate)
}
