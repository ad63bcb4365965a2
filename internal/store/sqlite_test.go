package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "zentrade/internal/errors"
	"zentrade/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrade(id string) *models.Trade {
	entry := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	return &models.Trade{
		ID:         id,
		Symbol:     "AAPL",
		Type:       models.TradeLong,
		Quantity:   100,
		EntryPrice: 190.50,
		EntryDate:  entry,
		Status:     models.TradeOpen,
		Strategy:   "ORB",
		Notes:      "clean breakout",
		CreatedAt:  entry,
		UpdatedAt:  entry,
	}
}

func TestTradeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	original := sampleTrade("trade-1")
	exitPrice := 195.20
	exitDate := original.EntryDate.Add(3 * time.Hour)
	pnl := 470.0
	original.ExitPrice = &exitPrice
	original.ExitDate = &exitDate
	original.PnL = &pnl
	original.Status = models.TradeClosed

	require.NoError(t, s.SaveTrade(ctx, original))

	got, err := s.GetTrade(ctx, "trade-1")
	require.NoError(t, err)

	assert.Equal(t, original.Symbol, got.Symbol)
	assert.Equal(t, original.Type, got.Type)
	assert.Equal(t, original.Quantity, got.Quantity)
	assert.Equal(t, original.EntryPrice, got.EntryPrice)
	require.NotNil(t, got.ExitPrice)
	assert.Equal(t, exitPrice, *got.ExitPrice)
	require.NotNil(t, got.PnL)
	assert.Equal(t, pnl, *got.PnL)
	require.NotNil(t, got.ExitDate)
	assert.True(t, got.ExitDate.Equal(exitDate))
	assert.Equal(t, models.TradeClosed, got.Status)
	assert.Equal(t, "clean breakout", got.Notes)
	assert.Equal(t, "ORB", got.Strategy)
}

func TestTradeOpenFieldsStayNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrade(ctx, sampleTrade("open-1")))

	got, err := s.GetTrade(ctx, "open-1")
	require.NoError(t, err)

	assert.Nil(t, got.ExitPrice)
	assert.Nil(t, got.ExitDate)
	assert.Nil(t, got.PnL)
	assert.Equal(t, models.TradeOpen, got.Status)
}

func TestGetTradeNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTrade(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestCloseTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrade(ctx, sampleTrade("t1")))

	exitDate := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, s.CloseTrade(ctx, "t1", 195.20, exitDate, 470))

	got, err := s.GetTrade(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TradeClosed, got.Status)
	require.NotNil(t, got.PnL)
	assert.Equal(t, 470.0, *got.PnL)

	// closing again is rejected
	err = s.CloseTrade(ctx, "t1", 200, exitDate, 500)
	assert.ErrorIs(t, err, apperrors.ErrTradeClosed)
}

func TestGetTradesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	aapl := sampleTrade("a1")
	tsla := sampleTrade("t1")
	tsla.Symbol = "TSLA"
	tsla.Strategy = "Fade"
	tsla.EntryDate = aapl.EntryDate.AddDate(0, 0, 5)
	require.NoError(t, s.SaveTrades(ctx, []models.Trade{*aapl, *tsla}))

	bySymbol, err := s.GetTrades(ctx, TradeFilter{Symbol: "TSLA"})
	require.NoError(t, err)
	require.Len(t, bySymbol, 1)
	assert.Equal(t, "t1", bySymbol[0].ID)

	byStrategy, err := s.GetTrades(ctx, TradeFilter{Strategy: "ORB"})
	require.NoError(t, err)
	require.Len(t, byStrategy, 1)
	assert.Equal(t, "a1", byStrategy[0].ID)

	byDate, err := s.GetTrades(ctx, TradeFilter{StartDate: aapl.EntryDate.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "t1", byDate[0].ID)

	all, err := s.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a1", all[0].ID, "results come back oldest first")
}

func TestUpdateTradeNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrade(ctx, sampleTrade("t1")))
	require.NoError(t, s.UpdateTradeNotes(ctx, "t1", "second thoughts"))

	got, err := s.GetTrade(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "second thoughts", got.Notes)

	assert.ErrorIs(t, s.UpdateTradeNotes(ctx, "nope", "x"), apperrors.ErrTradeNotFound)
}

func TestDeleteTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrade(ctx, sampleTrade("t1")))
	require.NoError(t, s.DeleteTrade(ctx, "t1"))

	_, err := s.GetTrade(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
	assert.ErrorIs(t, s.DeleteTrade(ctx, "t1"), apperrors.ErrTradeNotFound)
}

func TestActivityRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	activity := &models.Activity{
		ID:        "act-1",
		Type:      models.ActivityBacktest,
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Notes:     "ORB over 3 months of SPY",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveActivity(ctx, activity))

	got, err := s.GetActivities(ctx, ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ActivityBacktest, got[0].Type)
	assert.Equal(t, "ORB over 3 months of SPY", got[0].Notes)

	byType, err := s.GetActivities(ctx, ActivityFilter{Type: models.ActivityReengineer})
	require.NoError(t, err)
	assert.Empty(t, byType)
}

func TestProgressNotFoundBeforeInit(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProgress(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrProgressNotFound)
}

func TestInitProgressSeedsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.InitProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, 1000, first.XPToNextLevel)
	assert.NotNil(t, first.DailyXPLog)

	// a second init must not clobber accrued state
	first.XP = 500
	first.DailyXPLog["2026-03-02"] = 500
	require.NoError(t, s.SaveProgress(ctx, first))

	again, err := s.InitProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, again.XP)
}

func TestProgressRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	progress := models.NewUserProgress()
	progress.XP = 1250
	progress.Level = 2
	progress.XPToNextLevel = 1750
	progress.Streak = 4
	progress.LongestStreak = 9
	progress.DailyXPLog = map[string]int{"2026-03-02": 55, "2026-03-03": 75}
	progress.TitlesUnlocked = []string{"Novice Journaler", "Consistent"}
	progress.LastActivity = "2026-03-03"

	require.NoError(t, s.SaveProgress(ctx, progress))

	got, err := s.GetProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1250, got.XP)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, 1750, got.XPToNextLevel)
	assert.Equal(t, 4, got.Streak)
	assert.Equal(t, 9, got.LongestStreak)
	assert.Equal(t, progress.DailyXPLog, got.DailyXPLog)
	assert.Equal(t, progress.TitlesUnlocked, got.TitlesUnlocked)
	assert.Equal(t, "2026-03-03", got.LastActivity)
}

func TestCheckInUniquePerDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	checkIn := &models.RuleCheckIn{
		Date:             "2026-03-02",
		RulesFollowed:    []string{"Waited for my setup"},
		RulesBroken:      []string{"No revenge trading"},
		HonestyConfirmed: true,
		XPAwarded:        5,
		Timestamp:        time.Now().UTC(),
	}
	require.NoError(t, s.SaveCheckIn(ctx, checkIn))

	err := s.SaveCheckIn(ctx, checkIn)
	assert.ErrorIs(t, err, apperrors.ErrCheckInExists)

	got, err := s.GetCheckIn(ctx, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"Waited for my setup"}, got.RulesFollowed)
	assert.True(t, got.HonestyConfirmed)
	assert.Equal(t, 5, got.XPAwarded)

	_, err = s.GetCheckIn(ctx, "2026-03-03")
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)
}

func TestGetCheckInsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, day := range []string{"2026-03-01", "2026-03-03", "2026-03-02"} {
		require.NoError(t, s.SaveCheckIn(ctx, &models.RuleCheckIn{
			Date:          day,
			RulesFollowed: []string{"r"},
			RulesBroken:   []string{},
			XPAwarded:     25,
			Timestamp:     time.Now().UTC(),
		}))
	}

	got, err := s.GetCheckIns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-03-03", got[0].Date)
	assert.Equal(t, "2026-03-02", got[1].Date)
}

func TestFailedOperationClassifiesAsDatabaseError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Force the next statement to fail at the driver level.
	require.NoError(t, s.db.Close())

	err := s.SaveTrade(ctx, sampleTrade("trade-err"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDatabaseError)

	var storeErr *apperrors.StoreError
	require.True(t, apperrors.As(err, &storeErr))
	assert.Equal(t, "save", storeErr.Op)
	assert.Equal(t, "trade", storeErr.Entity)
}
