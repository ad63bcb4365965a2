// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "zentrade/internal/errors"
	"zentrade/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.NewStoreError("open", "database", err)
	}

	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.NewStoreError("initialize", "schema", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Journaled trades
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		type TEXT NOT NULL,
		quantity REAL NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		entry_date DATETIME NOT NULL,
		exit_date DATETIME,
		pnl REAL,
		status TEXT NOT NULL DEFAULT 'open',
		notes TEXT,
		strategy TEXT,
		screenshot TEXT,
		risk_amount REAL,
		risk_reward REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Logged learning activities
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		date DATETIME NOT NULL,
		notes TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Derived gamification state, one row
	CREATE TABLE IF NOT EXISTS progress (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		xp_to_next INTEGER NOT NULL DEFAULT 1000,
		streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		daily_xp_log TEXT NOT NULL DEFAULT '{}',
		titles TEXT NOT NULL DEFAULT '[]',
		last_activity TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Rule-adherence check-ins, at most one per calendar day
	CREATE TABLE IF NOT EXISTS checkins (
		date TEXT PRIMARY KEY,
		rules_followed TEXT NOT NULL,
		rules_broken TEXT NOT NULL,
		honesty INTEGER NOT NULL,
		xp_awarded INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_date ON trades(entry_date);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
	CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades
// ============================================================================

const tradeColumns = "id, symbol, type, quantity, entry_price, exit_price, entry_date, exit_date, pnl, status, notes, strategy, screenshot, risk_amount, risk_reward, created_at, updated_at"

// SaveTrade inserts or replaces a trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Symbol, trade.Type, trade.Quantity, trade.EntryPrice,
		nullFloat(trade.ExitPrice), trade.EntryDate, nullTime(trade.ExitDate),
		nullFloat(trade.PnL), trade.Status, trade.Notes, trade.Strategy,
		trade.Screenshot, nullFloat(trade.RiskAmount), nullFloat(trade.RiskRewardRatio),
		trade.CreatedAt, trade.UpdatedAt)
	if err != nil {
		return apperrors.NewStoreError("save", "trade", err)
	}
	return nil
}

// SaveTrades inserts a batch of trades in one transaction.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("begin", "transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return apperrors.NewStoreError("prepare", "statement", err)
	}
	defer stmt.Close()

	for i := range trades {
		t := &trades[i]
		_, err := stmt.ExecContext(ctx, t.ID, t.Symbol, t.Type, t.Quantity, t.EntryPrice,
			nullFloat(t.ExitPrice), t.EntryDate, nullTime(t.ExitDate),
			nullFloat(t.PnL), t.Status, t.Notes, t.Strategy,
			t.Screenshot, nullFloat(t.RiskAmount), nullFloat(t.RiskRewardRatio),
			t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return apperrors.NewStoreError("insert", "trade", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("commit", "transaction", err)
	}
	return nil
}

// GetTrade retrieves a single trade by id.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "trade", err)
	}
	return t, nil
}

// GetTrades retrieves trades matching the filter, oldest first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Strategy != "" {
		query += " AND strategy = ?"
		args = append(args, filter.Strategy)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if !filter.StartDate.IsZero() {
		query += " AND entry_date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND entry_date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY entry_date ASC, created_at ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "trades", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan", "trade", err)
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

// CloseTrade records exit price, exit date and realized PnL, and flips the
// status to closed. Closing an already-closed trade is rejected.
func (s *SQLiteStore) CloseTrade(ctx context.Context, id string, exitPrice float64, exitDate time.Time, pnl float64) error {
	t, err := s.GetTrade(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == models.TradeClosed {
		return apperrors.ErrTradeClosed
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE trades
		SET exit_price = ?, exit_date = ?, pnl = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, exitPrice, exitDate, pnl, models.TradeClosed, time.Now().UTC(), id)
	if err != nil {
		return apperrors.NewStoreError("close", "trade", err)
	}
	return nil
}

// UpdateTradeNotes replaces the journal notes of a trade.
func (s *SQLiteStore) UpdateTradeNotes(ctx context.Context, id, notes string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET notes = ?, updated_at = ? WHERE id = ?
	`, notes, time.Now().UTC(), id)
	if err != nil {
		return apperrors.NewStoreError("update", "trade notes", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// DeleteTrade removes a trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return apperrors.NewStoreError("delete", "trade", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*models.Trade, error) {
	var t models.Trade
	var exitPrice, pnl, riskAmount, riskReward sql.NullFloat64
	var exitDate sql.NullTime
	var notes, strategy, screenshot sql.NullString

	err := row.Scan(&t.ID, &t.Symbol, &t.Type, &t.Quantity, &t.EntryPrice,
		&exitPrice, &t.EntryDate, &exitDate, &pnl, &t.Status, &notes,
		&strategy, &screenshot, &riskAmount, &riskReward, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.ExitPrice = floatPtr(exitPrice)
	t.PnL = floatPtr(pnl)
	t.RiskAmount = floatPtr(riskAmount)
	t.RiskRewardRatio = floatPtr(riskReward)
	if exitDate.Valid {
		d := exitDate.Time
		t.ExitDate = &d
	}
	t.Notes = notes.String
	t.Strategy = strategy.String
	t.Screenshot = screenshot.String
	return &t, nil
}

// ============================================================================
// Activities
// ============================================================================

// SaveActivity inserts or replaces an activity.
func (s *SQLiteStore) SaveActivity(ctx context.Context, activity *models.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO activities (id, type, date, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, activity.ID, activity.Type, activity.Date, activity.Notes, activity.CreatedAt)
	if err != nil {
		return apperrors.NewStoreError("save", "activity", err)
	}
	return nil
}

// GetActivities retrieves activities matching the filter, oldest first.
func (s *SQLiteStore) GetActivities(ctx context.Context, filter ActivityFilter) ([]models.Activity, error) {
	query := "SELECT id, type, date, notes, created_at FROM activities WHERE 1=1"
	args := []interface{}{}

	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY date ASC, created_at ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "activities", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Date, &a.Notes, &a.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("scan", "activity", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// UpdateActivityNotes replaces the notes of an activity. Past daily XP is
// not rewritten here; it is reflected on the next full recompute.
func (s *SQLiteStore) UpdateActivityNotes(ctx context.Context, id, notes string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE activities SET notes = ? WHERE id = ?", notes, id)
	if err != nil {
		return apperrors.NewStoreError("update", "activity notes", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrActivityNotFound
	}
	return nil
}

// DeleteActivity removes an activity.
func (s *SQLiteStore) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return apperrors.NewStoreError("delete", "activity", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrActivityNotFound
	}
	return nil
}

// ============================================================================
// Progress
// ============================================================================

// GetProgress loads the single progress document. A missing document is
// ErrProgressNotFound, never a synthesized zero record.
func (s *SQLiteStore) GetProgress(ctx context.Context) (models.UserProgress, error) {
	var p models.UserProgress
	var dailyLog, titles string
	var lastActivity sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT xp, level, xp_to_next, streak, longest_streak, daily_xp_log, titles, last_activity, updated_at
		FROM progress WHERE id = 1
	`).Scan(&p.XP, &p.Level, &p.XPToNextLevel, &p.Streak, &p.LongestStreak,
		&dailyLog, &titles, &lastActivity, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.UserProgress{}, apperrors.ErrProgressNotFound
	}
	if err != nil {
		return models.UserProgress{}, apperrors.NewStoreError("get", "progress", err)
	}

	if err := json.Unmarshal([]byte(dailyLog), &p.DailyXPLog); err != nil {
		return models.UserProgress{}, apperrors.NewStoreError("decode", "daily XP log", err)
	}
	if err := json.Unmarshal([]byte(titles), &p.TitlesUnlocked); err != nil {
		return models.UserProgress{}, apperrors.NewStoreError("decode", "titles", err)
	}
	p.LastActivity = lastActivity.String
	return p, nil
}

// SaveProgress overwrites the progress document.
func (s *SQLiteStore) SaveProgress(ctx context.Context, progress models.UserProgress) error {
	dailyLog, err := json.Marshal(progress.DailyXPLog)
	if err != nil {
		return apperrors.NewStoreError("encode", "daily XP log", err)
	}
	titles, err := json.Marshal(progress.TitlesUnlocked)
	if err != nil {
		return apperrors.NewStoreError("encode", "titles", err)
	}
	if titles == nil || string(titles) == "null" {
		titles = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO progress (id, xp, level, xp_to_next, streak, longest_streak, daily_xp_log, titles, last_activity, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, progress.XP, progress.Level, progress.XPToNextLevel, progress.Streak,
		progress.LongestStreak, string(dailyLog), string(titles),
		progress.LastActivity, time.Now().UTC())
	if err != nil {
		return apperrors.NewStoreError("save", "progress", err)
	}
	return nil
}

// InitProgress seeds the initial progress document if none exists and
// returns the stored record either way.
func (s *SQLiteStore) InitProgress(ctx context.Context) (models.UserProgress, error) {
	p, err := s.GetProgress(ctx)
	if err == nil {
		return p, nil
	}
	if !apperrors.Is(err, apperrors.ErrProgressNotFound) {
		return models.UserProgress{}, err
	}

	fresh := models.NewUserProgress()
	if err := s.SaveProgress(ctx, fresh); err != nil {
		return models.UserProgress{}, err
	}
	return s.GetProgress(ctx)
}

// ============================================================================
// Check-ins
// ============================================================================

// SaveCheckIn records a check-in. A second check-in for the same day is
// rejected with ErrCheckInExists; check-ins are never updated.
func (s *SQLiteStore) SaveCheckIn(ctx context.Context, checkIn *models.RuleCheckIn) error {
	followed, err := json.Marshal(checkIn.RulesFollowed)
	if err != nil {
		return apperrors.NewStoreError("encode", "followed rules", err)
	}
	broken, err := json.Marshal(checkIn.RulesBroken)
	if err != nil {
		return apperrors.NewStoreError("encode", "broken rules", err)
	}

	honesty := 0
	if checkIn.HonestyConfirmed {
		honesty = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkins (date, rules_followed, rules_broken, honesty, xp_awarded, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, checkIn.Date, string(followed), string(broken), honesty, checkIn.XPAwarded, checkIn.Timestamp)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return apperrors.ErrCheckInExists
		}
		return apperrors.NewStoreError("save", "check-in", err)
	}
	return nil
}

// GetCheckIn retrieves the check-in for a calendar day, if any.
func (s *SQLiteStore) GetCheckIn(ctx context.Context, date string) (*models.RuleCheckIn, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date, rules_followed, rules_broken, honesty, xp_awarded, timestamp
		FROM checkins WHERE date = ?
	`, date)

	c, err := scanCheckIn(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", "check-in", err)
	}
	return c, nil
}

// GetCheckIns retrieves recent check-ins, newest first.
func (s *SQLiteStore) GetCheckIns(ctx context.Context, limit int) ([]models.RuleCheckIn, error) {
	query := `
		SELECT date, rules_followed, rules_broken, honesty, xp_awarded, timestamp
		FROM checkins ORDER BY date DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query", "check-ins", err)
	}
	defer rows.Close()

	var checkIns []models.RuleCheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan", "check-in", err)
		}
		checkIns = append(checkIns, *c)
	}
	return checkIns, rows.Err()
}

func scanCheckIn(row rowScanner) (*models.RuleCheckIn, error) {
	var c models.RuleCheckIn
	var followed, broken string
	var honesty int

	if err := row.Scan(&c.Date, &followed, &broken, &honesty, &c.XPAwarded, &c.Timestamp); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(followed), &c.RulesFollowed); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(broken), &c.RulesBroken); err != nil {
		return nil, err
	}
	c.HonestyConfirmed = honesty == 1
	return &c, nil
}

// ============================================================================
// Helpers
// ============================================================================

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
