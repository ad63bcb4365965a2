// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"zentrade/internal/models"
)

// DataStore defines the interface for journal persistence.
//
// The engines never touch this interface; the service layer loads a full
// snapshot, runs the pure computations, and writes results back through it.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	SaveTrades(ctx context.Context, trades []models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	CloseTrade(ctx context.Context, id string, exitPrice float64, exitDate time.Time, pnl float64) error
	UpdateTradeNotes(ctx context.Context, id, notes string) error
	DeleteTrade(ctx context.Context, id string) error

	// Activities
	SaveActivity(ctx context.Context, activity *models.Activity) error
	GetActivities(ctx context.Context, filter ActivityFilter) ([]models.Activity, error)
	UpdateActivityNotes(ctx context.Context, id, notes string) error
	DeleteActivity(ctx context.Context, id string) error

	// Progress document (single per account). GetProgress returns
	// ErrProgressNotFound when no document exists; InitProgress seeds the
	// initial record exactly once.
	GetProgress(ctx context.Context) (models.UserProgress, error)
	SaveProgress(ctx context.Context, progress models.UserProgress) error
	InitProgress(ctx context.Context) (models.UserProgress, error)

	// Check-ins (at most one per calendar day, never edited).
	SaveCheckIn(ctx context.Context, checkIn *models.RuleCheckIn) error
	GetCheckIn(ctx context.Context, date string) (*models.RuleCheckIn, error)
	GetCheckIns(ctx context.Context, limit int) ([]models.RuleCheckIn, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	Strategy  string
	Status    models.TradeStatus
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// ActivityFilter represents filters for querying activities.
type ActivityFilter struct {
	Type      models.ActivityType
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
