package models

import "time"

// TradeType represents the direction of a trade.
type TradeType string

const (
	TradeLong  TradeType = "long"
	TradeShort TradeType = "short"
)

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// Trade represents one journaled trade.
//
// ExitPrice, ExitDate and PnL are set together when the trade is closed and
// are nil while it is open. PnL is the stored source of truth (it may include
// broker fees) and is never recomputed from prices by the engines.
type Trade struct {
	ID              string
	Symbol          string
	Type            TradeType
	Quantity        float64
	EntryPrice      float64
	ExitPrice       *float64
	EntryDate       time.Time
	ExitDate        *time.Time
	PnL             *float64
	Status          TradeStatus
	Notes           string
	Strategy        string
	Screenshot      string
	RiskAmount      *float64
	RiskRewardRatio *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsClosed reports whether the trade is closed with a recorded PnL.
// Only such trades participate in statistics.
func (t *Trade) IsClosed() bool {
	return t.Status == TradeClosed && t.PnL != nil
}

// IsWin reports whether the trade closed with positive PnL.
func (t *Trade) IsWin() bool {
	return t.PnL != nil && *t.PnL > 0
}

// IsLoss reports whether the trade closed with negative PnL.
func (t *Trade) IsLoss() bool {
	return t.PnL != nil && *t.PnL < 0
}

// SortDate returns the date used for chronological ordering: the exit date
// when present, the entry date otherwise.
func (t *Trade) SortDate() time.Time {
	if t.ExitDate != nil {
		return *t.ExitDate
	}
	return t.EntryDate
}

// TouchesDay reports whether the trade was entered or exited on the given
// calendar day.
func (t *Trade) TouchesDay(day string) bool {
	if DateKey(t.EntryDate) == day {
		return true
	}
	return t.ExitDate != nil && DateKey(*t.ExitDate) == day
}
