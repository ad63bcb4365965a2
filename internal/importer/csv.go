package importer

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "zentrade/internal/errors"
	"zentrade/internal/models"
)

// csvTrade is the on-disk CSV row shape for trade import and export.
type csvTrade struct {
	Symbol     string  `csv:"symbol"`
	Type       string  `csv:"type"`
	Quantity   float64 `csv:"quantity"`
	EntryPrice float64 `csv:"entry_price"`
	ExitPrice  string  `csv:"exit_price"`
	EntryDate  string  `csv:"entry_date"`
	ExitDate   string  `csv:"exit_date"`
	PnL        string  `csv:"pnl"`
	Notes      string  `csv:"notes"`
	Strategy   string  `csv:"strategy"`
}

// ReadCSV decodes trades from CSV. Optional columns may be empty; rows with
// an unusable symbol, side, quantity or entry price are rejected with an
// ImportError naming the row.
func ReadCSV(r io.Reader) ([]models.Trade, error) {
	var rows []csvTrade
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, apperrors.Wrap(err, "decoding CSV")
	}

	trades := make([]models.Trade, 0, len(rows))
	for i, row := range rows {
		t, err := row.toTrade()
		if err != nil {
			return nil, apperrors.NewImportError(i+2, row.Symbol, "invalid row", err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// WriteCSV encodes trades as CSV.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	rows := make([]csvTrade, 0, len(trades))
	for i := range trades {
		rows = append(rows, fromTrade(&trades[i]))
	}
	return gocsv.Marshal(&rows, w)
}

func (row csvTrade) toTrade() (models.Trade, error) {
	tradeType, ok := parseSide(row.Type)
	if !ok {
		return models.Trade{}, apperrors.NewValidationError("type", row.Type, "must be long or short")
	}
	if row.Symbol == "" {
		return models.Trade{}, apperrors.NewValidationError("symbol", row.Symbol, "symbol is required")
	}
	if row.Quantity <= 0 {
		return models.Trade{}, apperrors.NewValidationError("quantity", row.Quantity, "quantity must be positive")
	}
	if row.EntryPrice <= 0 {
		return models.Trade{}, apperrors.NewValidationError("entry_price", row.EntryPrice, "entry price must be positive")
	}

	trade := models.Trade{
		Symbol:     row.Symbol,
		Type:       tradeType,
		Quantity:   row.Quantity,
		EntryPrice: row.EntryPrice,
		Status:     models.TradeOpen,
		Notes:      row.Notes,
		Strategy:   row.Strategy,
		EntryDate:  time.Now().UTC(),
	}

	if row.EntryDate != "" {
		d, ok := parseDate(row.EntryDate)
		if !ok {
			return models.Trade{}, apperrors.NewValidationError("entry_date", row.EntryDate, "unrecognized date")
		}
		trade.EntryDate = d
	}
	if row.ExitDate != "" {
		d, ok := parseDate(row.ExitDate)
		if !ok {
			return models.Trade{}, apperrors.NewValidationError("exit_date", row.ExitDate, "unrecognized date")
		}
		trade.ExitDate = &d
	}
	if row.ExitPrice != "" {
		v, err := parseFloatField(row.ExitPrice)
		if err != nil {
			return models.Trade{}, apperrors.NewValidationError("exit_price", row.ExitPrice, "not a number")
		}
		trade.ExitPrice = &v
	}
	if row.PnL != "" {
		v, err := parseFloatField(row.PnL)
		if err != nil {
			return models.Trade{}, apperrors.NewValidationError("pnl", row.PnL, "not a number")
		}
		trade.PnL = &v
	}

	if trade.ExitPrice != nil && trade.PnL != nil {
		trade.Status = models.TradeClosed
		if trade.ExitDate == nil {
			d := trade.EntryDate
			trade.ExitDate = &d
		}
	}
	return trade, nil
}

func fromTrade(t *models.Trade) csvTrade {
	row := csvTrade{
		Symbol:     t.Symbol,
		Type:       string(t.Type),
		Quantity:   t.Quantity,
		EntryPrice: t.EntryPrice,
		EntryDate:  models.DateKey(t.EntryDate),
		Notes:      t.Notes,
		Strategy:   t.Strategy,
	}
	if t.ExitPrice != nil {
		row.ExitPrice = formatFloat(*t.ExitPrice)
	}
	if t.ExitDate != nil {
		row.ExitDate = models.DateKey(*t.ExitDate)
	}
	if t.PnL != nil {
		row.PnL = formatFloat(*t.PnL)
	}
	return row
}
