// Package importer turns pasted clipboard text and CSV files into trade
// records.
//
// The paste parser is a best-effort adapter for text copied out of a
// charting tool. It first tries the tool's tabular export shape and falls
// back to plain-text heuristics; when neither yields a single trade it
// fails with ErrParseFailed and the caller is expected to surface that to
// the user rather than guess.
package importer

import (
	"strconv"
	"strings"
	"time"

	apperrors "zentrade/internal/errors"
	"zentrade/internal/models"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

// ParsePaste parses clipboard text into trades. Rows that cannot be parsed
// are skipped; if no row parses at all the whole paste is rejected.
func ParsePaste(text string) ([]models.Trade, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, apperrors.ErrParseFailed
	}

	var trades []models.Trade
	for _, line := range lines {
		if t, ok := parseTabular(line); ok {
			trades = append(trades, t)
			continue
		}
		if t, ok := parseFreeform(line); ok {
			trades = append(trades, t)
		}
	}

	if len(trades) == 0 {
		return nil, apperrors.ErrParseFailed
	}
	return trades, nil
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseTabular handles the charting tool's copy format: tab-separated
// columns symbol, side, quantity, entry price, exit price, pnl, entry date,
// exit date. Header rows and short rows simply fail the parse.
func parseTabular(line string) (models.Trade, bool) {
	cols := strings.Split(line, "\t")
	if len(cols) < 4 {
		return models.Trade{}, false
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	tradeType, ok := parseSide(cols[1])
	if !ok {
		return models.Trade{}, false
	}
	quantity, err := strconv.ParseFloat(cols[2], 64)
	if err != nil || quantity <= 0 {
		return models.Trade{}, false
	}
	entryPrice, err := strconv.ParseFloat(strings.TrimPrefix(cols[3], "$"), 64)
	if err != nil || entryPrice <= 0 {
		return models.Trade{}, false
	}

	trade := models.Trade{
		Symbol:     strings.ToUpper(cols[0]),
		Type:       tradeType,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		Status:     models.TradeOpen,
		EntryDate:  time.Now().UTC(),
	}

	if len(cols) > 4 && cols[4] != "" {
		if exit, err := strconv.ParseFloat(strings.TrimPrefix(cols[4], "$"), 64); err == nil {
			trade.ExitPrice = &exit
		}
	}
	if len(cols) > 5 && cols[5] != "" {
		if pnl, err := strconv.ParseFloat(cleanNumber(cols[5]), 64); err == nil {
			trade.PnL = &pnl
		}
	}
	if len(cols) > 6 && cols[6] != "" {
		if d, ok := parseDate(cols[6]); ok {
			trade.EntryDate = d
		}
	}
	if len(cols) > 7 && cols[7] != "" {
		if d, ok := parseDate(cols[7]); ok {
			trade.ExitDate = &d
		}
	}

	if trade.ExitPrice != nil && trade.PnL != nil {
		trade.Status = models.TradeClosed
		if trade.ExitDate == nil {
			d := trade.EntryDate
			trade.ExitDate = &d
		}
	} else {
		// Exit price and pnl come together or not at all; a lone half is
		// dropped and the trade stays open.
		trade.ExitPrice = nil
		trade.PnL = nil
		trade.ExitDate = nil
	}
	return trade, true
}

// parseFreeform handles loose lines such as
// "AAPL long 100 @ 190.50 -> 195.20 pnl 470".
// It needs a symbol, a direction and at least quantity and entry price to
// accept the line.
func parseFreeform(line string) (models.Trade, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return models.Trade{}, false
	}

	trade := models.Trade{
		Status:    models.TradeOpen,
		EntryDate: time.Now().UTC(),
	}

	var numbers []float64
	for _, f := range fields {
		if tradeType, ok := parseSide(f); ok && trade.Type == "" {
			trade.Type = tradeType
			continue
		}
		if n, err := strconv.ParseFloat(cleanNumber(f), 64); err == nil {
			numbers = append(numbers, n)
			continue
		}
		if trade.Symbol == "" && isSymbol(f) {
			trade.Symbol = strings.ToUpper(f)
		}
	}

	if trade.Symbol == "" || trade.Type == "" || len(numbers) < 2 {
		return models.Trade{}, false
	}

	// Positional meaning: quantity, entry price, then optionally exit
	// price and pnl.
	trade.Quantity = numbers[0]
	trade.EntryPrice = numbers[1]
	if trade.Quantity <= 0 || trade.EntryPrice <= 0 {
		return models.Trade{}, false
	}
	// An exit price only counts when its pnl is there too; three numbers
	// leaves the trade open.
	if len(numbers) > 3 {
		exit := numbers[2]
		pnl := numbers[3]
		trade.ExitPrice = &exit
		trade.PnL = &pnl
		trade.Status = models.TradeClosed
		d := trade.EntryDate
		trade.ExitDate = &d
	}
	return trade, true
}

func parseSide(s string) (models.TradeType, bool) {
	switch strings.ToLower(s) {
	case "long", "buy", "b":
		return models.TradeLong, true
	case "short", "sell", "s":
		return models.TradeShort, true
	}
	return "", false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cleanNumber(s string) string {
	s = strings.TrimPrefix(s, "+")
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if negative {
		s = "-" + s
	}
	return s
}

func isSymbol(s string) bool {
	if len(s) == 0 || len(s) > 10 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') && r != '.' && r != ':' {
			return false
		}
	}
	return true
}
