package importer

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"zentrade/internal/models"
	"zentrade/internal/performance"
	"zentrade/internal/store"
	"zentrade/pkg/id"
)

// insertBatchSize is how many trades go into one store transaction.
const insertBatchSize = 100

// Importer persists parsed trades in batches.
type Importer struct {
	store  store.DataStore
	logger zerolog.Logger
}

// NewImporter creates an importer over the given store.
func NewImporter(dataStore store.DataStore, logger zerolog.Logger) *Importer {
	return &Importer{store: dataStore, logger: logger}
}

// Save assigns IDs and timestamps to parsed trades and writes them through
// a batch processor so large imports stay a handful of transactions.
func (imp *Importer) Save(ctx context.Context, trades []models.Trade) (int, error) {
	now := time.Now().UTC()
	saved := 0

	batch := performance.NewBatchProcessor(insertBatchSize, func(chunk []models.Trade) error {
		if err := imp.store.SaveTrades(ctx, chunk); err != nil {
			return err
		}
		saved += len(chunk)
		return nil
	})

	for i := range trades {
		t := trades[i]
		if t.ID == "" {
			t.ID = id.New()
		}
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := batch.Add(t); err != nil {
			return saved, err
		}
	}
	if err := batch.Flush(); err != nil {
		return saved, err
	}

	imp.logger.Info().
		Str("event", "import").
		Int("trades", saved).
		Msg("Trades imported")
	return saved, nil
}

func parseFloatField(s string) (float64, error) {
	return strconv.ParseFloat(cleanNumber(s), 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
