// Package performance provides small throughput helpers for bulk
// operations.
package performance

import "sync"

// BatchProcessor processes items in batches for improved efficiency.
// The importer uses it to turn large pastes and CSV files into a small
// number of store transactions.
type BatchProcessor[T any] struct {
	batchSize int
	processor func([]T) error
	items     []T
	mu        sync.Mutex
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor[T any](batchSize int, processor func([]T) error) *BatchProcessor[T] {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BatchProcessor[T]{
		batchSize: batchSize,
		processor: processor,
		items:     make([]T, 0, batchSize),
	}
}

// Add adds an item to the batch. If the batch is full, it's processed.
func (b *BatchProcessor[T]) Add(item T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, item)
	if len(b.items) >= b.batchSize {
		return b.flush()
	}
	return nil
}

// Flush processes any remaining items in the batch.
func (b *BatchProcessor[T]) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flush()
}

func (b *BatchProcessor[T]) flush() error {
	if len(b.items) == 0 {
		return nil
	}

	err := b.processor(b.items)
	b.items = b.items[:0] // Reset slice but keep capacity
	return err
}
