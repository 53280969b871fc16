package service

import (
	"context"
	"log/slog"

	"github.com/egannguyen/inventory-ledger/internal/entity"
)

// ReportCache stores computed dead-inventory reports keyed by threshold and
// cache generation.
type ReportCache interface {
	// Get looks up a report in the current generation and returns that generation
	// even on a miss.
	Get(ctx context.Context, thresholdDays int) (items []entity.DeadInventoryItem, generation int64, ok bool, err error)
	// Set stores a report under the generation its inputs were read in. A report
	// computed across an invalidation lands in a retired generation and is never served.
	Set(ctx context.Context, generation int64, thresholdDays int, items []entity.DeadInventoryItem) error
	// Invalidate retires the current generation. Called after any stock or catalog write.
	Invalidate(ctx context.Context) error
}

type noCache struct{}

// NoCache returns a ReportCache that never holds anything.
func NoCache() ReportCache { return noCache{} }

func (noCache) Get(context.Context, int) ([]entity.DeadInventoryItem, int64, bool, error) {
	return nil, 0, false, nil
}

func (noCache) Set(context.Context, int64, int, []entity.DeadInventoryItem) error { return nil }

func (noCache) Invalidate(context.Context) error { return nil }

func invalidateReports(ctx context.Context, cache ReportCache) {
	if err := cache.Invalidate(ctx); err != nil {
		slog.Warn("Failed to invalidate dead-inventory cache", "err", err)
	}
}
