package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

// DeadInventoryService reports slow-moving stock. It never writes products.
type DeadInventoryService struct {
	productRepo   repository.ProductRepository
	cache         ReportCache
	thresholdDays int
	now           func() time.Time
}

func NewDeadInventoryService(productRepo repository.ProductRepository, cache ReportCache, thresholdDays int) *DeadInventoryService {
	if thresholdDays < 0 {
		thresholdDays = entity.DefaultDeadInventoryThresholdDays
	}
	return &DeadInventoryService{
		productRepo:   productRepo,
		cache:         cache,
		thresholdDays: thresholdDays,
		now:           time.Now,
	}
}

// DefaultThreshold is the threshold used when a caller does not pick one.
func (s *DeadInventoryService) DefaultThreshold() int {
	return s.thresholdDays
}

// ComputeDeadInventory classifies every product as of now, bypassing the cache.
func (s *DeadInventoryService) ComputeDeadInventory(ctx context.Context, now time.Time, thresholdDays int) ([]entity.DeadInventoryItem, error) {
	if thresholdDays < 0 {
		return nil, entity.Invalidf("thresholdDays must not be negative")
	}
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return entity.ClassifyDeadInventory(products, now, thresholdDays), nil
}

// Report returns the current dead-inventory report, served from the cache when possible.
func (s *DeadInventoryService) Report(ctx context.Context, thresholdDays int) ([]entity.DeadInventoryItem, error) {
	if thresholdDays < 0 {
		return nil, entity.Invalidf("thresholdDays must not be negative")
	}

	cached, generation, hit, cacheErr := s.cache.Get(ctx, thresholdDays)
	if cacheErr != nil {
		slog.Warn("Dead-inventory cache read failed", "err", cacheErr)
	}
	if hit {
		return cached, nil
	}

	items, err := s.ComputeDeadInventory(ctx, s.now(), thresholdDays)
	if err != nil {
		return nil, err
	}
	// Without a generation from Get there is nothing safe to write under.
	if cacheErr == nil {
		if err := s.cache.Set(ctx, generation, thresholdDays, items); err != nil {
			slog.Warn("Dead-inventory cache write failed", "err", err)
		}
	}
	slog.Debug("Dead inventory computed", "threshold_days", thresholdDays, "items", len(items))
	return items, nil
}

// Summary totals the current report.
func (s *DeadInventoryService) Summary(ctx context.Context, thresholdDays int) (entity.DeadInventorySummary, error) {
	items, err := s.Report(ctx, thresholdDays)
	if err != nil {
		return entity.DeadInventorySummary{}, err
	}
	return entity.SummarizeDeadInventory(items), nil
}
