package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
	"github.com/egannguyen/inventory-ledger/internal/repository/memory"
)

var reportNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func seedStock(t *testing.T, repo repository.ProductRepository, name string, qty int, price int64, lastSold time.Time) {
	t.Helper()
	p := &entity.Product{
		Name:     name,
		SKU:      name,
		Category: "General",
		Price:    decimal.NewFromInt(price),
		Stores:   []entity.StoreStock{{StoreName: "Main", Quantity: qty, LastSoldDate: lastSold}},
	}
	require.NoError(t, repo.Create(context.Background(), p))
}

func newReportService(t *testing.T, cache ReportCache) (*DeadInventoryService, repository.ProductRepository) {
	t.Helper()
	repo := memory.NewProductRepository()
	svc := NewDeadInventoryService(repo, cache, entity.DefaultDeadInventoryThresholdDays)
	svc.now = func() time.Time { return reportNow }
	return svc, repo
}

func TestComputeDeadInventory(t *testing.T) {
	svc, repo := newReportService(t, NoCache())
	seedStock(t, repo, "stale", 3, 100, reportNow.AddDate(0, 0, -180))
	seedStock(t, repo, "recent", 3, 100, reportNow.AddDate(0, 0, -179))
	seedStock(t, repo, "empty", 0, 100, reportNow.AddDate(-1, 0, 0))

	items, err := svc.ComputeDeadInventory(context.Background(), reportNow, 180)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "stale", items[0].Name)
	assert.Equal(t, "300", items[0].EstimatedValue.String())
}

func TestComputeDeadInventory_CustomThreshold(t *testing.T) {
	svc, repo := newReportService(t, NoCache())
	seedStock(t, repo, "month-old", 8, 2, reportNow.AddDate(0, 0, -30))

	items, err := svc.ComputeDeadInventory(context.Background(), reportNow, 30)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.ActionClearanceSale, items[0].AISuggestedAction)

	_, err = svc.ComputeDeadInventory(context.Background(), reportNow, -1)
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestReport_UsesCache(t *testing.T) {
	cache := newMapCache()
	svc, repo := newReportService(t, cache)
	seedStock(t, repo, "stale", 2, 10, reportNow.AddDate(-1, 0, 0))

	first, err := svc.Report(context.Background(), 180)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A product added behind the cache's back stays invisible until invalidation.
	seedStock(t, repo, "stale-2", 2, 10, reportNow.AddDate(-1, 0, 0))
	cached, err := svc.Report(context.Background(), 180)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	require.NoError(t, cache.Invalidate(context.Background()))
	fresh, err := svc.Report(context.Background(), 180)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestReport_InvalidationDuringComputeIsNotMasked(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	products := memory.NewProductRepository()
	seedStock(t, products, "stale", 3, 10, reportNow.AddDate(-1, 0, 0))

	// A sale drains the product while the first report is being computed.
	racing := &invalidatingProductRepository{ProductRepository: products}
	racing.duringFindAll = func() {
		all, err := products.FindAll(ctx)
		require.NoError(t, err)
		_, err = products.ApplyStockChange(ctx, all[0].ID, entity.StockChange{
			StoreName:    "Main",
			Delta:        -3,
			LastSoldDate: all[0].Stores[0].LastSoldDate,
		})
		require.NoError(t, err)
		require.NoError(t, cache.Invalidate(ctx))
	}
	svc := NewDeadInventoryService(racing, cache, 180)
	svc.now = func() time.Time { return reportNow }

	first, err := svc.Report(ctx, 180)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := svc.Report(ctx, 180)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestReport_SkipsCacheWriteWhenReadFails(t *testing.T) {
	cache := &brokenCache{}
	svc, repo := newReportService(t, cache)
	seedStock(t, repo, "stale", 2, 10, reportNow.AddDate(-1, 0, 0))

	items, err := svc.Report(context.Background(), 180)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Zero(t, cache.sets)
}

func TestReport_StorageFailure(t *testing.T) {
	svc := NewDeadInventoryService(brokenProductRepository{}, NoCache(), 180)

	_, err := svc.Report(context.Background(), 180)

	assert.ErrorIs(t, err, errStorage)
}

func TestSummary(t *testing.T) {
	svc, repo := newReportService(t, NoCache())
	seedStock(t, repo, "a", 3, 100, reportNow.AddDate(-1, 0, 0))
	seedStock(t, repo, "b", 6, 5, reportNow.AddDate(-2, 0, 0))
	seedStock(t, repo, "c", 6, 5, reportNow.AddDate(0, 0, -2))

	summary, err := svc.Summary(context.Background(), svc.DefaultThreshold())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, 9, summary.TotalUnits)
	assert.Equal(t, "330", summary.TotalValue.String())
}

func TestNewDeadInventoryService_NegativeThresholdFallsBack(t *testing.T) {
	svc := NewDeadInventoryService(memory.NewProductRepository(), NoCache(), -5)

	assert.Equal(t, 180, svc.DefaultThreshold())
}
