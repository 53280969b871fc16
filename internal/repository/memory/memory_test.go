package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

func newProduct(stores ...entity.StoreStock) *entity.Product {
	return &entity.Product{
		Name:     "Desk Lamp",
		SKU:      "LAMP-1",
		Category: "Home",
		Price:    decimal.RequireFromString("19.99"),
		Stores:   stores,
	}
}

func TestProductRepository_CreateAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()

	p := newProduct(entity.StoreStock{StoreName: "Main", Quantity: 2})
	require.NoError(t, repo.Create(ctx, p))

	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", found.Name)
	assert.True(t, decimal.RequireFromString("19.99").Equal(found.Price))
}

func TestProductRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newProduct(entity.StoreStock{StoreName: "Main", Quantity: 2})
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	found.Stores[0].Quantity = 100

	again, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Stores[0].Quantity)
}

func TestProductRepository_MissingProduct(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Replace(ctx, "nope", newProduct())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "nope"), repository.ErrNotFound)

	_, err = repo.ApplyStockChange(ctx, "nope", entity.StockChange{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductRepository_ReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newProduct(entity.StoreStock{StoreName: "Main", Quantity: 2})
	require.NoError(t, repo.Create(ctx, p))

	replacement := newProduct(entity.StoreStock{StoreName: "Annex", Quantity: 7})
	replacement.Name = "Floor Lamp"
	updated, err := repo.Replace(ctx, p.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Floor Lamp", updated.Name)
	assert.Equal(t, "Annex", updated.Stores[0].StoreName)
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt))

	require.NoError(t, repo.Delete(ctx, p.ID))
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProductRepository_ApplyStockChange(t *testing.T) {
	ctx := context.Background()
	soldAt := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		change    entity.StockChange
		wantErr   error
		wantQty   int
		wantStore int
	}{
		{"decrements matching store", entity.StockChange{StoreIndex: 1, StoreName: "Outlet", Delta: -3, LastSoldDate: soldAt}, nil, 2, 1},
		{"drains to zero", entity.StockChange{StoreIndex: 1, StoreName: "Outlet", Delta: -5, LastSoldDate: soldAt}, nil, 0, 1},
		{"restock", entity.StockChange{StoreIndex: 0, StoreName: "Main", Delta: 4, LastSoldDate: soldAt}, nil, 14, 0},
		{"would go negative", entity.StockChange{StoreIndex: 1, StoreName: "Outlet", Delta: -6}, repository.ErrStockConflict, 5, 1},
		{"renamed store", entity.StockChange{StoreIndex: 1, StoreName: "Main", Delta: -1}, repository.ErrStockConflict, 5, 1},
		{"index out of range", entity.StockChange{StoreIndex: 2, StoreName: "Outlet", Delta: -1}, repository.ErrStockConflict, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewProductRepository()
			p := newProduct(
				entity.StoreStock{StoreName: "Main", Quantity: 10},
				entity.StoreStock{StoreName: "Outlet", Quantity: 5},
			)
			require.NoError(t, repo.Create(ctx, p))

			qty, err := repo.ApplyStockChange(ctx, p.ID, tt.change)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantQty, qty)
			}

			found, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, found.Stores[tt.wantStore].Quantity)
			if tt.wantErr == nil {
				assert.True(t, soldAt.Equal(found.Stores[tt.wantStore].LastSoldDate))
			}
		})
	}
}

func TestProductRepository_ConcurrentDecrementsNeverOversell(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p := newProduct(entity.StoreStock{StoreName: "Main", Quantity: 10})
	require.NoError(t, repo.Create(ctx, p))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyStockChange(ctx, p.ID, entity.StockChange{StoreIndex: 0, StoreName: "Main", Delta: -1})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, found.Stores[0].Quantity)
}

func TestProductRepository_SeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()

	require.NoError(t, repo.Seed(ctx, []entity.Product{*newProduct(), *newProduct()}))
	require.NoError(t, repo.Seed(ctx, []entity.Product{*newProduct()}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductRepository_ConditionalSaleDate(t *testing.T) {
	ctx := context.Background()
	stamped := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	newer := stamped.AddDate(0, 0, 2)
	previous := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		current  time.Time
		expected time.Time
	}{
		{"restores while unchanged", stamped, previous},
		{"keeps a newer sale", newer, newer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewProductRepository()
			p := newProduct(entity.StoreStock{StoreName: "Main", Quantity: 4, LastSoldDate: tt.current})
			require.NoError(t, repo.Create(ctx, p))

			qty, err := repo.ApplyStockChange(ctx, p.ID, entity.StockChange{
				StoreIndex:           0,
				StoreName:            "Main",
				Delta:                3,
				LastSoldDate:         previous,
				ExpectedLastSoldDate: stamped,
			})
			require.NoError(t, err)
			assert.Equal(t, 7, qty)

			found, err := repo.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(found.Stores[0].LastSoldDate), "got %s", found.Stores[0].LastSoldDate)
		})
	}
}

func TestProductRepository_ConcurrentSeedsLoadOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	catalog := []entity.Product{*newProduct(), *newProduct(), *newProduct()}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Seed(ctx, catalog))
		}()
	}
	wg.Wait()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(catalog))
}

func TestSaleRepository_FindAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewSaleRepository()

	dates := []time.Time{
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	var ids []string
	for _, d := range dates {
		sale := &entity.Sale{ProductID: "p", StoreName: "Main", Quantity: 1, Date: d}
		require.NoError(t, repo.Create(ctx, sale))
		require.NotEmpty(t, sale.ID)
		ids = append(ids, sale.ID)
	}

	sales, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 4)

	// Equal dates keep insertion order.
	assert.Equal(t, []string{ids[1], ids[0], ids[2], ids[3]},
		[]string{sales[0].ID, sales[1].ID, sales[2].ID, sales[3].ID})
}

func TestSaleRepository_EmptyListIsNotNil(t *testing.T) {
	sales, err := NewSaleRepository().FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)
}
