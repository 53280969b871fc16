// Package memory keeps products and sales in process memory. It backs tests and
// single-node demo runs where no database is available.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

type productRepository struct {
	mu       sync.RWMutex
	products []entity.Product
	now      func() time.Time
}

// NewProductRepository creates an empty in-memory ProductRepository.
func NewProductRepository() repository.ProductRepository {
	return &productRepository{now: time.Now}
}

func cloneProduct(p entity.Product) entity.Product {
	p.Stores = slices.Clone(p.Stores)
	return p
}

func (r *productRepository) indexOf(id string) int {
	return slices.IndexFunc(r.products, func(p entity.Product) bool { return p.ID == id })
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, cloneProduct(p))
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	p := cloneProduct(r.products[i])
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insert(product)
	return nil
}

// insert assigns identity to product and stores a copy. Callers hold mu.
func (r *productRepository) insert(product *entity.Product) {
	now := r.now().UTC()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products = append(r.products, cloneProduct(*product))
}

func (r *productRepository) Replace(ctx context.Context, id string, product *entity.Product) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}

	current := &r.products[i]
	current.Name = product.Name
	current.SKU = product.SKU
	current.Category = product.Category
	current.Price = product.Price
	current.Description = product.Description
	current.Stores = slices.Clone(product.Stores)
	current.UpdatedAt = r.now().UTC()

	updated := cloneProduct(*current)
	return &updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.products = slices.Delete(r.products, i, i+1)
	return nil
}

func (r *productRepository) ApplyStockChange(ctx context.Context, productID string, change entity.StockChange) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(productID)
	if i < 0 {
		return 0, repository.ErrNotFound
	}

	p := &r.products[i]
	if change.StoreIndex < 0 || change.StoreIndex >= len(p.Stores) {
		return 0, repository.ErrStockConflict
	}
	store := &p.Stores[change.StoreIndex]
	if store.StoreName != change.StoreName || store.Quantity+change.Delta < 0 {
		return 0, repository.ErrStockConflict
	}

	store.Quantity += change.Delta
	if change.UpdatesLastSoldDate(store.LastSoldDate) {
		store.LastSoldDate = change.LastSoldDate
	}
	p.UpdatedAt = r.now().UTC()
	return store.Quantity, nil
}

// Seed checks for emptiness and inserts under one lock, so concurrent seeds load the
// catalog once.
func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.products) > 0 {
		return nil
	}
	for i := range products {
		p := cloneProduct(products[i])
		r.insert(&p)
	}
	return nil
}

type saleRepository struct {
	mu    sync.RWMutex
	sales []entity.Sale
	now   func() time.Time
}

// NewSaleRepository creates an empty in-memory SaleRepository.
func NewSaleRepository() repository.SaleRepository {
	return &saleRepository{now: time.Now}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sale.ID = uuid.NewString()
	sale.CreatedAt = r.now().UTC()
	r.sales = append(r.sales, *sale)
	return nil
}

func (r *saleRepository) FindAll(ctx context.Context) ([]entity.Sale, error) {
	r.mu.RLock()
	sales := slices.Clone(r.sales)
	r.mu.RUnlock()

	if sales == nil {
		sales = []entity.Sale{}
	}
	slices.SortStableFunc(sales, func(a, b entity.Sale) int {
		return b.Date.Compare(a.Date)
	})
	return sales, nil
}
