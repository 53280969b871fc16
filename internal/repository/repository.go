package repository

import (
	"context"
	"errors"

	"github.com/egannguyen/inventory-ledger/internal/entity"
)

var (
	// ErrNotFound is returned when no record matches the given identifier.
	ErrNotFound = errors.New("record not found")

	// ErrStockConflict is returned when the condition of a StockChange no longer holds.
	ErrStockConflict = errors.New("stock changed concurrently")
)

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// Create assigns ID and timestamps on product.
	Create(ctx context.Context, product *entity.Product) error
	// Replace overwrites the mutable fields of the product with the given id.
	Replace(ctx context.Context, id string, product *entity.Product) (*entity.Product, error)
	Delete(ctx context.Context, id string) error
	// ApplyStockChange atomically adjusts one store entry and returns the resulting
	// quantity. It fails with ErrStockConflict when the entry was renamed, removed or
	// would drop below zero.
	ApplyStockChange(ctx context.Context, productID string, change entity.StockChange) (int, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// SaleRepository handles persistence for the append-only sale ledger.
type SaleRepository interface {
	// Create assigns ID and CreatedAt on sale.
	Create(ctx context.Context, sale *entity.Sale) error
	// FindAll returns every sale, newest date first.
	FindAll(ctx context.Context) ([]entity.Sale, error)
}
