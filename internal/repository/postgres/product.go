package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

const productColumns = "id, name, sku, category, price, description, stores, created_at, updated_at"

type productRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (entity.Product, error) {
	var (
		p      entity.Product
		stores storesColumn
	)
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.Price, &p.Description, &stores, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return entity.Product{}, err
	}
	p.Stores = stores
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	now := r.now().UTC()
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products (id, name, sku, category, price, description, stores, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)",
		id, product.Name, product.SKU, product.Category, product.Price, product.Description, storesColumn(product.Stores), now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	product.ID = id
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (r *productRepository) Replace(ctx context.Context, id string, product *entity.Product) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE products SET name = $2, sku = $3, category = $4, price = $5, description = $6, stores = $7, updated_at = $8 WHERE id = $1 RETURNING "+productColumns,
		id, product.Name, product.SKU, product.Category, product.Price, product.Description, storesColumn(product.Stores), r.now().UTC(),
	)
	updated, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ApplyStockChange locks the product row for the duration of the check and the write.
func (r *productRepository) ApplyStockChange(ctx context.Context, productID string, change entity.StockChange) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stores storesColumn
	err = tx.QueryRowContext(ctx, "SELECT stores FROM products WHERE id = $1 FOR UPDATE", productID).Scan(&stores)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock product: %w", err)
	}

	if change.StoreIndex < 0 || change.StoreIndex >= len(stores) {
		return 0, repository.ErrStockConflict
	}
	store := &stores[change.StoreIndex]
	if store.StoreName != change.StoreName || store.Quantity+change.Delta < 0 {
		return 0, repository.ErrStockConflict
	}
	store.Quantity += change.Delta
	if change.UpdatesLastSoldDate(store.LastSoldDate) {
		store.LastSoldDate = change.LastSoldDate
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE products SET stores = $2, updated_at = $3 WHERE id = $1",
		productID, stores, r.now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update product stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return store.Quantity, nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // already seeded
	}

	for i := range products {
		p := products[i]
		if err := r.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
	}
	return nil
}
