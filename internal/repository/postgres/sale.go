package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

type saleRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSaleRepository creates a new SaleRepository backed by Postgres.
func NewSaleRepository(db *sql.DB) repository.SaleRepository {
	return &saleRepository{db: db, now: time.Now}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	id := uuid.NewString()
	now := r.now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sales (id, product_id, product_name, store_id, store_name, quantity, date, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		id, sale.ProductID, sale.ProductName, sale.StoreID, sale.StoreName, sale.Quantity, sale.Date.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	sale.ID = id
	sale.CreatedAt = now
	return nil
}

func (r *saleRepository) FindAll(ctx context.Context) ([]entity.Sale, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, product_id, product_name, store_id, store_name, quantity, date, created_at FROM sales ORDER BY date DESC, seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []entity.Sale{}
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.StoreID, &s.StoreName, &s.Quantity, &s.Date, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		s.Date = s.Date.UTC()
		s.CreatedAt = s.CreatedAt.UTC()
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	return sales, nil
}
