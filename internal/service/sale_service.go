package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/messaging"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

// A conflicting concurrent write gets one re-read before the sale is refused.
const maxStockAttempts = 2

// SaleService applies sales to product stock and keeps the sale ledger.
type SaleService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	publisher   messaging.Publisher
	cache       ReportCache
	now         func() time.Time
}

func NewSaleService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	publisher messaging.Publisher,
	cache ReportCache,
) *SaleService {
	return &SaleService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		publisher:   publisher,
		cache:       cache,
		now:         time.Now,
	}
}

func validateSale(cmd entity.RecordSale) (time.Time, error) {
	if cmd.ProductID == "" || cmd.ProductName == "" || cmd.StoreID == "" || cmd.StoreName == "" ||
		cmd.Quantity == 0 || strings.TrimSpace(cmd.Date) == "" {
		return time.Time{}, entity.Invalidf("Missing required fields")
	}
	if cmd.Quantity < 0 {
		return time.Time{}, entity.Invalidf("quantity must be positive")
	}
	soldAt, err := entity.ParseTimestamp(cmd.Date)
	if err != nil {
		return time.Time{}, entity.Invalidf("invalid sale date %q", cmd.Date)
	}
	return soldAt, nil
}

// RecordSale takes cmd.Quantity units out of the first store of the product named
// cmd.StoreName, stamps the store's last sale date and appends a Sale to the ledger.
// The store is located by name; cmd.StoreID is only recorded.
func (s *SaleService) RecordSale(ctx context.Context, cmd entity.RecordSale) (*entity.Sale, error) {
	soldAt, err := validateSale(cmd)
	if err != nil {
		return nil, err
	}

	var (
		change    entity.StockChange
		previous  time.Time
		remaining int
	)
	for attempt := 1; ; attempt++ {
		product, err := s.productRepo.FindByID(ctx, cmd.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrProductNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", cmd.ProductID, err)
		}

		idx, ok := product.FindStore(cmd.StoreName)
		if !ok {
			return nil, entity.ErrStoreNotFound
		}
		store := product.Stores[idx]
		if store.Quantity < cmd.Quantity {
			return nil, entity.ErrInsufficientStock
		}

		change = entity.StockChange{
			StoreIndex:   idx,
			StoreName:    cmd.StoreName,
			Delta:        -cmd.Quantity,
			LastSoldDate: soldAt,
		}
		remaining, err = s.productRepo.ApplyStockChange(ctx, cmd.ProductID, change)
		if err == nil {
			previous = store.LastSoldDate
			break
		}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, entity.ErrProductNotFound
		case errors.Is(err, repository.ErrStockConflict) && attempt < maxStockAttempts:
			slog.Warn("Stock changed during sale, retrying", "product_id", cmd.ProductID, "store", cmd.StoreName)
			continue
		case errors.Is(err, repository.ErrStockConflict):
			return nil, entity.ErrInsufficientStock
		default:
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
	}

	sale := &entity.Sale{
		ProductID:   cmd.ProductID,
		ProductName: cmd.ProductName,
		StoreID:     cmd.StoreID,
		StoreName:   cmd.StoreName,
		Quantity:    cmd.Quantity,
		Date:        soldAt,
	}
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		s.revertStockChange(ctx, cmd.ProductID, change, previous)
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	slog.Info("Sale recorded", "sale_id", sale.ID, "product_id", sale.ProductID, "store", sale.StoreName, "quantity", sale.Quantity, "remaining", remaining)

	invalidateReports(ctx, s.cache)
	event := entity.SaleRecorded{Sale: *sale, RemainingQuantity: remaining, RecordedAt: s.now().UTC()}
	if err := s.publisher.PublishEvent(ctx, sale.ProductID, event); err != nil {
		slog.Error("Failed to publish SaleRecorded", "sale_id", sale.ID, "err", err)
	}

	return sale, nil
}

// revertStockChange gives back the units of a sale whose ledger entry could not be written.
// The previous sale date comes back only if no other sale has stamped the store since.
func (s *SaleService) revertStockChange(ctx context.Context, productID string, applied entity.StockChange, previous time.Time) {
	undo := entity.StockChange{
		StoreIndex:           applied.StoreIndex,
		StoreName:            applied.StoreName,
		Delta:                -applied.Delta,
		LastSoldDate:         previous,
		ExpectedLastSoldDate: applied.LastSoldDate,
	}
	if _, err := s.productRepo.ApplyStockChange(context.WithoutCancel(ctx), productID, undo); err != nil {
		slog.Error("Failed to restore stock after sale write failure",
			"product_id", productID, "store", applied.StoreName, "quantity", undo.Delta, "err", err)
		return
	}
	slog.Warn("Restored stock after sale write failure", "product_id", productID, "store", applied.StoreName, "quantity", undo.Delta)
}

// ListSales returns the ledger, newest sale date first.
func (s *SaleService) ListSales(ctx context.Context) ([]entity.Sale, error) {
	sales, err := s.saleRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}
