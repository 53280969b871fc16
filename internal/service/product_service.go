package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

// ProductInput is a product as submitted by a client.
type ProductInput struct {
	Name        string
	SKU         string
	Category    string
	Price       *decimal.Decimal
	Description string
	// Stock is nil when the client sent neither stores nor a stock count.
	Stock entity.StockSource
}

// ProductService manages the product catalog.
type ProductService struct {
	productRepo repository.ProductRepository
	cache       ReportCache
}

func NewProductService(productRepo repository.ProductRepository, cache ReportCache) *ProductService {
	return &ProductService{productRepo: productRepo, cache: cache}
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SKU) == "" ||
		strings.TrimSpace(in.Category) == "" || in.Price == nil {
		return entity.Invalidf("Required fields missing")
	}
	if in.Price.IsNegative() {
		return entity.Invalidf("price must not be negative")
	}
	return nil
}

func (in ProductInput) product(stores []entity.StoreStock) *entity.Product {
	return &entity.Product{
		Name:        in.Name,
		SKU:         in.SKU,
		Category:    in.Category,
		Price:       *in.Price,
		Description: in.Description,
		Stores:      stores,
	}
}

// GetProducts returns all products in storage order.
func (s *ProductService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return p, nil
}

// CreateProduct stores a new product. Its stock comes from explicit stores or from a
// legacy stock count, which becomes a single default store.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Stock == nil {
		return nil, entity.Invalidf("Stock or Stores required")
	}
	stores := in.Stock.Stores()
	if err := entity.ValidateStores(stores); err != nil {
		return nil, err
	}

	p := in.product(stores)
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("Product created", "product_id", p.ID, "sku", p.SKU, "stores", len(p.Stores))
	invalidateReports(ctx, s.cache)
	return p, nil
}

// UpdateProduct replaces the product's fields. When the input carries no stock the
// current stores are kept.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var stores []entity.StoreStock
	if in.Stock != nil {
		stores = in.Stock.Stores()
		if err := entity.ValidateStores(stores); err != nil {
			return nil, err
		}
	} else {
		current, err := s.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		stores = current.Stores
	}

	updated, err := s.productRepo.Replace(ctx, id, in.product(stores))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	slog.Info("Product updated", "product_id", id)
	invalidateReports(ctx, s.cache)
	return updated, nil
}

// DeleteProduct removes the product. Its sales stay in the ledger.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	err := s.productRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}

	slog.Info("Product deleted", "product_id", id)
	invalidateReports(ctx, s.cache)
	return nil
}

// SeedProducts loads the demo catalog into an empty repository.
func (s *ProductService) SeedProducts(ctx context.Context) error {
	catalog := DemoCatalog()
	if err := s.productRepo.Seed(ctx, catalog); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	invalidateReports(ctx, s.cache)
	slog.Info("Seeded products", "count", len(catalog))
	return nil
}
