package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/inventory-ledger/internal/entity"
)

func soldOn(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func demoProduct(name, sku, category, price, description string, stores ...entity.StoreStock) entity.Product {
	return entity.Product{
		Name:        name,
		SKU:         sku,
		Category:    category,
		Price:       decimal.RequireFromString(price),
		Description: description,
		Stores:      stores,
	}
}

func warehouseStock(quantity int, lastSold time.Time) entity.StoreStock {
	return entity.StoreStock{
		StoreName:    entity.DefaultStoreName,
		Location:     entity.DefaultStoreLocation,
		Quantity:     quantity,
		LastSoldDate: lastSold,
	}
}

// DemoCatalog is a small catalog with a mix of fast and slow movers.
func DemoCatalog() []entity.Product {
	return []entity.Product{
		demoProduct("Wireless Noise-Cancelling Headphones", "ELEC-001", "Electronics", "349.99",
			"Over-ear headphones with active noise cancellation.",
			warehouseStock(12, soldOn(2024, time.January, 1)),
			entity.StoreStock{StoreName: "City Outlet", Location: "Downtown", Quantity: 4, LastSoldDate: soldOn(2025, time.June, 2)},
		),
		demoProduct("Mechanical Keyboard RGB", "ELEC-002", "Electronics", "179.99",
			"Hot-swappable switches with per-key lighting.",
			warehouseStock(3, soldOn(2024, time.March, 15)),
		),
		demoProduct("Ergonomic Office Chair", "FURN-001", "Furniture", "549.99",
			"Adjustable lumbar support and breathable mesh.",
			warehouseStock(0, soldOn(2023, time.November, 20)),
		),
		demoProduct("Smart LED Desk Lamp", "HOME-001", "Home", "89.99",
			"Adjustable color temperature with USB charging.",
			warehouseStock(40, time.Now().UTC().AddDate(0, 0, -7)),
		),
	}
}
