package entity

import "time"

// Legacy stock is booked into a single synthesized store.
const (
	DefaultStoreName     = "Default Store"
	DefaultStoreLocation = "Main Warehouse"
)

// StockSource is the initial stock of a product as submitted by a client: either
// an explicit list of stores or a bare legacy stock count.
type StockSource interface {
	// Stores resolves the source into the canonical store sequence.
	Stores() []StoreStock
}

// ExplicitStores is stock submitted store by store. An empty list is valid.
type ExplicitStores struct {
	Entries []StoreStock
}

func (s ExplicitStores) Stores() []StoreStock {
	stores := make([]StoreStock, len(s.Entries))
	copy(stores, s.Entries)
	return stores
}

// LegacyStockCount is a single stock figure from clients that predate multi-store stock.
type LegacyStockCount struct {
	Quantity     int
	LastSoldDate time.Time
}

func (s LegacyStockCount) Stores() []StoreStock {
	soldAt := s.LastSoldDate
	if soldAt.IsZero() {
		soldAt = DefaultLastSoldDate
	}
	return []StoreStock{{
		StoreName:    DefaultStoreName,
		Location:     DefaultStoreLocation,
		Quantity:     s.Quantity,
		LastSoldDate: soldAt,
	}}
}

// ValidateStores rejects stock entries that could never have been produced by the ledger.
func ValidateStores(stores []StoreStock) error {
	for i, s := range stores {
		if s.Quantity < 0 {
			return Invalidf("stores[%d].quantity must not be negative", i)
		}
	}
	return nil
}
