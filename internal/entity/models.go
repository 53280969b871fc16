package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and valuations are JSON numbers wherever they are encoded.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a catalog item together with its per-store stock.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"SKU"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stores      []StoreStock    `json:"stores"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StoreStock is the stock a product holds in one store. It has no identity of its own.
type StoreStock struct {
	StoreName    string    `json:"storeName"`
	Location     string    `json:"location"`
	Quantity     int       `json:"quantity"`
	LastSoldDate time.Time `json:"lastSoldDate,omitzero"`
}

// HasSaleDate reports whether the store carries a last-sold timestamp.
func (s StoreStock) HasSaleDate() bool {
	return !s.LastSoldDate.IsZero()
}

// PrimaryStore returns the store whose figures stand for the product as a whole.
// It is always the first entry in Stores.
func (p *Product) PrimaryStore() (StoreStock, bool) {
	if len(p.Stores) == 0 {
		return StoreStock{}, false
	}
	return p.Stores[0], true
}

// FindStore returns the index of the first store named storeName. The match is case-sensitive.
func (p *Product) FindStore(storeName string) (int, bool) {
	for i, s := range p.Stores {
		if s.StoreName == storeName {
			return i, true
		}
	}
	return -1, false
}

// IsMultiStore reports whether stock is split across more than one store.
func (p *Product) IsMultiStore() bool {
	return len(p.Stores) > 1
}

// Sale is an immutable record of units sold from one store of one product.
type Sale struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	StoreID     string    `json:"storeId"`
	StoreName   string    `json:"storeName"`
	Quantity    int       `json:"quantity"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StockChange describes a conditional adjustment of one store entry.
// The change applies only while the entry at StoreIndex is still named StoreName
// and its quantity stays non-negative after adding Delta.
//
// When ExpectedLastSoldDate is set, LastSoldDate is written only if the entry still
// carries that date. Delta is applied either way.
type StockChange struct {
	StoreIndex           int
	StoreName            string
	Delta                int
	LastSoldDate         time.Time
	ExpectedLastSoldDate time.Time
}

// UpdatesLastSoldDate reports whether the change may stamp an entry currently dated current.
func (c StockChange) UpdatesLastSoldDate(current time.Time) bool {
	return c.ExpectedLastSoldDate.IsZero() || c.ExpectedLastSoldDate.Equal(current)
}

// --- Commands ---

// RecordSale is the command to sell units from a named store of a product.
type RecordSale struct {
	ProductID   string
	ProductName string
	StoreID     string
	StoreName   string
	Quantity    int
	Date        string
}

// --- Events ---

// Event represents a domain event.
type Event interface {
	EventType() string
}

// SaleRecorded is emitted once a sale has been persisted.
type SaleRecorded struct {
	Sale              Sale      `json:"sale"`
	RemainingQuantity int       `json:"remainingQuantity"`
	RecordedAt        time.Time `json:"recordedAt"`
}

func (e SaleRecorded) EventType() string { return "SaleRecorded" }
