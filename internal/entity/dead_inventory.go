package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDeadInventoryThresholdDays is how long a primary store may go without a sale
	// before its stock counts as dead.
	DefaultDeadInventoryThresholdDays = 180

	// clearanceMinQuantity is the smallest stock level that warrants a clearance sale.
	clearanceMinQuantity = 6

	ActionClearanceSale = "Clearance Sale"
	ActionBundleOffer   = "Bundle Offer"
)

// DeadInventoryItem is a slow-moving product with its valuation and a suggested action.
type DeadInventoryItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Stock             int             `json:"stock"`
	DaysWithoutSale   int             `json:"daysWithoutSale"`
	EstimatedValue    decimal.Decimal `json:"estimatedValue"`
	AISuggestedAction string          `json:"aiSuggestedAction"`
}

// DeadInventorySummary aggregates a dead-inventory report.
type DeadInventorySummary struct {
	TotalItems int             `json:"totalItems"`
	TotalUnits int             `json:"totalUnits"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// DaysBetween counts whole days elapsed from since to now, rounding down.
func DaysBetween(since, now time.Time) int {
	return int(math.Floor(now.Sub(since).Hours() / 24))
}

// SuggestAction picks a disposal strategy from the stock level alone.
func SuggestAction(quantity int) string {
	if quantity >= clearanceMinQuantity {
		return ActionClearanceSale
	}
	return ActionBundleOffer
}

// ClassifyDeadInventory returns the products whose primary store has stock but has not
// sold for at least thresholdDays. Other stores are not considered. Items keep the
// order of products.
func ClassifyDeadInventory(products []Product, now time.Time, thresholdDays int) []DeadInventoryItem {
	items := make([]DeadInventoryItem, 0)
	for i := range products {
		p := &products[i]
		store, ok := p.PrimaryStore()
		if !ok || !store.HasSaleDate() {
			continue
		}

		days := DaysBetween(store.LastSoldDate, now)
		if days < thresholdDays || store.Quantity <= 0 {
			continue
		}

		items = append(items, DeadInventoryItem{
			ID:                p.ID,
			Name:              p.Name,
			Category:          p.Category,
			Stock:             store.Quantity,
			DaysWithoutSale:   days,
			EstimatedValue:    p.Price.Mul(decimal.NewFromInt(int64(store.Quantity))),
			AISuggestedAction: SuggestAction(store.Quantity),
		})
	}
	return items
}

// SummarizeDeadInventory totals the items, units and value of a report.
func SummarizeDeadInventory(items []DeadInventoryItem) DeadInventorySummary {
	summary := DeadInventorySummary{TotalValue: decimal.Zero}
	for _, item := range items {
		summary.TotalItems++
		summary.TotalUnits += item.Stock
		summary.TotalValue = summary.TotalValue.Add(item.EstimatedValue)
	}
	return summary
}
