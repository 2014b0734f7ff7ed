package models

import (
	"time"
)

// Stock thresholds used for status badges and stock notices.
const (
	LowStockThreshold = 4
)

// Stock status badges
const (
	StockStatusOut = "out_of_stock"
	StockStatusLow = "low_stock"
	StockStatusIn  = "in_stock"
)

// InventorySearchFilter holds search and filter criteria for inventory listings
type InventorySearchFilter struct {
	Query    string `json:"query,omitempty"`    // substring match on name
	Category string `json:"category,omitempty"` // exact category, case-insensitive
	Status   string `json:"status,omitempty"`   // out_of_stock, low_stock, in_stock
}

// InventoryItem is a catalog entry. Stock moves whenever the item enters or
// leaves a pending invoice or direct sale.
type InventoryItem struct {
	ID           string    `json:"id" db:"id"`
	Category     string    `json:"category" db:"category" validate:"required,max=100"`
	Name         string    `json:"name" db:"name" validate:"required,max=200"`
	BuyingPrice  float64   `json:"buyingPrice" db:"buying_price" validate:"gte=0"`
	Price        float64   `json:"price" db:"price" validate:"gt=0"`
	Stock        int       `json:"stock" db:"stock" validate:"gte=0"`
	Description  string    `json:"description" db:"description" validate:"max=2000"`
	PurchaseDate string    `json:"purchaseDate" db:"purchase_date"`
	HSNSAC       string    `json:"hsnSac" db:"hsn_sac" validate:"max=8"`
	GSTRate      float64   `json:"gstRate" db:"gst_rate" validate:"gte=0,lte=100"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// StockStatus returns the badge for the current stock level.
func (i *InventoryItem) StockStatus() string {
	switch {
	case i.Stock <= 0:
		return StockStatusOut
	case i.Stock <= LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// InventoryItemView is an item as listed, with its stock badge.
type InventoryItemView struct {
	InventoryItem
	StockStatus string `json:"stockStatus"`
}

// NewInventoryItemView wraps an item with its status badge.
func NewInventoryItemView(item *InventoryItem) InventoryItemView {
	return InventoryItemView{InventoryItem: *item, StockStatus: item.StockStatus()}
}
