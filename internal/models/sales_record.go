package models

import "time"

// SalesRecord is a write-once fact per sold line, used for reporting.
type SalesRecord struct {
	ID                  string    `json:"id" db:"id"`
	DocumentNumber      string    `json:"documentNumber" db:"document_number"`
	SaleDate            string    `json:"saleDate" db:"sale_date"` // ISO date
	ItemID              string    `json:"itemId" db:"item_id"`
	ItemName            string    `json:"itemName" db:"item_name"`
	Category            string    `json:"category" db:"category"`
	QuantitySold        int       `json:"quantitySold" db:"quantity_sold"`
	SellingPricePerUnit float64   `json:"sellingPricePerUnit" db:"selling_price_per_unit"`
	BuyingPricePerUnit  float64   `json:"buyingPricePerUnit" db:"buying_price_per_unit"`
	TotalProfit         float64   `json:"totalProfit" db:"total_profit"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
}
