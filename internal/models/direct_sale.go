package models

import "time"

// DirectSaleLineItem is a line of a finalized over-the-counter sale.
type DirectSaleLineItem struct {
	LineItem
	SellingPricePerUnit float64 `json:"sellingPricePerUnit"`
	TotalItemProfit     float64 `json:"totalItemProfit"`
}

// DirectSaleLogEntry is the immutable record of a finalized direct sale.
type DirectSaleLogEntry struct {
	DSNumber    string               `json:"dsNumber" db:"ds_number"`
	SaleDate    string               `json:"saleDate" db:"sale_date"`
	Items       []DirectSaleLineItem `json:"items" db:"items"`
	SubTotal    float64              `json:"subTotal" db:"sub_total"`
	TaxAmount   float64              `json:"taxAmount" db:"tax_amount"`
	GrandTotal  float64              `json:"grandTotal" db:"grand_total"`
	TotalProfit float64              `json:"totalProfit" db:"total_profit"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
}
