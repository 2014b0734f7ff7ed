package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of a finalized invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusPartial InvoiceStatus = "Partial"
)

// LineItem is one line of a pending invoice or direct sale. LineID is unique
// per line; ItemID references the catalog item. Total is always Price*Quantity.
type LineItem struct {
	LineID      string  `json:"lineId"`
	ItemID      string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	BuyingPrice float64 `json:"buyingPrice"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
	HSNSAC      string  `json:"hsnSac"`
	GSTRate     float64 `json:"gstRate"`
}

// Recompute refreshes the derived total.
func (l *LineItem) Recompute() {
	l.Total = decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2).InexactFloat64()
}

// Invoice is a finalized GST tax invoice. Only the payment fields change after
// it is written.
type Invoice struct {
	InvoiceNumber     string        `json:"invoiceNumber" db:"invoice_number"`
	InvoiceDate       time.Time     `json:"invoiceDate" db:"invoice_date"`
	Buyer             BuyerAddress  `json:"buyer" db:"buyer"`
	Items             []LineItem    `json:"items" db:"items"`
	SubTotal          float64       `json:"subTotal" db:"sub_total"`
	CGST              float64       `json:"cgst" db:"cgst"`
	SGST              float64       `json:"sgst" db:"sgst"`
	TaxAmount         float64       `json:"taxAmount" db:"tax_amount"`
	GrandTotal        float64       `json:"grandTotal" db:"grand_total"`
	AmountPaid        float64       `json:"amountPaid" db:"amount_paid"`
	Status            InvoiceStatus `json:"status" db:"status"`
	LatestPaymentDate *time.Time    `json:"latestPaymentDate,omitempty" db:"latest_payment_date"`
	PDFObject         string        `json:"pdfObject,omitempty" db:"pdf_object"`
	CreatedAt         time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time     `json:"updatedAt" db:"updated_at"`
}

// PaymentStatusFor derives the status from the amount paid against the grand total.
func PaymentStatusFor(amountPaid, grandTotal float64) InvoiceStatus {
	switch {
	case amountPaid <= 0:
		return InvoiceStatusUnpaid
	case amountPaid+0.005 >= grandTotal:
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartial
	}
}

// InvoiceListFilter narrows invoice listings.
type InvoiceListFilter struct {
	Status InvoiceStatus `json:"status,omitempty"`
	From   *time.Time    `json:"from,omitempty"`
	To     *time.Time    `json:"to,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}
