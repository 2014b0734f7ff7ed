package billing

import (
	"invoiceflow/internal/models"

	"github.com/shopspring/decimal"
)

// TaxRate is the flat GST rate applied to every document, presented as two
// equal CGST and SGST halves.
var TaxRate = decimal.RequireFromString("0.18")

var two = decimal.NewFromInt(2)

// Totals are the derived amounts of a document, rounded to paise.
type Totals struct {
	SubTotal   float64 `json:"subTotal"`
	CGST       float64 `json:"cgst"`
	SGST       float64 `json:"sgst"`
	TaxAmount  float64 `json:"taxAmount"`
	GrandTotal float64 `json:"grandTotal"`
}

// Amount converts a rupee value to a decimal rounded to paise.
func Amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return Amount(v).InexactFloat64()
}

// ToPaise converts a rupee amount to integer paise.
func ToPaise(v float64) int64 {
	return Amount(v).Shift(2).IntPart()
}

// splitTax applies TaxRate and splits the result into CGST and SGST. An odd
// paisa goes to SGST.
func splitTax(taxable decimal.Decimal) (cgst, sgst decimal.Decimal) {
	tax := taxable.Mul(TaxRate).Round(2)
	cgst = tax.Div(two).Truncate(2)
	return cgst, tax.Sub(cgst)
}

// CalculateGSTComponents splits tax on a taxable amount into CGST and SGST.
func CalculateGSTComponents(taxable float64) (cgst, sgst float64) {
	c, s := splitTax(decimal.NewFromFloat(taxable))
	return c.InexactFloat64(), s.InexactFloat64()
}

// LineTotal is price * quantity rounded to paise.
func LineTotal(l models.LineItem) decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// CalculateTotals sums the line totals and applies the tax rate.
func CalculateTotals(lines []models.LineItem) Totals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(LineTotal(l))
	}
	cgst, sgst := splitTax(sub)
	tax := cgst.Add(sgst)
	return Totals{
		SubTotal:   sub.InexactFloat64(),
		CGST:       cgst.InexactFloat64(),
		SGST:       sgst.InexactFloat64(),
		TaxAmount:  tax.InexactFloat64(),
		GrandTotal: sub.Add(tax).InexactFloat64(),
	}
}

// Profit is (price - buyingPrice) * quantity for one sold line, in paise precision.
func Profit(l models.LineItem) decimal.Decimal {
	margin := decimal.NewFromFloat(l.Price).Sub(decimal.NewFromFloat(l.BuyingPrice))
	return margin.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// LineProfit is Profit as a float for records and JSON.
func LineProfit(l models.LineItem) float64 {
	return Profit(l).InexactFloat64()
}
