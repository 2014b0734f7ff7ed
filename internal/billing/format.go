package billing

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	inrPrinter     *message.Printer
	inrPrinterOnce sync.Once
)

func printer() *message.Printer {
	inrPrinterOnce.Do(func() {
		inrPrinter = message.NewPrinter(language.MustParse("en-IN"))
	})
	return inrPrinter
}

// FormatINR renders an amount with the rupee sign and en-IN digit grouping,
// e.g. 123456.5 -> "₹1,23,456.50".
func FormatINR(amount float64) string {
	if amount < 0 {
		return "-" + printer().Sprintf("₹%.2f", -Round2(amount))
	}
	return printer().Sprintf("₹%.2f", Round2(amount))
}

// FormatAmount is FormatINR without the currency sign, used in table cells.
func FormatAmount(amount float64) string {
	return printer().Sprintf("%.2f", Round2(amount))
}
