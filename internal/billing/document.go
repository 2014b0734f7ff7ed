package billing

import (
	"fmt"
	"strings"
)

// Document number prefixes
const (
	InvoicePrefix    = "INV"
	DirectSalePrefix = "DS"
)

// FormatDocumentNumber renders a counter as PREFIX-NNNN, zero padded to four digits.
func FormatDocumentNumber(prefix string, counter int) string {
	return fmt.Sprintf("%s-%04d", strings.ToUpper(prefix), counter)
}

// InvoiceNumber returns the invoice number for a counter value.
func InvoiceNumber(counter int) string {
	return FormatDocumentNumber(InvoicePrefix, counter)
}

// DirectSaleNumber returns the direct-sale number for a counter value.
func DirectSaleNumber(counter int) string {
	return FormatDocumentNumber(DirectSalePrefix, counter)
}
