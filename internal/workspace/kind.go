package workspace

import (
	"fmt"

	"invoiceflow/internal/billing"
)

// Kind selects which pending sale an operation applies to.
type Kind string

const (
	KindInvoice    Kind = "invoice"
	KindDirectSale Kind = "direct_sale"
)

// Kinds lists every pending-sale kind.
var Kinds = []Kind{KindInvoice, KindDirectSale}

// ParseKind accepts the path form used by the API ("invoice", "direct-sale", "direct_sale").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "invoice", "invoices":
		return KindInvoice, nil
	case "direct_sale", "direct-sale", "direct-sales":
		return KindDirectSale, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Prefix is the document number prefix for the kind.
func (k Kind) Prefix() string {
	if k == KindDirectSale {
		return billing.DirectSalePrefix
	}
	return billing.InvoicePrefix
}

// DocumentNumber formats counter for this kind.
func (k Kind) DocumentNumber(counter int) string {
	return billing.FormatDocumentNumber(k.Prefix(), counter)
}
