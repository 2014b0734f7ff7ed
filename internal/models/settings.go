package models

// SettingsDocumentID is the key of the singleton settings row.
const SettingsDocumentID = "appState"

// AppSettings holds the document counters and the default buyer address.
// Counters hold the number the next finalized document will use.
type AppSettings struct {
	InvoiceCounter    int          `json:"invoiceCounter"`
	DirectSaleCounter int          `json:"directSaleCounter"`
	BuyerAddress      BuyerAddress `json:"buyerAddress"`
}

// DefaultSettings is used when no settings row exists yet.
func DefaultSettings() *AppSettings {
	return &AppSettings{InvoiceCounter: 1, DirectSaleCounter: 1}
}
