package models

import (
	"time"
)

// BackupDocument is the export/import file format.
type BackupDocument struct {
	Items          []*InventoryItem `json:"items"`
	InvoiceCounter int              `json:"invoiceCounter"`
}

// ImportResult summarizes a successful import.
type ImportResult struct {
	ItemsImported  int       `json:"itemsImported"`
	InvoiceCounter int       `json:"invoiceCounter"`
	LinesCleared   int       `json:"linesCleared"`
	CompletedAt    time.Time `json:"completedAt"`
}
