package services

import "errors"

var (
	// ErrEmptySale is returned when finalizing a sale without lines.
	ErrEmptySale = errors.New("add at least one item before finalizing")
	// ErrSaleDateRequired is returned when a direct sale has no sale date.
	ErrSaleDateRequired = errors.New("sale date is required for a direct sale")
	// ErrInvalidBackup marks an import file without an items array and a numeric invoiceCounter.
	ErrInvalidBackup = errors.New("invalid backup file: expected an items array and a numeric invoiceCounter")
	// ErrPDFUnavailable is returned when an invoice has no stored PDF.
	ErrPDFUnavailable = errors.New("invoice PDF is not available")
	// ErrInvalidPayment is returned for a negative or excessive payment.
	ErrInvalidPayment = errors.New("amount paid must be between 0 and the grand total")
)
