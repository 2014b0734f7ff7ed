package models

import (
	"strings"
	"time"
)

// GSTIN values that mean "no tax ID"; buyers with these are never saved as profiles.
var placeholderGSTINs = map[string]bool{
	"":             true,
	"NA":           true,
	"N/A":          true,
	"URP":          true,
	"UNREGISTERED": true,
}

// BuyerAddress is the bill-to block of an invoice.
type BuyerAddress struct {
	Name             string `json:"name" validate:"max=200"`
	AddressLine1     string `json:"addressLine1" validate:"max=300"`
	AddressLine2     string `json:"addressLine2" validate:"max=300"`
	GSTIN            string `json:"gstin" validate:"max=15"`
	StateNameAndCode string `json:"stateNameAndCode" validate:"max=100"`
	Contact          string `json:"contact" validate:"max=50"`
	Email            string `json:"email" validate:"omitempty,email"`
}

// BuyerProfile is a saved buyer keyed by normalized GSTIN.
type BuyerProfile struct {
	BuyerAddress
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeGSTIN upper-cases and trims a tax ID for use as a lookup key.
func NormalizeGSTIN(gstin string) string {
	return strings.ToUpper(strings.TrimSpace(gstin))
}

// HasRealGSTIN reports whether the buyer carries a non-placeholder tax ID.
func (b BuyerAddress) HasRealGSTIN() bool {
	return !placeholderGSTINs[NormalizeGSTIN(b.GSTIN)]
}
