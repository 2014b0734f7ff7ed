package workspace

import "errors"

var (
	ErrUnknownKind       = errors.New("unknown sale kind")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLineNotFound      = errors.New("line item not found")
	ErrNegativeStock     = errors.New("stock cannot go below zero")
	ErrItemReserved      = errors.New("item is held by a pending sale")
	ErrDuplicateItem     = errors.New("inventory item already exists")
	ErrFinalizing        = errors.New("sale is being finalized")
)
