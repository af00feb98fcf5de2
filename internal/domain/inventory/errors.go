package inventory

import "errors"

var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrInsufficientStock = errors.New("adjustment would make stock negative")
	ErrZeroDelta         = errors.New("adjustment delta must be non-zero")
)
