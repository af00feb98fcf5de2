package inventory

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// GetItemForUpdate loads the item with a row lock so the quantity check
	// and the write below it are one atomic unit.
	GetItemForUpdate(ctx context.Context, hotelID, itemID string) (*Item, error)
	UpdateItem(ctx context.Context, item *Item, expectedVersion int64) (bool, error)
	CreateAdjustment(ctx context.Context, adjustment *Adjustment) error
}
