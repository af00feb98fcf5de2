package attendance

import "context"

type Repository interface {
	// Create returns ErrDuplicateDay when a live record for the same
	// (user, work date) already exists.
	Create(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, hotelID, id string) (*Record, error)
	UpdateGuarded(ctx context.Context, record *Record, expectedVersion int64) (bool, error)
	SoftDeleteGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error)
}
