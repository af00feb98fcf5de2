package leave

import "context"

type Repository interface {
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, hotelID, id string) (*Request, error)
	UpdateGuarded(ctx context.Context, request *Request, expectedVersion int64) (bool, error)
	SoftDeleteGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error)
}
