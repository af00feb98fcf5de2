package tasks

import "context"

type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, hotelID, id string) (*Task, error)
	UpdateGuarded(ctx context.Context, task *Task, expectedVersion int64) (bool, error)
	SoftDeleteGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error)
}
