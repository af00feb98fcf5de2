package bookings

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockRoom serializes booking writes per room for the duration of the
	// surrounding transaction, so the overlap check and the write are one
	// atomic unit across devices.
	LockRoom(ctx context.Context, roomID string) error
	GetByID(ctx context.Context, hotelID, id string) (*Booking, error)
	// CountOverlapping counts blocking bookings on the room whose range
	// satisfies checkIn < existing.check_out AND checkOut > existing.check_in.
	CountOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (int64, error)
	Create(ctx context.Context, booking *Booking) error
	// UpdateGuarded persists the booking only when the stored row still has
	// expectedVersion; returns false when another writer got there first.
	UpdateGuarded(ctx context.Context, booking *Booking, expectedVersion int64) (bool, error)
	// CancelGuarded marks the booking cancelled and soft-deletes it.
	CancelGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error)
}
