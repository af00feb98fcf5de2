package snapshot

import (
	"context"
	"time"

	"hotel-ops-go/internal/domain/attendance"
	"hotel-ops-go/internal/domain/bookings"
	"hotel-ops-go/internal/domain/catalog"
	"hotel-ops-go/internal/domain/inventory"
	"hotel-ops-go/internal/domain/leave"
	"hotel-ops-go/internal/domain/staff"
	"hotel-ops-go/internal/domain/tasks"
)

// Repository reads the synced collections. All reads of one pull happen
// inside a single Transaction callback so the snapshot is internally
// consistent.
//
// A nil since returns live rows only (full pull); a non-nil since returns
// rows touched after it, including soft-deleted ones, so incremental pulls
// carry tombstones.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// DataVersion is the hotel-wide change token: a digest over per-table
	// row counts and latest modification times, deletions included.
	DataVersion(ctx context.Context, hotelID string) (string, error)

	Hotel(ctx context.Context, hotelID string) (*catalog.Hotel, error)
	RoomTypes(ctx context.Context, hotelID string, since *time.Time) ([]catalog.RoomType, error)
	Rooms(ctx context.Context, hotelID string, since *time.Time) ([]catalog.Room, error)
	RatePlans(ctx context.Context, hotelID string, since *time.Time) ([]catalog.RatePlan, error)
	Staff(ctx context.Context, hotelID string, since *time.Time) ([]staff.Member, error)

	Bookings(ctx context.Context, hotelID string, since *time.Time) ([]bookings.Booking, error)
	BookingsByGuest(ctx context.Context, hotelID, guestID string, since *time.Time) ([]bookings.Booking, error)

	Tasks(ctx context.Context, hotelID string, since *time.Time) ([]tasks.Task, error)
	TasksByAssignee(ctx context.Context, hotelID, assigneeID string, since *time.Time) ([]tasks.Task, error)

	Attendance(ctx context.Context, hotelID string, since *time.Time) ([]attendance.Record, error)
	AttendanceByUser(ctx context.Context, hotelID, userID string, since *time.Time) ([]attendance.Record, error)

	Leave(ctx context.Context, hotelID string, since *time.Time) ([]leave.Request, error)
	LeaveByUser(ctx context.Context, hotelID, userID string, since *time.Time) ([]leave.Request, error)

	Items(ctx context.Context, hotelID string, since *time.Time) ([]inventory.Item, error)
	Adjustments(ctx context.Context, hotelID string, since *time.Time) ([]inventory.Adjustment, error)
}
