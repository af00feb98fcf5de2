package bookings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	bookingsdomain "hotel-ops-go/internal/domain/bookings"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(bookingsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockRoom takes a transaction-scoped advisory lock keyed by the room id.
// Two concurrent bookings for the same room serialize here, so the overlap
// count below always sees the other writer's committed row.
func (r *PostgresRepository) LockRoom(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", roomID).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, hotelID, id string) (*bookingsdomain.Booking, error) {
	var booking bookingsdomain.Booking
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND id = ?", hotelID, id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingsdomain.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *PostgresRepository) CountOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&bookingsdomain.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", []bookingsdomain.Status{bookingsdomain.StatusConfirmed, bookingsdomain.StatusCheckedIn}).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) Create(ctx context.Context, booking *bookingsdomain.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *PostgresRepository) UpdateGuarded(ctx context.Context, booking *bookingsdomain.Booking, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&bookingsdomain.Booking{}).
		Where("id = ? AND version = ?", booking.ID, expectedVersion).
		Updates(map[string]interface{}{
			"room_id":    booking.RoomID,
			"guest_name": booking.GuestName,
			"check_in":   booking.CheckIn,
			"check_out":  booking.CheckOut,
			"status":     booking.Status,
			"notes":      booking.Notes,
			"version":    booking.Version,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) CancelGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&bookingsdomain.Booking{}).
		Where("hotel_id = ? AND id = ? AND version = ?", hotelID, id, expectedVersion).
		Updates(map[string]interface{}{
			"status":     bookingsdomain.StatusCancelled,
			"version":    expectedVersion + 1,
			"deleted_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
