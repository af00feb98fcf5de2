package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, hotelID, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, hotelID, id)
}

// Create checks room availability and inserts the booking in one transaction.
// The advisory lock on the room makes concurrent creates from different
// devices serialize, so at most one of two overlapping requests succeeds.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Booking, error) {
	if strings.TrimSpace(input.RoomID) == "" {
		return nil, fmt.Errorf("room id is required")
	}
	if strings.TrimSpace(input.GuestID) == "" {
		return nil, fmt.Errorf("guest id is required")
	}
	if !input.CheckOut.After(input.CheckIn) {
		return nil, ErrInvalidDateRange
	}

	booking := Booking{
		ID:        uuid.NewString(),
		HotelID:   input.HotelID,
		RoomID:    input.RoomID,
		GuestID:   input.GuestID,
		GuestName: strings.TrimSpace(input.GuestName),
		CheckIn:   input.CheckIn,
		CheckOut:  input.CheckOut,
		Status:    StatusConfirmed,
		Notes:     input.Notes,
		Version:   1,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockRoom(ctx, booking.RoomID); err != nil {
			return err
		}
		overlapping, err := tx.CountOverlapping(ctx, booking.RoomID, booking.CheckIn, booking.CheckOut, "")
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrRoomUnavailable
		}
		return tx.Create(ctx, &booking)
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Booking, error) {
	var updated *Booking

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		booking, err := tx.GetByID(ctx, input.HotelID, input.ID)
		if err != nil {
			return err
		}
		if input.ExpectedVersion != nil && *input.ExpectedVersion != booking.Version {
			return ErrStaleVersion
		}

		roomID := booking.RoomID
		if input.RoomID != nil && strings.TrimSpace(*input.RoomID) != "" {
			roomID = *input.RoomID
		}
		checkIn := booking.CheckIn
		if input.CheckIn != nil {
			checkIn = *input.CheckIn
		}
		checkOut := booking.CheckOut
		if input.CheckOut != nil {
			checkOut = *input.CheckOut
		}
		if !checkOut.After(checkIn) {
			return ErrInvalidDateRange
		}

		// Re-check availability only when the mutation touches room or dates.
		availabilityAffected := roomID != booking.RoomID ||
			!checkIn.Equal(booking.CheckIn) ||
			!checkOut.Equal(booking.CheckOut)
		if availabilityAffected && booking.Status.Blocking() {
			if err := tx.LockRoom(ctx, roomID); err != nil {
				return err
			}
			overlapping, err := tx.CountOverlapping(ctx, roomID, checkIn, checkOut, booking.ID)
			if err != nil {
				return err
			}
			if overlapping > 0 {
				return ErrRoomUnavailable
			}
		}

		if input.Status != nil && *input.Status != booking.Status {
			if !transitionAllowed(booking.Status, *input.Status) {
				return ErrInvalidTransition
			}
			booking.Status = *input.Status
		}

		booking.RoomID = roomID
		booking.CheckIn = checkIn
		booking.CheckOut = checkOut
		if input.GuestName != nil {
			booking.GuestName = strings.TrimSpace(*input.GuestName)
		}
		if input.Notes != nil {
			booking.Notes = input.Notes
		}

		previousVersion := booking.Version
		booking.Version++

		ok, err := tx.UpdateGuarded(ctx, booking, previousVersion)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStaleVersion
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Cancel is the DELETE semantics for a booking: the row is marked cancelled
// and soft-deleted, so incremental pulls see the tombstone.
func (s *Service) Cancel(ctx context.Context, hotelID, id string, expectedVersion *int64) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		booking, err := tx.GetByID(ctx, hotelID, id)
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != booking.Version {
			return ErrStaleVersion
		}
		if booking.Status == StatusCheckedOut {
			return ErrInvalidTransition
		}

		ok, err := tx.CancelGuarded(ctx, hotelID, id, booking.Version)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStaleVersion
		}
		return nil
	})
}

func transitionAllowed(from, to Status) bool {
	switch from {
	case StatusConfirmed:
		return to == StatusCheckedIn || to == StatusCancelled
	case StatusCheckedIn:
		return to == StatusCheckedOut || to == StatusCancelled
	default:
		// checked_out and cancelled are terminal
		return false
	}
}

// OverlapWindow reports whether two [checkIn, checkOut) ranges conflict:
// newCheckIn < existingCheckOut && newCheckOut > existingCheckIn.
func OverlapWindow(newIn, newOut, existingIn, existingOut time.Time) bool {
	return newIn.Before(existingOut) && newOut.After(existingIn)
}
