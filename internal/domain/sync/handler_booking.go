package sync

import (
	"context"
	"errors"

	bookingsdomain "hotel-ops-go/internal/domain/bookings"
)

type BookingsService interface {
	Create(ctx context.Context, input bookingsdomain.CreateInput) (*bookingsdomain.Booking, error)
	Update(ctx context.Context, input bookingsdomain.UpdateInput) (*bookingsdomain.Booking, error)
	Cancel(ctx context.Context, hotelID, id string, expectedVersion *int64) error
	Get(ctx context.Context, hotelID, id string) (*bookingsdomain.Booking, error)
}

type BookingHandler struct {
	bookings BookingsService
}

func NewBookingHandler(bookings BookingsService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) EntityType() EntityType {
	return EntityBooking
}

type bookingPayload struct {
	RoomID    *string `json:"room_id"`
	GuestID   *string `json:"guest_id"`
	GuestName *string `json:"guest_name"`
	CheckIn   *string `json:"check_in"`
	CheckOut  *string `json:"check_out"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

func (h *BookingHandler) Create(ctx context.Context, actor Actor, data map[string]any) (*Change, error) {
	var payload bookingPayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.RoomID == nil || payload.CheckIn == nil || payload.CheckOut == nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "room_id, check_in and check_out are required")
	}
	if payload.Status != nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "status cannot be set on create")
	}

	checkIn, err := parseDateField(*payload.CheckIn, "check_in")
	if err != nil {
		return nil, err
	}
	checkOut, err := parseDateField(*payload.CheckOut, "check_out")
	if err != nil {
		return nil, err
	}

	// Guests book for themselves; staff and managers must name the guest.
	guestID := ""
	guestName := ""
	if actor.Role == RoleGuest {
		guestID = actor.ID
		guestName = actor.Name
	} else {
		if payload.GuestID == nil {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "guest_id is required")
		}
		guestID = *payload.GuestID
	}
	if payload.GuestName != nil {
		guestName = *payload.GuestName
	}

	booking, err := h.bookings.Create(ctx, bookingsdomain.CreateInput{
		HotelID:   actor.HotelID,
		RoomID:    *payload.RoomID,
		GuestID:   guestID,
		GuestName: guestName,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Notes:     payload.Notes,
	})
	if err != nil {
		return nil, h.mapError(err, nil)
	}

	return &Change{EntityID: booking.ID, NewVersion: booking.Version}, nil
}

func (h *BookingHandler) Update(ctx context.Context, actor Actor, entityID string, baseVersion *int64, data map[string]any) (*Change, error) {
	var payload bookingPayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.GuestID != nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "guest_id cannot be changed")
	}

	current, err := h.visibleBooking(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}

	input := bookingsdomain.UpdateInput{
		ID:              entityID,
		HotelID:         actor.HotelID,
		ExpectedVersion: baseVersion,
		RoomID:          payload.RoomID,
		GuestName:       payload.GuestName,
		Notes:           payload.Notes,
	}
	if payload.CheckIn != nil {
		checkIn, err := parseDateField(*payload.CheckIn, "check_in")
		if err != nil {
			return nil, err
		}
		input.CheckIn = &checkIn
	}
	if payload.CheckOut != nil {
		checkOut, err := parseDateField(*payload.CheckOut, "check_out")
		if err != nil {
			return nil, err
		}
		input.CheckOut = &checkOut
	}
	if payload.Status != nil {
		status, ok := bookingsdomain.ParseStatus(*payload.Status)
		if !ok {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "unknown booking status")
		}
		input.Status = &status
	}

	booking, err := h.bookings.Update(ctx, input)
	if err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: booking.ID, NewVersion: booking.Version}, nil
}

func (h *BookingHandler) Delete(ctx context.Context, actor Actor, entityID string, baseVersion *int64) (*Change, error) {
	current, err := h.visibleBooking(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}

	if err := h.bookings.Cancel(ctx, actor.HotelID, entityID, baseVersion); err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: entityID, NewVersion: current.Version + 1}, nil
}

// visibleBooking loads the booking for staleness reporting and hides other
// guests' bookings from a guest caller.
func (h *BookingHandler) visibleBooking(ctx context.Context, actor Actor, entityID string) (*bookingsdomain.Booking, error) {
	booking, err := h.bookings.Get(ctx, actor.HotelID, entityID)
	if err != nil {
		return nil, h.mapError(err, nil)
	}
	if actor.Role == RoleGuest && booking.GuestID != actor.ID {
		return nil, rejectInvalid(ErrorCodeEntityNotFound, "booking not found")
	}
	return booking, nil
}

func (h *BookingHandler) mapError(err error, serverVersion *int64) error {
	switch {
	case errors.Is(err, bookingsdomain.ErrBookingNotFound):
		return rejectInvalid(ErrorCodeEntityNotFound, "booking not found")
	case errors.Is(err, bookingsdomain.ErrStaleVersion):
		return rejectStale(serverVersion)
	case errors.Is(err, bookingsdomain.ErrRoomUnavailable):
		return rejectInvalid(ErrorCodeRoomUnavailable, "room is already booked for an overlapping date range")
	case errors.Is(err, bookingsdomain.ErrInvalidDateRange):
		return rejectInvalid(ErrorCodeInvalidDateRange, "check-out must be after check-in")
	case errors.Is(err, bookingsdomain.ErrInvalidTransition):
		return rejectInvalid(ErrorCodeInvalidStateTransition, "booking status transition not allowed")
	default:
		return err
	}
}
