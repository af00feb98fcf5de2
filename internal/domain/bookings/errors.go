package bookings

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrRoomUnavailable   = errors.New("room unavailable for the requested dates")
	ErrStaleVersion      = errors.New("booking version is stale")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrInvalidDateRange  = errors.New("check-out must be after check-in")
)
