package bookings

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return Status(value), true
	default:
		return "", false
	}
}

// Blocking reports whether a booking in this status occupies its room.
// Cancelled and checked-out bookings release the room.
func (s Status) Blocking() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

type Booking struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID   string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	RoomID    string         `gorm:"type:uuid;index;not null" json:"room_id"`
	GuestID   string         `gorm:"type:uuid;index;not null" json:"guest_id"`
	GuestName string         `json:"guest_name"`
	CheckIn   time.Time      `gorm:"type:date;not null" json:"check_in"`
	CheckOut  time.Time      `gorm:"type:date;not null" json:"check_out"`
	Status    Status         `gorm:"not null;default:'confirmed'" json:"status"`
	Notes     *string        `json:"notes,omitempty"`
	Version   int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type CreateInput struct {
	HotelID   string
	RoomID    string
	GuestID   string
	GuestName string
	CheckIn   time.Time
	CheckOut  time.Time
	Notes     *string
}

// UpdateInput applies a partial update. ExpectedVersion nil means the caller
// explicitly bypasses the staleness guard (conflict-resolution override);
// the availability and transition invariants are enforced either way.
type UpdateInput struct {
	ID              string
	HotelID         string
	ExpectedVersion *int64
	RoomID          *string
	CheckIn         *time.Time
	CheckOut        *time.Time
	Status          *Status
	GuestName       *string
	Notes           *string
}
