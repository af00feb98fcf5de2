package snapshot

import (
	"time"

	"hotel-ops-go/internal/domain/attendance"
	"hotel-ops-go/internal/domain/bookings"
	"hotel-ops-go/internal/domain/catalog"
	"hotel-ops-go/internal/domain/inventory"
	"hotel-ops-go/internal/domain/leave"
	"hotel-ops-go/internal/domain/staff"
	"hotel-ops-go/internal/domain/tasks"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleGuest   Role = "guest"
)

func (r Role) Manages() bool {
	return r == RoleAdmin || r == RoleManager
}

type Actor struct {
	ID      string
	Role    Role
	HotelID string
}

type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
	ModeNotModified Mode = "not_modified"
)

type PullInput struct {
	Actor        Actor
	DeviceID     string
	DeviceClass  string
	PushToken    *string
	LastSyncTime *time.Time
	DataVersion  string
}

// Collections carries the role-scoped slices of each synced table. A full
// pull omits deleted rows; an incremental pull includes tombstones so the
// client can drop rows it holds locally.
type Collections struct {
	Hotel      *catalog.Hotel         `json:"hotel,omitempty"`
	RoomTypes  []catalog.RoomType     `json:"room_types,omitempty"`
	Rooms      []catalog.Room         `json:"rooms,omitempty"`
	RatePlans  []catalog.RatePlan     `json:"rate_plans,omitempty"`
	Staff      []staff.Member         `json:"staff,omitempty"`
	Bookings   []bookings.Booking     `json:"bookings,omitempty"`
	Tasks      []tasks.Task           `json:"tasks,omitempty"`
	Attendance []attendance.Record    `json:"attendance,omitempty"`
	Leave      []leave.Request        `json:"leave_requests,omitempty"`
	Items      []inventory.Item       `json:"inventory_items,omitempty"`
	Ledger     []inventory.Adjustment `json:"inventory_adjustments,omitempty"`
}

type Snapshot struct {
	Mode        Mode        `json:"mode"`
	DataVersion string      `json:"data_version"`
	ServerTime  time.Time   `json:"server_time"`
	Collections Collections `json:"collections"`
}
