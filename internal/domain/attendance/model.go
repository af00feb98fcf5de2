package attendance

import (
	"time"

	"gorm.io/gorm"
)

// Record is one staff attendance row per (user, work date). The pair is
// unique among live rows; the store enforces it with a partial unique index.
type Record struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID   string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	UserID    string         `gorm:"type:uuid;index;not null" json:"user_id"`
	WorkDate  time.Time      `gorm:"type:date;not null;column:work_date" json:"work_date"`
	ClockIn   time.Time      `gorm:"not null" json:"clock_in"`
	ClockOut  *time.Time     `json:"clock_out,omitempty"`
	Notes     *string        `json:"notes,omitempty"`
	Version   int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Record) TableName() string {
	return "attendance_records"
}

type CreateInput struct {
	HotelID  string
	UserID   string
	WorkDate time.Time
	ClockIn  time.Time
	ClockOut *time.Time
	Notes    *string
}

type UpdateInput struct {
	ID              string
	HotelID         string
	ExpectedVersion *int64
	ClockIn         *time.Time
	ClockOut        *time.Time
	Notes           *string
}
