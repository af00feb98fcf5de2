package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Reference data shared by every device. Mutated by the back-office CRUD
// controllers, read-only for the sync subsystem.

type Hotel struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Timezone  string         `gorm:"not null;default:'UTC'" json:"timezone"`
	Address   string         `json:"address"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type RoomType struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID   string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	Name      string         `gorm:"not null" json:"name"`
	Capacity  int            `gorm:"not null;default:2" json:"capacity"`
	BaseRate  float64        `gorm:"not null;default:0" json:"base_rate"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusOutOfOrder  RoomStatus = "out_of_order"
)

type Room struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID    string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	RoomTypeID string         `gorm:"type:uuid;index;not null" json:"room_type_id"`
	Number     string         `gorm:"not null" json:"number"`
	Floor      int            `gorm:"not null;default:0" json:"floor"`
	Status     RoomStatus     `gorm:"not null;default:'available'" json:"status"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type RatePlan struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID    string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	RoomTypeID string         `gorm:"type:uuid;index;not null" json:"room_type_id"`
	Name       string         `gorm:"not null" json:"name"`
	Rate       float64        `gorm:"not null" json:"rate"`
	Currency   string         `gorm:"not null;default:'USD'" json:"currency"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
