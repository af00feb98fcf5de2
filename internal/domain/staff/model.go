package staff

import (
	"time"

	"gorm.io/gorm"
)

// Member is the roster entry delivered to managers in a snapshot. HR owns
// the full employee record (contracts, payroll); none of that is synced.
type Member struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID    string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	UserID     string         `gorm:"type:uuid;index;not null" json:"user_id"`
	Name       string         `gorm:"not null" json:"name"`
	Email      string         `json:"email"`
	Position   string         `json:"position"`
	Department string         `json:"department"`
	Active     bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Member) TableName() string {
	return "staff_members"
}
