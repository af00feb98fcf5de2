package leave

import (
	"time"

	"gorm.io/gorm"
)

type Kind string

const (
	KindVacation Kind = "vacation"
	KindSick     Kind = "sick"
	KindUnpaid   Kind = "unpaid"
)

func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindVacation, KindSick, KindUnpaid:
		return Kind(value), true
	default:
		return "", false
	}
}

type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusRequested, StatusApproved, StatusRejected, StatusCancelled:
		return Status(value), true
	default:
		return "", false
	}
}

type Request struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID   string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	UserID    string         `gorm:"type:uuid;index;not null" json:"user_id"`
	Kind      Kind           `gorm:"not null" json:"kind"`
	StartDate time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time      `gorm:"type:date;not null" json:"end_date"`
	Status    Status         `gorm:"not null;default:'requested'" json:"status"`
	Reason    *string        `json:"reason,omitempty"`
	Version   int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Request) TableName() string {
	return "leave_requests"
}

type CreateInput struct {
	HotelID   string
	UserID    string
	Kind      Kind
	StartDate time.Time
	EndDate   time.Time
	Reason    *string
}

type UpdateInput struct {
	ID              string
	HotelID         string
	ExpectedVersion *int64
	Kind            *Kind
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *Status
	Reason          *string
}
