package tasks

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusOpen, StatusInProgress, StatusDone, StatusCancelled:
		return Status(value), true
	default:
		return "", false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func ParsePriority(value string) (Priority, bool) {
	switch Priority(value) {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return Priority(value), true
	default:
		return "", false
	}
}

type Task struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID     string         `gorm:"type:uuid;index;not null" json:"hotel_id"`
	AssigneeID  string         `gorm:"type:uuid;index;not null" json:"assignee_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description *string        `json:"description,omitempty"`
	Status      Status         `gorm:"not null;default:'open'" json:"status"`
	Priority    Priority       `gorm:"not null;default:'normal'" json:"priority"`
	DueAt       *time.Time     `json:"due_at,omitempty"`
	Version     int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Task) TableName() string {
	return "staff_tasks"
}

type CreateInput struct {
	HotelID     string
	AssigneeID  string
	Title       string
	Description *string
	Priority    *Priority
	DueAt       *time.Time
}

type UpdateInput struct {
	ID              string
	HotelID         string
	ExpectedVersion *int64
	Title           *string
	Description     *string
	Status          *Status
	Priority        *Priority
	DueAt           *time.Time
	AssigneeID      *string
}
