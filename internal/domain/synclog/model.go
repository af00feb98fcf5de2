package synclog

import "time"

type Kind string

const (
	KindInitial Kind = "initial"
	KindPull    Kind = "pull"
	KindPush    Kind = "push"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
)

// Entry is one row per sync attempt. Append-only: the only mutation ever
// applied is Finalize filling in the finish time, status and counts.
type Entry struct {
	ID                  string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              string     `gorm:"type:uuid;not null;index:idx_sync_log_user_device" json:"user_id"`
	DeviceID            string     `gorm:"not null;index:idx_sync_log_user_device" json:"device_id"`
	Kind                Kind       `gorm:"not null" json:"kind"`
	Status              Status     `gorm:"not null" json:"status"`
	StartedAt           time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	OperationsSent      int        `gorm:"not null;default:0" json:"operations_sent"`
	OperationsProcessed int        `gorm:"not null;default:0" json:"operations_processed"`
	OperationsFailed    int        `gorm:"not null;default:0" json:"operations_failed"`
	ErrorSummary        *string    `json:"error_summary,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string {
	return "sync_log_entries"
}
