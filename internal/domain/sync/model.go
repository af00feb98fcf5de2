package sync

import "time"

const DefaultMaxBatchOperations = 100

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

// Actor is the authenticated principal a batch runs as. Handlers use it to
// scope mutations to the caller's hotel and, for guests and staff, to the
// caller's own records.
type Actor struct {
	ID      string
	Name    string
	Email   string
	Role    Role
	HotelID string
}

type OperationKind string

const (
	KindCreate OperationKind = "create"
	KindUpdate OperationKind = "update"
	KindDelete OperationKind = "delete"
)

func ParseOperationKind(value string) (OperationKind, bool) {
	switch OperationKind(value) {
	case KindCreate, KindUpdate, KindDelete:
		return OperationKind(value), true
	default:
		return "", false
	}
}

// EntityType is a closed set. Adding a type means adding a handler and
// registering it; operations naming anything else are rejected as malformed.
type EntityType string

const (
	EntityBooking             EntityType = "booking"
	EntityAttendance          EntityType = "attendance"
	EntityTask                EntityType = "task"
	EntityLeaveRequest        EntityType = "leave_request"
	EntityInventoryAdjustment EntityType = "inventory_adjustment"
)

type BatchInput struct {
	DeviceID       string
	Actor          Actor
	IdempotencyKey string
	Operations     []OperationInput
}

// OperationInput is one client-queued mutation. OperationID is generated on
// the device and stable across retries of the same logical mutation; it is
// the dedup key. LocalID is the client-side placeholder for entities created
// offline; later operations in the same or a following batch may reference
// it instead of a server id.
type OperationInput struct {
	OperationID     string
	Kind            OperationKind
	EntityType      EntityType
	EntityID        string
	LocalID         string
	BaseVersion     *int64
	ClientTimestamp time.Time
	Data            map[string]any
}

type OutcomeStatus string

const (
	OutcomeApplied           OutcomeStatus = "applied"
	OutcomeNoop              OutcomeStatus = "noop"
	OutcomeRejectedStale     OutcomeStatus = "rejected_stale"
	OutcomeRejectedInvalid   OutcomeStatus = "rejected_invalid"
	OutcomeRejectedMalformed OutcomeStatus = "rejected_malformed"
	OutcomeRejectedRetriable OutcomeStatus = "rejected_retriable"
)

func (s OutcomeStatus) Accepted() bool {
	return s == OutcomeApplied || s == OutcomeNoop
}

type ErrorCode string

const (
	ErrorCodeInvalidOperationID      ErrorCode = "invalid_operation_id"
	ErrorCodeInvalidOperationKind    ErrorCode = "invalid_operation_kind"
	ErrorCodeUnknownEntityType       ErrorCode = "unknown_entity_type"
	ErrorCodeInvalidPayload          ErrorCode = "invalid_payload"
	ErrorCodeMissingEntityID         ErrorCode = "missing_entity_id"
	ErrorCodeMissingBaseVersion      ErrorCode = "missing_base_version"
	ErrorCodeDependencyNotResolved   ErrorCode = "dependency_not_resolved"
	ErrorCodeStaleVersion            ErrorCode = "stale_version"
	ErrorCodeEntityNotFound          ErrorCode = "entity_not_found"
	ErrorCodeRoomUnavailable         ErrorCode = "room_unavailable"
	ErrorCodeInvalidStateTransition  ErrorCode = "invalid_state_transition"
	ErrorCodeInvalidDateRange        ErrorCode = "invalid_date_range"
	ErrorCodeDuplicateAttendanceDay  ErrorCode = "duplicate_attendance_day"
	ErrorCodeInsufficientStock       ErrorCode = "insufficient_stock"
	ErrorCodeAdjustmentImmutable     ErrorCode = "adjustment_immutable"
	ErrorCodePayloadMismatch         ErrorCode = "operation_payload_mismatch"
	ErrorCodeOperationInProgress     ErrorCode = "operation_in_progress"
	ErrorCodeNotPermitted            ErrorCode = "not_permitted"
	ErrorCodeStoreUnavailable        ErrorCode = "store_unavailable"
	ErrorCodeInternalError           ErrorCode = "internal_error"
)

type OperationError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

// Outcome is the per-operation result; one per input operation, same order.
// ServerVersion is set on rejected_stale so the client can re-pull exactly
// the entity it diverged on.
type Outcome struct {
	OperationID   string          `json:"operation_id"`
	EntityType    EntityType      `json:"entity_type"`
	Kind          OperationKind   `json:"kind"`
	Status        OutcomeStatus   `json:"status"`
	EntityID      *string         `json:"entity_id,omitempty"`
	LocalID       *string         `json:"local_id,omitempty"`
	NewVersion    *int64          `json:"new_version,omitempty"`
	ServerVersion *int64          `json:"server_version,omitempty"`
	Error         *OperationError `json:"error,omitempty"`
}

type BatchStatus string

const (
	BatchStatusSuccess BatchStatus = "success"
	BatchStatusPartial BatchStatus = "partial"
	BatchStatusFailed  BatchStatus = "failed"
)

type BatchSummary struct {
	Total   int `json:"total"`
	Applied int `json:"applied"`
	Noop    int `json:"noop"`
	Failed  int `json:"failed"`
}

type EntityMapping struct {
	EntityType EntityType `json:"entity_type"`
	LocalID    string     `json:"local_id"`
	EntityID   string     `json:"entity_id"`
}

type BatchResult struct {
	SyncID      string          `json:"sync_id"`
	Status      BatchStatus     `json:"status"`
	Summary     BatchSummary    `json:"summary"`
	Outcomes    []Outcome       `json:"outcomes"`
	Mappings    []EntityMapping `json:"mappings"`
	ServerTime  time.Time       `json:"server_time"`
	DataVersion string          `json:"data_version"`
}

type BatchState string

const (
	BatchStateProcessing BatchState = "processing"
	BatchStateCompleted  BatchState = "completed"
)

type OperationState string

const (
	OperationStatePending OperationState = "pending"
	OperationStateApplied OperationState = "applied"
	OperationStateFailed  OperationState = "failed"
)

// BatchRecord caches a whole-batch response under the client's optional
// Idempotency-Key, on top of the per-operation dedup below.
type BatchRecord struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	UserID         string     `gorm:"type:uuid;not null;index"`
	DeviceID       string     `gorm:"not null;index"`
	IdempotencyKey *string    `gorm:"column:idempotency_key"`
	RequestHash    string     `gorm:"not null"`
	Status         BatchState `gorm:"not null"`
	ResponseJSON   []byte     `gorm:"type:jsonb;column:response_json"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (BatchRecord) TableName() string {
	return "sync_batches"
}

// OperationRecord is the dedup index: one row per operation id ever pushed
// by a device, reserved before execution and finalized with the outcome.
// Retained at least as long as the sync log.
type OperationRecord struct {
	ID           string         `gorm:"type:uuid;primaryKey"`
	UserID       string         `gorm:"type:uuid;not null"`
	DeviceID     string         `gorm:"not null"`
	OperationID  string         `gorm:"not null"`
	EntityType   EntityType     `gorm:"not null;column:entity_type"`
	Kind         OperationKind  `gorm:"not null;column:kind"`
	PayloadHash  string         `gorm:"not null;column:payload_hash"`
	LocalID      *string        `gorm:"column:local_id"`
	Status       OperationState `gorm:"not null"`
	EntityID     *string        `gorm:"type:uuid;column:entity_id"`
	NewVersion   *int64         `gorm:"column:new_version"`
	ErrorCode    *ErrorCode     `gorm:"column:error_code"`
	ErrorMessage *string        `gorm:"column:error_message"`
	Retryable    *bool          `gorm:"column:retryable"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (OperationRecord) TableName() string {
	return "sync_operations"
}
