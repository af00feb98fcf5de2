package sync

import (
	"context"
	"time"
)

type Repository interface {
	// BeginBatch inserts the batch record. When the (user, device,
	// idempotency key) tuple already exists it returns created=false with
	// the existing row, or (false, nil) when the row is gone again.
	BeginBatch(ctx context.Context, batch *BatchRecord) (bool, *BatchRecord, error)
	CompleteBatch(ctx context.Context, batchID string, status BatchState, responseJSON []byte) error
	// ReserveOperation claims the (user, device, operation id) slot with an
	// atomic insert-if-absent. created=false returns the existing record.
	ReserveOperation(ctx context.Context, operation *OperationRecord) (bool, *OperationRecord, error)
	UpdateOperation(ctx context.Context, operation *OperationRecord) error
	// TakeOverFailedOperation flips a failed reservation back to pending so
	// a retry can re-execute it. Returns false when the row is no longer in
	// the failed state (a concurrent retry won the race).
	TakeOverFailedOperation(ctx context.Context, recordID string) (bool, error)
	// TakeOverAbandonedOperation reclaims a pending reservation untouched
	// since updatedBefore by bumping its updated_at. Returns false when the
	// row was finalized or reclaimed concurrently in the meantime.
	TakeOverAbandonedOperation(ctx context.Context, recordID string, updatedBefore time.Time) (bool, error)
	// FindEntityIDByLocalID resolves a client placeholder id to the server
	// id recorded by a previously applied create from the same device.
	FindEntityIDByLocalID(ctx context.Context, userID, deviceID string, entityType EntityType, localID string) (string, bool, error)
}
