package synclog

import (
	"context"
	"time"
)

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	Finalize(ctx context.Context, id string, at time.Time, status Status, processed, failed int, errorSummary *string) error
	// LastFinished returns the most recent finalized entry for the device,
	// or nil when the device has never completed a sync.
	LastFinished(ctx context.Context, userID, deviceID string) (*Entry, error)
	// PendingOperations sums the failed-operation counts of partial entries
	// recorded after the device's latest fully successful sync, plus any
	// entry still in progress. A clean push resets the count to zero.
	PendingOperations(ctx context.Context, userID, deviceID string) (int64, error)
}
