package devices

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert inserts the session or updates the existing row matched by
	// (user_id, device_id) and returns the stored state.
	Upsert(ctx context.Context, session *DeviceSession) (*DeviceSession, error)
	Get(ctx context.Context, userID, deviceID string) (*DeviceSession, error)
	ListByUser(ctx context.Context, userID string) ([]DeviceSession, error)
	SetActive(ctx context.Context, userID, deviceID string, active bool) (bool, error)
	MarkPulled(ctx context.Context, userID, deviceID string, at time.Time, dataVersion string) error
	MarkPushed(ctx context.Context, userID, deviceID string, at time.Time) error
}
