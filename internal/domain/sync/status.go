package sync

import (
	"context"
	"time"

	devicesdomain "hotel-ops-go/internal/domain/devices"
	"hotel-ops-go/internal/domain/synclog"
)

// DeviceStatus tells the client whether it needs to sync and why.
type DeviceStatus struct {
	DeviceID          string     `json:"device_id"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	LastSyncStatus    *string    `json:"last_sync_status,omitempty"`
	PendingOperations int64      `json:"pending_operations"`
	ServerVersion     string     `json:"server_version"`
	SyncRequired      bool       `json:"sync_required"`
	ServerTime        time.Time  `json:"server_time"`
}

type StatusReporter struct {
	devices  DevicesService
	log      synclog.Repository
	versions VersionSource
}

func NewStatusReporter(devices DevicesService, log synclog.Repository, versions VersionSource) *StatusReporter {
	return &StatusReporter{devices: devices, log: log, versions: versions}
}

// Status is a cheap poll endpoint backed by the device session and the sync
// log; it never touches entity tables.
func (r *StatusReporter) Status(ctx context.Context, actor Actor, deviceID string) (*DeviceStatus, error) {
	session, err := r.devices.Get(ctx, actor.ID, deviceID)
	if err != nil {
		return nil, err
	}

	serverVersion, err := r.versions.Current(ctx, actor.HotelID)
	if err != nil {
		return nil, err
	}

	pending, err := r.log.PendingOperations(ctx, actor.ID, deviceID)
	if err != nil {
		return nil, err
	}

	status := DeviceStatus{
		DeviceID:          deviceID,
		LastSyncTime:      lastSyncTime(session),
		PendingOperations: pending,
		ServerVersion:     serverVersion,
		ServerTime:        time.Now().UTC(),
	}

	if last, err := r.log.LastFinished(ctx, actor.ID, deviceID); err == nil && last != nil {
		value := string(last.Status)
		status.LastSyncStatus = &value
	}

	knownVersion := ""
	if session.LastDataVersion != nil {
		knownVersion = *session.LastDataVersion
	}
	status.SyncRequired = knownVersion != serverVersion || pending > 0

	return &status, nil
}

// lastSyncTime is the later of the device's last pull and last push.
func lastSyncTime(session *devicesdomain.DeviceSession) *time.Time {
	last := session.LastPullAt
	if session.LastPushAt != nil && (last == nil || session.LastPushAt.After(*last)) {
		last = session.LastPushAt
	}
	return last
}
