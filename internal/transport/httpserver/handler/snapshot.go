package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	devicesdomain "hotel-ops-go/internal/domain/devices"
	snapshotdomain "hotel-ops-go/internal/domain/snapshot"
)

type pullRequest struct {
	DeviceID     string     `json:"device_id"`
	DeviceClass  string     `json:"device_class"`
	PushToken    *string    `json:"push_token"`
	LastSyncTime *time.Time `json:"last_sync_time"`
	DataVersion  string     `json:"data_version"`
}

func (h *Handlers) Pull(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req pullRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "device_id is required")
		return
	}

	snapshot, err := h.Snapshot.Pull(r.Context(), snapshotdomain.PullInput{
		Actor:        snapshotActor(actor),
		DeviceID:     strings.TrimSpace(req.DeviceID),
		DeviceClass:  strings.TrimSpace(req.DeviceClass),
		PushToken:    req.PushToken,
		LastSyncTime: req.LastSyncTime,
		DataVersion:  strings.TrimSpace(req.DataVersion),
	})
	if err != nil {
		if errors.Is(err, devicesdomain.ErrUnknownDeviceClass) {
			writeError(w, http.StatusBadRequest, "invalid_request", "device_class must be ios, android or web")
			return
		}
		h.log.InternalError("sync.pull: failed", err, "user_id", actor.ID, "device_id", req.DeviceID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.log.Info("sync.pull: completed",
		"user_id", actor.ID,
		"device_id", req.DeviceID,
		"mode", snapshot.Mode,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, snapshot)
}
