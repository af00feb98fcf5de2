package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	devicesdomain "hotel-ops-go/internal/domain/devices"
	syncdomain "hotel-ops-go/internal/domain/sync"
)

const (
	minIdempotencyKeyLength = 8
	maxIdempotencyKeyLength = 128
)

type pushRequest struct {
	DeviceID   string                 `json:"device_id"`
	Operations []pushOperationRequest `json:"operations"`
}

type pushOperationRequest struct {
	OperationID     string         `json:"operation_id"`
	Type            string         `json:"type"`
	EntityType      string         `json:"entity_type"`
	EntityID        string         `json:"entity_id"`
	LocalID         string         `json:"local_id"`
	BaseVersion     *int64         `json:"base_version"`
	ClientTimestamp time.Time      `json:"client_timestamp"`
	Data            map[string]any `json:"data"`
}

type pushResponse struct {
	Success          bool                       `json:"success"`
	SyncID           string                     `json:"sync_id"`
	Status           syncdomain.BatchStatus     `json:"status"`
	ProcessedCount   int                        `json:"processed_count"`
	FailedCount      int                        `json:"failed_count"`
	Results          []syncdomain.Outcome       `json:"results"`
	FailedOperations []syncdomain.Outcome       `json:"failed_operations"`
	Mappings         []syncdomain.EntityMapping `json:"mappings"`
	NewSyncTime      time.Time                  `json:"new_sync_time"`
	NewDataVersion   string                     `json:"new_data_version"`
}

func (h *Handlers) Push(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req pushRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "device_id is required")
		return
	}
	if len(req.Operations) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "operations are required")
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" && len(idempotencyKey) < minIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too short")
		return
	}
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too long")
		return
	}

	operations := make([]syncdomain.OperationInput, 0, len(req.Operations))
	for _, operation := range req.Operations {
		operations = append(operations, syncdomain.OperationInput{
			OperationID:     strings.TrimSpace(operation.OperationID),
			Kind:            syncdomain.OperationKind(strings.TrimSpace(operation.Type)),
			EntityType:      syncdomain.EntityType(strings.TrimSpace(operation.EntityType)),
			EntityID:        strings.TrimSpace(operation.EntityID),
			LocalID:         strings.TrimSpace(operation.LocalID),
			BaseVersion:     operation.BaseVersion,
			ClientTimestamp: operation.ClientTimestamp,
			Data:            operation.Data,
		})
	}

	result, err := h.Sync.ProcessBatch(r.Context(), syncdomain.BatchInput{
		DeviceID:       strings.TrimSpace(req.DeviceID),
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
		Operations:     operations,
	})
	if err != nil {
		logAttrs := []any{
			"user_id", actor.ID,
			"device_id", req.DeviceID,
			"operations", len(operations),
			"has_idempotency_key", idempotencyKey != "",
			"duration_ms", time.Since(startedAt).Milliseconds(),
		}

		switch {
		case errors.Is(err, syncdomain.ErrBatchTooLarge):
			h.log.BusinessError("sync.push: batch too large", err, logAttrs...)
			writeError(w, http.StatusRequestEntityTooLarge, "sync_batch_too_large", "too many operations in one batch")
		case errors.Is(err, syncdomain.ErrDeviceNotRegistered):
			h.log.BusinessError("sync.push: device not registered", err, logAttrs...)
			writeError(w, http.StatusForbidden, "device_not_registered", "device has no active session, pull first")
		case errors.Is(err, syncdomain.ErrIdempotencyKeyPayloadMismatch):
			h.log.BusinessError("sync.push: idempotency key payload mismatch", err, logAttrs...)
			writeError(w, http.StatusConflict, "idempotency_key_payload_mismatch", "Idempotency-Key was already used with different payload")
		case errors.Is(err, syncdomain.ErrBatchInProgress):
			h.log.BusinessError("sync.push: batch in progress", err, logAttrs...)
			writeError(w, http.StatusConflict, "batch_in_progress", "sync batch is already in progress")
		default:
			h.log.InternalError("sync.push: process batch failed", err, logAttrs...)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	failed := make([]syncdomain.Outcome, 0, result.Summary.Failed)
	for _, outcome := range result.Outcomes {
		if !outcome.Status.Accepted() {
			failed = append(failed, outcome)
		}
	}

	h.log.Info(
		"sync.push: completed",
		"sync_id", result.SyncID,
		"user_id", actor.ID,
		"device_id", req.DeviceID,
		"status", result.Status,
		"total", result.Summary.Total,
		"applied", result.Summary.Applied,
		"noop", result.Summary.Noop,
		"failed", result.Summary.Failed,
		"has_idempotency_key", idempotencyKey != "",
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, pushResponse{
		Success:          result.Status != syncdomain.BatchStatusFailed,
		SyncID:           result.SyncID,
		Status:           result.Status,
		ProcessedCount:   result.Summary.Applied + result.Summary.Noop,
		FailedCount:      result.Summary.Failed,
		Results:          result.Outcomes,
		FailedOperations: failed,
		Mappings:         result.Mappings,
		NewSyncTime:      result.ServerTime,
		NewDataVersion:   result.DataVersion,
	})
}

func (h *Handlers) SyncStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	deviceID := strings.TrimSpace(r.URL.Query().Get("device_id"))
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "device_id is required")
		return
	}

	status, err := h.Status.Status(r.Context(), actor, deviceID)
	if err != nil {
		if errors.Is(err, devicesdomain.ErrDeviceNotFound) {
			writeError(w, http.StatusNotFound, "device_not_found", "device has no session")
			return
		}
		h.log.InternalError("sync.status: failed", err, "user_id", actor.ID, "device_id", deviceID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

type logoutRequest struct {
	DeviceID string `json:"device_id"`
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req logoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "device_id is required")
		return
	}

	if err := h.Devices.Deactivate(r.Context(), actor.ID, deviceID); err != nil {
		if errors.Is(err, devicesdomain.ErrDeviceNotFound) {
			writeError(w, http.StatusNotFound, "device_not_found", "device has no session")
			return
		}
		h.log.InternalError("sync.logout: failed", err, "user_id", actor.ID, "device_id", deviceID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.log.Info("sync.logout: device deactivated", "user_id", actor.ID, "device_id", deviceID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type resolveConflictRequest struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Choice     string         `json:"choice"`
	Data       map[string]any `json:"data"`
}

func (h *Handlers) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req resolveConflictRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.EntityID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "entity_id is required")
		return
	}
	choice, ok := syncdomain.ParseResolutionChoice(strings.TrimSpace(req.Choice))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "choice must be accept_client or keep_server")
		return
	}
	if choice == syncdomain.ResolutionAcceptClient && req.Data == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "data is required for accept_client")
		return
	}

	result, err := h.Resolver.Resolve(r.Context(), syncdomain.ResolveInput{
		Actor:      actor,
		EntityType: syncdomain.EntityType(strings.TrimSpace(req.EntityType)),
		EntityID:   strings.TrimSpace(req.EntityID),
		Choice:     choice,
		Data:       req.Data,
	})
	if err != nil {
		var rejection *syncdomain.Rejection
		switch {
		case errors.Is(err, syncdomain.ErrUnknownEntityType):
			writeError(w, http.StatusBadRequest, "unknown_entity_type", "unknown entity type")
		case errors.Is(err, syncdomain.ErrOverrideNotAllowed):
			writeError(w, http.StatusForbidden, "override_not_allowed", "conflict override requires a manager role")
		case errors.As(err, &rejection):
			h.log.BusinessError("sync.resolve: rejected", err, "user_id", actor.ID, "entity_id", req.EntityID)
			writeError(w, http.StatusConflict, string(rejection.Code), rejection.Message)
		default:
			h.log.InternalError("sync.resolve: failed", err, "user_id", actor.ID, "entity_id", req.EntityID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.log.Info("sync.resolve: conflict settled",
		"user_id", actor.ID,
		"entity_type", req.EntityType,
		"entity_id", req.EntityID,
		"choice", choice,
	)
	writeJSON(w, http.StatusOK, result)
}
