package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	devicesdomain "hotel-ops-go/internal/domain/devices"
	"hotel-ops-go/internal/domain/synclog"
)

type DevicesService interface {
	Get(ctx context.Context, userID, deviceID string) (*devicesdomain.DeviceSession, error)
	MarkPushed(ctx context.Context, userID, deviceID string, at time.Time) error
}

// VersionSource produces the hotel-wide data-version token and drops the
// cached value after writes.
type VersionSource interface {
	Current(ctx context.Context, hotelID string) (string, error)
	Invalidate(hotelID string)
}

// abandonedOperationAge is how long a pending reservation may sit untouched
// before a retry may reclaim it. Requests are cut off well before this, so a
// pending row this old belongs to a request that died between reserving the
// operation and recording its outcome.
const abandonedOperationAge = 2 * time.Minute

type Service struct {
	repo     Repository
	registry *Registry
	devices  DevicesService
	log      synclog.Repository
	versions VersionSource
	maxBatch int
}

func NewService(repo Repository, registry *Registry, devices DevicesService, log synclog.Repository, versions VersionSource, maxBatch int) *Service {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchOperations
	}
	return &Service{
		repo:     repo,
		registry: registry,
		devices:  devices,
		log:      log,
		versions: versions,
		maxBatch: maxBatch,
	}
}

// localKey scopes placeholder ids per entity type; two entity types may reuse
// the same client-generated placeholder.
type localKey struct {
	entityType EntityType
	localID    string
}

// ProcessBatch applies the device's queued operations in submission order.
// Every operation gets exactly one outcome; a failure never aborts the rest
// of the batch. The whole response is cached under the client's
// Idempotency-Key so a retried request replays byte-identically.
func (s *Service) ProcessBatch(ctx context.Context, input BatchInput) (*BatchResult, error) {
	if len(input.Operations) == 0 {
		return nil, fmt.Errorf("operations are required")
	}
	if len(input.Operations) > s.maxBatch {
		return nil, ErrBatchTooLarge
	}

	session, err := s.devices.Get(ctx, input.Actor.ID, input.DeviceID)
	if err != nil {
		if errors.Is(err, devicesdomain.ErrDeviceNotFound) {
			return nil, ErrDeviceNotRegistered
		}
		return nil, err
	}
	if !session.Active {
		return nil, ErrDeviceNotRegistered
	}

	syncID := uuid.NewString()

	requestHash, err := hashRequest(input.Operations)
	if err != nil {
		return nil, err
	}

	idempotencyKey := strings.TrimSpace(input.IdempotencyKey)
	batchCreated := false

	if idempotencyKey != "" {
		batch := &BatchRecord{
			ID:             syncID,
			UserID:         input.Actor.ID,
			DeviceID:       input.DeviceID,
			IdempotencyKey: &idempotencyKey,
			RequestHash:    requestHash,
			Status:         BatchStateProcessing,
		}

		created, existing, err := s.repo.BeginBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if !created {
			if existing == nil {
				return nil, ErrBatchInProgress
			}
			if existing.RequestHash != requestHash {
				return nil, ErrIdempotencyKeyPayloadMismatch
			}
			if existing.Status == BatchStateCompleted && len(existing.ResponseJSON) > 0 {
				var cached BatchResult
				if err := json.Unmarshal(existing.ResponseJSON, &cached); err == nil {
					return &cached, nil
				}
			}
			return nil, ErrBatchInProgress
		}

		batchCreated = true
	}

	startedAt := time.Now().UTC()
	logEntry := &synclog.Entry{
		ID:             uuid.NewString(),
		UserID:         input.Actor.ID,
		DeviceID:       input.DeviceID,
		Kind:           synclog.KindPush,
		Status:         synclog.StatusInProgress,
		StartedAt:      startedAt,
		OperationsSent: len(input.Operations),
	}
	logAppended := s.log.Append(ctx, logEntry) == nil

	result := BatchResult{
		SyncID:   syncID,
		Outcomes: make([]Outcome, 0, len(input.Operations)),
		Mappings: make([]EntityMapping, 0),
		Summary: BatchSummary{
			Total: len(input.Operations),
		},
	}

	localIDs := make(map[localKey]string)

	for _, operation := range input.Operations {
		outcome, mapping := s.processOperation(ctx, input, operation, localIDs)
		result.Outcomes = append(result.Outcomes, outcome)
		if mapping != nil {
			result.Mappings = append(result.Mappings, *mapping)
			localIDs[localKey{mapping.EntityType, mapping.LocalID}] = mapping.EntityID
		}

		switch outcome.Status {
		case OutcomeApplied:
			result.Summary.Applied++
		case OutcomeNoop:
			result.Summary.Noop++
		default:
			result.Summary.Failed++
		}
	}

	result.Status = deriveBatchStatus(result.Summary)
	result.ServerTime = time.Now().UTC()

	if result.Summary.Applied > 0 {
		s.versions.Invalidate(input.Actor.HotelID)
	}
	if dataVersion, err := s.versions.Current(ctx, input.Actor.HotelID); err == nil {
		result.DataVersion = dataVersion
	}

	if logAppended {
		processed := result.Summary.Applied + result.Summary.Noop
		var errorSummary *string
		if result.Summary.Failed > 0 {
			summary := fmt.Sprintf("%d of %d operations failed", result.Summary.Failed, result.Summary.Total)
			errorSummary = &summary
		}
		_ = s.log.Finalize(ctx, logEntry.ID, time.Now().UTC(), logStatus(result.Status), processed, result.Summary.Failed, errorSummary)
	}

	_ = s.devices.MarkPushed(ctx, input.Actor.ID, input.DeviceID, time.Now().UTC())

	if batchCreated {
		if encoded, err := json.Marshal(result); err == nil {
			_ = s.repo.CompleteBatch(ctx, syncID, BatchStateCompleted, encoded)
		}
	}

	return &result, nil
}

func (s *Service) processOperation(ctx context.Context, input BatchInput, operation OperationInput, localIDs map[localKey]string) (Outcome, *EntityMapping) {
	base := Outcome{
		OperationID: operation.OperationID,
		EntityType:  operation.EntityType,
		Kind:        operation.Kind,
	}

	// Malformed operations are rejected before reservation; they never enter
	// the dedup index and resubmitting the same broken operation id with a
	// fixed payload must work.
	handler, rejection := s.validateShape(operation)
	if rejection != nil {
		return failOutcome(base, operation, rejection), nil
	}

	payloadHash, err := hashOperation(operation)
	if err != nil {
		return failOutcome(base, operation, rejectRetriable(ErrorCodeInternalError, "internal error")), nil
	}

	reserved := &OperationRecord{
		ID:          uuid.NewString(),
		UserID:      input.Actor.ID,
		DeviceID:    input.DeviceID,
		OperationID: operation.OperationID,
		EntityType:  operation.EntityType,
		Kind:        operation.Kind,
		PayloadHash: payloadHash,
		Status:      OperationStatePending,
	}
	if operation.LocalID != "" {
		localID := operation.LocalID
		reserved.LocalID = &localID
	}

	created, existing, err := s.repo.ReserveOperation(ctx, reserved)
	if err != nil {
		return failOutcome(base, operation, rejectRetriable(ErrorCodeStoreUnavailable, "operation failed transiently, resubmit unchanged")), nil
	}
	if !created {
		if existing == nil {
			return failOutcome(base, operation, rejectRetriable(ErrorCodeOperationInProgress, "operation is being processed")), nil
		}
		if existing.PayloadHash != payloadHash {
			return failOutcome(base, operation, rejectMalformed(ErrorCodePayloadMismatch, "operation_id already used with a different payload")), nil
		}
		if existing.Status == OperationStateApplied {
			return noopOutcome(base, operation, existing)
		}
		if existing.Status == OperationStatePending {
			// A crashed request leaves its reservation pending forever.
			// Reclaim it once it is older than any request can still be in
			// flight; a fresh row belongs to a concurrent push.
			cutoff := time.Now().UTC().Add(-abandonedOperationAge)
			if existing.UpdatedAt.After(cutoff) {
				return failOutcome(base, operation, rejectRetriable(ErrorCodeOperationInProgress, "operation is being processed")), nil
			}
			taken, err := s.repo.TakeOverAbandonedOperation(ctx, existing.ID, cutoff)
			if err != nil || !taken {
				return failOutcome(base, operation, rejectRetriable(ErrorCodeOperationInProgress, "operation is being processed")), nil
			}
			reserved = existing
		} else {
			// The previous attempt failed. Re-execute instead of replaying
			// the old failure; exactly one concurrent retry wins the
			// takeover.
			taken, err := s.repo.TakeOverFailedOperation(ctx, existing.ID)
			if err != nil || !taken {
				return failOutcome(base, operation, rejectRetriable(ErrorCodeOperationInProgress, "operation is being processed")), nil
			}
			reserved = existing
			reserved.Status = OperationStatePending
		}
	}

	outcome, mapping := s.execute(ctx, input, operation, handler, localIDs, base)

	record := *reserved
	if outcome.Status.Accepted() {
		record.Status = OperationStateApplied
		record.EntityID = outcome.EntityID
		record.NewVersion = outcome.NewVersion
		record.ErrorCode = nil
		record.ErrorMessage = nil
		record.Retryable = nil
	} else {
		record.Status = OperationStateFailed
		if outcome.Error != nil {
			code := outcome.Error.Code
			message := outcome.Error.Message
			retryable := outcome.Error.Retryable
			record.ErrorCode = &code
			record.ErrorMessage = &message
			record.Retryable = &retryable
		}
	}
	if outcome.LocalID != nil {
		record.LocalID = outcome.LocalID
	}

	if err := s.repo.UpdateOperation(ctx, &record); err != nil {
		return failOutcome(base, operation, rejectRetriable(ErrorCodeStoreUnavailable, "operation failed transiently, resubmit unchanged")), nil
	}

	return outcome, mapping
}

// validateShape checks everything knowable without touching entity state and
// returns the handler for the operation's entity type.
func (s *Service) validateShape(operation OperationInput) (EntityHandler, *Rejection) {
	if uuid.Validate(operation.OperationID) != nil {
		return nil, rejectMalformed(ErrorCodeInvalidOperationID, "operation_id must be a UUID")
	}
	if _, ok := ParseOperationKind(string(operation.Kind)); !ok {
		return nil, rejectMalformed(ErrorCodeInvalidOperationKind, "unknown operation kind")
	}

	handler, ok := s.registry.Lookup(operation.EntityType)
	if !ok {
		return nil, rejectMalformed(ErrorCodeUnknownEntityType, fmt.Sprintf("unknown entity type %q", operation.EntityType))
	}

	switch operation.Kind {
	case KindCreate:
		if operation.EntityID != "" {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "create must not carry an entity_id")
		}
		if operation.Data == nil {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "data is required")
		}
	case KindUpdate:
		if operation.EntityID == "" && operation.LocalID == "" {
			return nil, rejectMalformed(ErrorCodeMissingEntityID, "entity_id or local_id is required")
		}
		if operation.BaseVersion == nil {
			return nil, rejectMalformed(ErrorCodeMissingBaseVersion, "base_version is required")
		}
		if operation.Data == nil {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "data is required")
		}
	case KindDelete:
		if operation.EntityID == "" && operation.LocalID == "" {
			return nil, rejectMalformed(ErrorCodeMissingEntityID, "entity_id or local_id is required")
		}
		if operation.BaseVersion == nil {
			return nil, rejectMalformed(ErrorCodeMissingBaseVersion, "base_version is required")
		}
	}

	return handler, nil
}

func (s *Service) execute(ctx context.Context, input BatchInput, operation OperationInput, handler EntityHandler, localIDs map[localKey]string, base Outcome) (Outcome, *EntityMapping) {
	switch operation.Kind {
	case KindCreate:
		change, err := handler.Create(ctx, input.Actor, operation.Data)
		if err != nil {
			return failOutcome(base, operation, asRejection(err)), nil
		}

		outcome := base
		outcome.Status = OutcomeApplied
		outcome.EntityID = &change.EntityID
		outcome.NewVersion = &change.NewVersion
		outcome.LocalID = nonEmptyStringPtr(operation.LocalID)

		var mapping *EntityMapping
		if outcome.LocalID != nil {
			mapping = &EntityMapping{
				EntityType: operation.EntityType,
				LocalID:    *outcome.LocalID,
				EntityID:   change.EntityID,
			}
		}
		return outcome, mapping

	default:
		entityID, rejection := s.resolveEntityID(ctx, input, operation, localIDs)
		if rejection != nil {
			return failOutcome(base, operation, rejection), nil
		}

		var change *Change
		var err error
		if operation.Kind == KindUpdate {
			change, err = handler.Update(ctx, input.Actor, entityID, operation.BaseVersion, operation.Data)
		} else {
			change, err = handler.Delete(ctx, input.Actor, entityID, operation.BaseVersion)
		}
		if err != nil {
			return failOutcome(base, operation, asRejection(err)), nil
		}

		outcome := base
		outcome.Status = OutcomeApplied
		outcome.EntityID = &change.EntityID
		outcome.NewVersion = &change.NewVersion
		return outcome, nil
	}
}

// resolveEntityID maps a client placeholder onto the server id minted by the
// create it depends on, first from this batch, then from earlier batches via
// the dedup index.
func (s *Service) resolveEntityID(ctx context.Context, input BatchInput, operation OperationInput, localIDs map[localKey]string) (string, *Rejection) {
	if operation.EntityID != "" {
		return operation.EntityID, nil
	}

	localID := strings.TrimSpace(operation.LocalID)
	if entityID := localIDs[localKey{operation.EntityType, localID}]; entityID != "" {
		return entityID, nil
	}

	entityID, found, err := s.repo.FindEntityIDByLocalID(ctx, input.Actor.ID, input.DeviceID, operation.EntityType, localID)
	if err != nil {
		return "", rejectRetriable(ErrorCodeStoreUnavailable, "operation failed transiently, resubmit unchanged")
	}
	if !found || strings.TrimSpace(entityID) == "" {
		return "", rejectInvalid(ErrorCodeDependencyNotResolved, "referenced local_id has no applied create")
	}

	return entityID, nil
}

func noopOutcome(base Outcome, operation OperationInput, existing *OperationRecord) (Outcome, *EntityMapping) {
	outcome := base
	outcome.Status = OutcomeNoop
	outcome.EntityID = cloneString(existing.EntityID)
	outcome.NewVersion = cloneInt64(existing.NewVersion)
	outcome.LocalID = firstNonNil(existing.LocalID, nonEmptyStringPtr(operation.LocalID))

	if operation.Kind == KindCreate && outcome.LocalID != nil && outcome.EntityID != nil {
		return outcome, &EntityMapping{
			EntityType: operation.EntityType,
			LocalID:    *outcome.LocalID,
			EntityID:   *outcome.EntityID,
		}
	}
	return outcome, nil
}

func failOutcome(base Outcome, operation OperationInput, rejection *Rejection) Outcome {
	base.Status = rejection.Status
	base.LocalID = nonEmptyStringPtr(operation.LocalID)
	base.ServerVersion = rejection.ServerVersion
	base.Error = &OperationError{
		Code:      rejection.Code,
		Message:   rejection.Message,
		Retryable: rejection.Status == OutcomeRejectedRetriable,
	}
	return base
}

func deriveBatchStatus(summary BatchSummary) BatchStatus {
	if summary.Failed == 0 {
		return BatchStatusSuccess
	}
	if summary.Applied > 0 || summary.Noop > 0 {
		return BatchStatusPartial
	}
	return BatchStatusFailed
}

func logStatus(status BatchStatus) synclog.Status {
	switch status {
	case BatchStatusSuccess:
		return synclog.StatusSuccess
	case BatchStatusPartial:
		return synclog.StatusPartial
	default:
		return synclog.StatusFailed
	}
}

func hashRequest(operations []OperationInput) (string, error) {
	hashes := make([]string, 0, len(operations))
	for _, operation := range operations {
		hash, err := hashOperation(operation)
		if err != nil {
			return "", err
		}
		hashes = append(hashes, hash)
	}
	return hashValue(hashes)
}

// hashOperation fingerprints the semantic content of an operation. The client
// timestamp is excluded; a retried queue entry may re-stamp it.
func hashOperation(operation OperationInput) (string, error) {
	value := struct {
		Kind        OperationKind  `json:"kind"`
		EntityType  EntityType     `json:"entity_type"`
		EntityID    string         `json:"entity_id,omitempty"`
		LocalID     string         `json:"local_id,omitempty"`
		BaseVersion *int64         `json:"base_version,omitempty"`
		Data        map[string]any `json:"data"`
	}{
		Kind:        operation.Kind,
		EntityType:  operation.EntityType,
		EntityID:    operation.EntityID,
		LocalID:     operation.LocalID,
		BaseVersion: operation.BaseVersion,
		Data:        operation.Data,
	}

	return hashValue(value)
}

func hashValue(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func nonEmptyStringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func firstNonNil[T any](values ...*T) *T {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}
