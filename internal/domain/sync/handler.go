package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Change is what a handler reports back after an applied mutation.
type Change struct {
	EntityID   string
	NewVersion int64
}

// EntityHandler applies one entity type's mutations. Implementations decode
// the opaque payload, enforce the type's domain invariants through its
// service and translate domain errors into Rejections. A nil baseVersion on
// Update/Delete bypasses the staleness guard; only the conflict resolver
// passes nil.
type EntityHandler interface {
	EntityType() EntityType
	Create(ctx context.Context, actor Actor, data map[string]any) (*Change, error)
	Update(ctx context.Context, actor Actor, entityID string, baseVersion *int64, data map[string]any) (*Change, error)
	Delete(ctx context.Context, actor Actor, entityID string, baseVersion *int64) (*Change, error)
}

// Registry is the closed dispatch table over entity types.
type Registry struct {
	handlers map[EntityType]EntityHandler
}

func NewRegistry(handlers ...EntityHandler) *Registry {
	registry := &Registry{handlers: make(map[EntityType]EntityHandler, len(handlers))}
	for _, handler := range handlers {
		registry.handlers[handler.EntityType()] = handler
	}
	return registry
}

func (r *Registry) Lookup(entityType EntityType) (EntityHandler, bool) {
	handler, ok := r.handlers[entityType]
	return handler, ok
}

// decodeData round-trips the opaque field map through JSON into a typed
// payload, rejecting unknown fields.
func decodeData(data map[string]any, dst any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return rejectMalformed(ErrorCodeInvalidPayload, "payload is not encodable")
	}

	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return rejectMalformed(ErrorCodeInvalidPayload, "payload has invalid or unknown fields")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return rejectMalformed(ErrorCodeInvalidPayload, "payload has trailing data")
	}
	return nil
}

func parseDateField(value, name string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, rejectMalformed(ErrorCodeInvalidPayload, fmt.Sprintf("%s must be a YYYY-MM-DD date", name))
	}
	return parsed, nil
}

func parseTimeField(value, name string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, rejectMalformed(ErrorCodeInvalidPayload, fmt.Sprintf("%s must be an RFC 3339 timestamp", name))
	}
	return parsed, nil
}
