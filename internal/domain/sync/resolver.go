package sync

import (
	"context"
	"time"
)

type ResolutionChoice string

const (
	ResolutionAcceptClient ResolutionChoice = "accept_client"
	ResolutionKeepServer   ResolutionChoice = "keep_server"
)

func ParseResolutionChoice(value string) (ResolutionChoice, bool) {
	switch ResolutionChoice(value) {
	case ResolutionAcceptClient, ResolutionKeepServer:
		return ResolutionChoice(value), true
	default:
		return "", false
	}
}

type ResolveInput struct {
	Actor      Actor
	EntityType EntityType
	EntityID   string
	Choice     ResolutionChoice
	Data       map[string]any
}

type ResolveResult struct {
	EntityType EntityType       `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
	Choice     ResolutionChoice `json:"choice"`
	NewVersion *int64           `json:"new_version,omitempty"`
	ServerTime time.Time        `json:"server_time"`
}

// Resolver settles a conflict a client surfaced to the user after a
// rejected_stale outcome. keep_server is a no-op on the server, the client
// just re-pulls. accept_client re-applies the client's fields on top of the
// current server state, skipping the staleness guard; that bypass is a
// manager-only action.
type Resolver struct {
	registry *Registry
	versions VersionSource
}

func NewResolver(registry *Registry, versions VersionSource) *Resolver {
	return &Resolver{registry: registry, versions: versions}
}

func (r *Resolver) Resolve(ctx context.Context, input ResolveInput) (*ResolveResult, error) {
	handler, ok := r.registry.Lookup(input.EntityType)
	if !ok {
		return nil, ErrUnknownEntityType
	}

	result := ResolveResult{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Choice:     input.Choice,
		ServerTime: time.Now().UTC(),
	}

	if input.Choice == ResolutionKeepServer {
		return &result, nil
	}

	if !input.Actor.Role.Manages() {
		return nil, ErrOverrideNotAllowed
	}

	change, err := handler.Update(ctx, input.Actor, input.EntityID, nil, input.Data)
	if err != nil {
		return nil, err
	}

	r.versions.Invalidate(input.Actor.HotelID)
	result.NewVersion = &change.NewVersion
	return &result, nil
}
