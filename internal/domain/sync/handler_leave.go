package sync

import (
	"context"
	"errors"

	leavedomain "hotel-ops-go/internal/domain/leave"
)

type LeaveService interface {
	Create(ctx context.Context, input leavedomain.CreateInput) (*leavedomain.Request, error)
	Update(ctx context.Context, input leavedomain.UpdateInput) (*leavedomain.Request, error)
	Delete(ctx context.Context, hotelID, id string, expectedVersion *int64) error
	Get(ctx context.Context, hotelID, id string) (*leavedomain.Request, error)
}

type LeaveHandler struct {
	leave LeaveService
}

func NewLeaveHandler(leave LeaveService) *LeaveHandler {
	return &LeaveHandler{leave: leave}
}

func (h *LeaveHandler) EntityType() EntityType {
	return EntityLeaveRequest
}

type leavePayload struct {
	UserID    *string `json:"user_id"`
	Kind      *string `json:"kind"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status"`
	Reason    *string `json:"reason"`
}

func (h *LeaveHandler) Create(ctx context.Context, actor Actor, data map[string]any) (*Change, error) {
	if actor.Role == RoleGuest {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "guests cannot request leave")
	}

	var payload leavePayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.Kind == nil || payload.StartDate == nil || payload.EndDate == nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "kind, start_date and end_date are required")
	}
	if payload.Status != nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "status cannot be set on create")
	}

	kind, ok := leavedomain.ParseKind(*payload.Kind)
	if !ok {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "unknown leave kind")
	}
	startDate, err := parseDateField(*payload.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateField(*payload.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	userID := actor.ID
	if payload.UserID != nil && *payload.UserID != actor.ID {
		if !actor.Role.Manages() {
			return nil, rejectInvalid(ErrorCodeNotPermitted, "cannot request leave for another user")
		}
		userID = *payload.UserID
	}

	request, err := h.leave.Create(ctx, leavedomain.CreateInput{
		HotelID:   actor.HotelID,
		UserID:    userID,
		Kind:      kind,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    payload.Reason,
	})
	if err != nil {
		return nil, h.mapError(err, nil)
	}

	return &Change{EntityID: request.ID, NewVersion: request.Version}, nil
}

func (h *LeaveHandler) Update(ctx context.Context, actor Actor, entityID string, baseVersion *int64, data map[string]any) (*Change, error) {
	var payload leavePayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.UserID != nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "user_id cannot be changed")
	}

	current, err := h.visibleRequest(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}

	input := leavedomain.UpdateInput{
		ID:              entityID,
		HotelID:         actor.HotelID,
		ExpectedVersion: baseVersion,
		Reason:          payload.Reason,
	}
	if payload.Status != nil {
		status, ok := leavedomain.ParseStatus(*payload.Status)
		if !ok {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "unknown leave status")
		}
		// Approval decisions are a manager action; staff may only withdraw
		// their own request.
		if status != leavedomain.StatusCancelled && !actor.Role.Manages() {
			return nil, rejectInvalid(ErrorCodeNotPermitted, "only managers can approve or reject leave")
		}
		input.Status = &status
	}
	if payload.Kind != nil {
		kind, ok := leavedomain.ParseKind(*payload.Kind)
		if !ok {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "unknown leave kind")
		}
		input.Kind = &kind
	}
	if payload.StartDate != nil {
		startDate, err := parseDateField(*payload.StartDate, "start_date")
		if err != nil {
			return nil, err
		}
		input.StartDate = &startDate
	}
	if payload.EndDate != nil {
		endDate, err := parseDateField(*payload.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		input.EndDate = &endDate
	}

	request, err := h.leave.Update(ctx, input)
	if err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: request.ID, NewVersion: request.Version}, nil
}

func (h *LeaveHandler) Delete(ctx context.Context, actor Actor, entityID string, baseVersion *int64) (*Change, error) {
	current, err := h.visibleRequest(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}

	if err := h.leave.Delete(ctx, actor.HotelID, entityID, baseVersion); err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: entityID, NewVersion: current.Version + 1}, nil
}

func (h *LeaveHandler) visibleRequest(ctx context.Context, actor Actor, entityID string) (*leavedomain.Request, error) {
	if actor.Role == RoleGuest {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "guests cannot request leave")
	}
	request, err := h.leave.Get(ctx, actor.HotelID, entityID)
	if err != nil {
		return nil, h.mapError(err, nil)
	}
	if !actor.Role.Manages() && request.UserID != actor.ID {
		return nil, rejectInvalid(ErrorCodeEntityNotFound, "leave request not found")
	}
	return request, nil
}

func (h *LeaveHandler) mapError(err error, serverVersion *int64) error {
	switch {
	case errors.Is(err, leavedomain.ErrRequestNotFound):
		return rejectInvalid(ErrorCodeEntityNotFound, "leave request not found")
	case errors.Is(err, leavedomain.ErrStaleVersion):
		return rejectStale(serverVersion)
	case errors.Is(err, leavedomain.ErrInvalidDateRange):
		return rejectInvalid(ErrorCodeInvalidDateRange, "leave end date must not precede start date")
	case errors.Is(err, leavedomain.ErrInvalidTransition):
		return rejectInvalid(ErrorCodeInvalidStateTransition, "leave status transition not allowed")
	default:
		return err
	}
}
