package sync

import (
	"context"
	"errors"

	tasksdomain "hotel-ops-go/internal/domain/tasks"
)

type TasksService interface {
	Create(ctx context.Context, input tasksdomain.CreateInput) (*tasksdomain.Task, error)
	Update(ctx context.Context, input tasksdomain.UpdateInput) (*tasksdomain.Task, error)
	Delete(ctx context.Context, hotelID, id string, expectedVersion *int64) error
	Get(ctx context.Context, hotelID, id string) (*tasksdomain.Task, error)
}

type TaskHandler struct {
	tasks TasksService
}

func NewTaskHandler(tasks TasksService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) EntityType() EntityType {
	return EntityTask
}

type taskPayload struct {
	AssigneeID  *string `json:"assignee_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueAt       *string `json:"due_at"`
}

func (h *TaskHandler) Create(ctx context.Context, actor Actor, data map[string]any) (*Change, error) {
	if actor.Role == RoleGuest {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "guests cannot manage tasks")
	}

	var payload taskPayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.Title == nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "title is required")
	}
	if payload.Status != nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "status cannot be set on create")
	}

	// Staff may only create tasks for themselves.
	assigneeID := actor.ID
	if payload.AssigneeID != nil && *payload.AssigneeID != actor.ID {
		if !actor.Role.Manages() {
			return nil, rejectInvalid(ErrorCodeNotPermitted, "cannot assign tasks to another user")
		}
		assigneeID = *payload.AssigneeID
	}

	input := tasksdomain.CreateInput{
		HotelID:     actor.HotelID,
		AssigneeID:  assigneeID,
		Title:       *payload.Title,
		Description: payload.Description,
	}
	if payload.Priority != nil {
		priority, ok := tasksdomain.ParsePriority(*payload.Priority)
		if !ok {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "unknown task priority")
		}
		input.Priority = &priority
	}
	if payload.DueAt != nil {
		dueAt, err := parseTimeField(*payload.DueAt, "due_at")
		if err != nil {
			return nil, err
		}
		input.DueAt = &dueAt
	}

	task, err := h.tasks.Create(ctx, input)
	if err != nil {
		return nil, h.mapError(err, nil)
	}

	return &Change{EntityID: task.ID, NewVersion: task.Version}, nil
}

func (h *TaskHandler) Update(ctx context.Context, actor Actor, entityID string, baseVersion *int64, data map[string]any) (*Change, error) {
	var payload taskPayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}

	current, err := h.visibleTask(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}
	if payload.AssigneeID != nil && *payload.AssigneeID != current.AssigneeID && !actor.Role.Manages() {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "cannot reassign tasks")
	}

	input := tasksdomain.UpdateInput{
		ID:              entityID,
		HotelID:         actor.HotelID,
		ExpectedVersion: baseVersion,
		Title:           payload.Title,
		Description:     payload.Description,
		AssigneeID:      payload.AssigneeID,
	}
	if payload.Status != nil {
		status, ok := tasksdomain.ParseStatus(*payload.Status)
		if !ok {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "unknown task status")
		}
		input.Status = &status
	}
	if payload.Priority != nil {
		priority, ok := tasksdomain.ParsePriority(*payload.Priority)
		if !ok {
			return nil, rejectMalformed(ErrorCodeInvalidPayload, "unknown task priority")
		}
		input.Priority = &priority
	}
	if payload.DueAt != nil {
		dueAt, err := parseTimeField(*payload.DueAt, "due_at")
		if err != nil {
			return nil, err
		}
		input.DueAt = &dueAt
	}

	task, err := h.tasks.Update(ctx, input)
	if err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: task.ID, NewVersion: task.Version}, nil
}

func (h *TaskHandler) Delete(ctx context.Context, actor Actor, entityID string, baseVersion *int64) (*Change, error) {
	current, err := h.visibleTask(ctx, actor, entityID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Manages() {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "only managers can delete tasks")
	}

	if err := h.tasks.Delete(ctx, actor.HotelID, entityID, baseVersion); err != nil {
		return nil, h.mapError(err, &current.Version)
	}

	return &Change{EntityID: entityID, NewVersion: current.Version + 1}, nil
}

func (h *TaskHandler) visibleTask(ctx context.Context, actor Actor, entityID string) (*tasksdomain.Task, error) {
	if actor.Role == RoleGuest {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "guests cannot manage tasks")
	}
	task, err := h.tasks.Get(ctx, actor.HotelID, entityID)
	if err != nil {
		return nil, h.mapError(err, nil)
	}
	if !actor.Role.Manages() && task.AssigneeID != actor.ID {
		return nil, rejectInvalid(ErrorCodeEntityNotFound, "task not found")
	}
	return task, nil
}

func (h *TaskHandler) mapError(err error, serverVersion *int64) error {
	switch {
	case errors.Is(err, tasksdomain.ErrTaskNotFound):
		return rejectInvalid(ErrorCodeEntityNotFound, "task not found")
	case errors.Is(err, tasksdomain.ErrStaleVersion):
		return rejectStale(serverVersion)
	case errors.Is(err, tasksdomain.ErrInvalidTransition):
		return rejectInvalid(ErrorCodeInvalidStateTransition, "task status transition not allowed")
	default:
		return err
	}
}
