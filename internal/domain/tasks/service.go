package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, hotelID, id string) (*Task, error) {
	return s.repo.GetByID(ctx, hotelID, id)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(input.AssigneeID) == "" {
		return nil, fmt.Errorf("assignee id is required")
	}

	priority := PriorityNormal
	if input.Priority != nil {
		priority = *input.Priority
	}

	task := Task{
		ID:          uuid.NewString(),
		HotelID:     input.HotelID,
		AssigneeID:  input.AssigneeID,
		Title:       title,
		Description: input.Description,
		Status:      StatusOpen,
		Priority:    priority,
		DueAt:       input.DueAt,
		Version:     1,
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Task, error) {
	task, err := s.repo.GetByID(ctx, input.HotelID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion != task.Version {
		return nil, ErrStaleVersion
	}

	if input.Status != nil && *input.Status != task.Status {
		if !transitionAllowed(task.Status, *input.Status) {
			return nil, ErrInvalidTransition
		}
		task.Status = *input.Status
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("title is required")
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueAt != nil {
		task.DueAt = input.DueAt
	}
	if input.AssigneeID != nil && strings.TrimSpace(*input.AssigneeID) != "" {
		task.AssigneeID = *input.AssigneeID
	}

	previousVersion := task.Version
	task.Version++

	ok, err := s.repo.UpdateGuarded(ctx, task, previousVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleVersion
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, hotelID, id string, expectedVersion *int64) error {
	task, err := s.repo.GetByID(ctx, hotelID, id)
	if err != nil {
		return err
	}
	if expectedVersion != nil && *expectedVersion != task.Version {
		return ErrStaleVersion
	}

	ok, err := s.repo.SoftDeleteGuarded(ctx, hotelID, id, task.Version)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStaleVersion
	}
	return nil
}

func transitionAllowed(from, to Status) bool {
	switch from {
	case StatusOpen:
		return to == StatusInProgress || to == StatusDone || to == StatusCancelled
	case StatusInProgress:
		return to == StatusOpen || to == StatusDone || to == StatusCancelled
	default:
		// done and cancelled are terminal
		return false
	}
}
