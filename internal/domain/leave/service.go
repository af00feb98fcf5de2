package leave

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

func (s *Service) Get(ctx context.Context, hotelID, id string) (*Request, error) {
	return s.repo.GetByID(ctx, hotelID, id)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Request, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	request := Request{
		ID:        uuid.NewString(),
		HotelID:   input.HotelID,
		UserID:    input.UserID,
		Kind:      input.Kind,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    StatusRequested,
		Reason:    input.Reason,
		Version:   1,
	}

	if err := s.repo.Create(ctx, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Request, error) {
	request, err := s.repo.GetByID(ctx, input.HotelID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion != request.Version {
		return nil, ErrStaleVersion
	}

	if input.Status != nil && *input.Status != request.Status {
		if !transitionAllowed(request.Status, *input.Status) {
			return nil, ErrInvalidTransition
		}
		request.Status = *input.Status
	}

	// Dates and kind are editable only while the request is still pending.
	datesTouched := input.StartDate != nil || input.EndDate != nil || input.Kind != nil
	if datesTouched && request.Status != StatusRequested {
		return nil, ErrInvalidTransition
	}
	if input.Kind != nil {
		request.Kind = *input.Kind
	}
	if input.StartDate != nil {
		request.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		request.EndDate = *input.EndDate
	}
	if request.EndDate.Before(request.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if input.Reason != nil {
		request.Reason = input.Reason
	}

	previousVersion := request.Version
	request.Version++

	ok, err := s.repo.UpdateGuarded(ctx, request, previousVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleVersion
	}
	return request, nil
}

func (s *Service) Delete(ctx context.Context, hotelID, id string, expectedVersion *int64) error {
	request, err := s.repo.GetByID(ctx, hotelID, id)
	if err != nil {
		return err
	}
	if expectedVersion != nil && *expectedVersion != request.Version {
		return ErrStaleVersion
	}
	if request.Status == StatusRejected || request.Status == StatusCancelled {
		return ErrInvalidTransition
	}

	ok, err := s.repo.SoftDeleteGuarded(ctx, hotelID, id, request.Version)
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
	case StatusRequested:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusCancelled
	default:
		// rejected and cancelled are terminal
		return false
	}
}
