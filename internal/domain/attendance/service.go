package attendance

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

func (s *Service) Get(ctx context.Context, hotelID, id string) (*Record, error) {
	return s.repo.GetByID(ctx, hotelID, id)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Record, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if input.ClockOut != nil && !input.ClockOut.After(input.ClockIn) {
		return nil, ErrInvalidClockRange
	}

	record := Record{
		ID:       uuid.NewString(),
		HotelID:  input.HotelID,
		UserID:   input.UserID,
		WorkDate: input.WorkDate,
		ClockIn:  input.ClockIn,
		ClockOut: input.ClockOut,
		Notes:    input.Notes,
		Version:  1,
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Record, error) {
	record, err := s.repo.GetByID(ctx, input.HotelID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion != record.Version {
		return nil, ErrStaleVersion
	}

	if input.ClockIn != nil {
		record.ClockIn = *input.ClockIn
	}
	if input.ClockOut != nil {
		record.ClockOut = input.ClockOut
	}
	if input.Notes != nil {
		record.Notes = input.Notes
	}
	if record.ClockOut != nil && !record.ClockOut.After(record.ClockIn) {
		return nil, ErrInvalidClockRange
	}

	previousVersion := record.Version
	record.Version++

	ok, err := s.repo.UpdateGuarded(ctx, record, previousVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleVersion
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, hotelID, id string, expectedVersion *int64) error {
	record, err := s.repo.GetByID(ctx, hotelID, id)
	if err != nil {
		return err
	}
	if expectedVersion != nil && *expectedVersion != record.Version {
		return ErrStaleVersion
	}

	ok, err := s.repo.SoftDeleteGuarded(ctx, hotelID, id, record.Version)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStaleVersion
	}
	return nil
}
