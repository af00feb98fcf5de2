package inventory

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

// Adjust appends an adjustment and applies its delta to the item inside one
// transaction. On-hand quantity never goes negative.
func (s *Service) Adjust(ctx context.Context, input AdjustInput) (*Adjustment, error) {
	if input.Delta == 0 {
		return nil, ErrZeroDelta
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, fmt.Errorf("reason is required")
	}

	adjustment := Adjustment{
		ID:        uuid.NewString(),
		HotelID:   input.HotelID,
		ItemID:    input.ItemID,
		Delta:     input.Delta,
		Reason:    reason,
		CreatedBy: input.CreatedBy,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		item, err := tx.GetItemForUpdate(ctx, input.HotelID, input.ItemID)
		if err != nil {
			return err
		}
		if item.Quantity+input.Delta < 0 {
			return ErrInsufficientStock
		}

		previousVersion := item.Version
		item.Quantity += input.Delta
		item.Version++

		ok, err := tx.UpdateItem(ctx, item, previousVersion)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("inventory item %s changed concurrently", item.ID)
		}

		return tx.CreateAdjustment(ctx, &adjustment)
	})
	if err != nil {
		return nil, err
	}

	return &adjustment, nil
}
