package sync

import (
	"context"
	"errors"

	inventorydomain "hotel-ops-go/internal/domain/inventory"
)

type InventoryService interface {
	Adjust(ctx context.Context, input inventorydomain.AdjustInput) (*inventorydomain.Adjustment, error)
}

// InventoryHandler appends to the adjustment ledger. Ledger rows are
// immutable, so update and delete operations are always rejected.
type InventoryHandler struct {
	inventory InventoryService
}

func NewInventoryHandler(inventory InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) EntityType() EntityType {
	return EntityInventoryAdjustment
}

type inventoryAdjustmentPayload struct {
	ItemID *string `json:"item_id"`
	Delta  *int64  `json:"delta"`
	Reason *string `json:"reason"`
}

func (h *InventoryHandler) Create(ctx context.Context, actor Actor, data map[string]any) (*Change, error) {
	if actor.Role == RoleGuest {
		return nil, rejectInvalid(ErrorCodeNotPermitted, "guests cannot adjust inventory")
	}

	var payload inventoryAdjustmentPayload
	if err := decodeData(data, &payload); err != nil {
		return nil, err
	}
	if payload.ItemID == nil || payload.Delta == nil || payload.Reason == nil {
		return nil, rejectMalformed(ErrorCodeInvalidPayload, "item_id, delta and reason are required")
	}

	adjustment, err := h.inventory.Adjust(ctx, inventorydomain.AdjustInput{
		HotelID:   actor.HotelID,
		ItemID:    *payload.ItemID,
		Delta:     *payload.Delta,
		Reason:    *payload.Reason,
		CreatedBy: actor.ID,
	})
	if err != nil {
		return nil, h.mapError(err)
	}

	// Ledger rows never change, so their version is constant.
	return &Change{EntityID: adjustment.ID, NewVersion: 1}, nil
}

func (h *InventoryHandler) Update(ctx context.Context, actor Actor, entityID string, baseVersion *int64, data map[string]any) (*Change, error) {
	return nil, rejectInvalid(ErrorCodeAdjustmentImmutable, "inventory adjustments cannot be edited, append a compensating adjustment")
}

func (h *InventoryHandler) Delete(ctx context.Context, actor Actor, entityID string, baseVersion *int64) (*Change, error) {
	return nil, rejectInvalid(ErrorCodeAdjustmentImmutable, "inventory adjustments cannot be deleted, append a compensating adjustment")
}

func (h *InventoryHandler) mapError(err error) error {
	switch {
	case errors.Is(err, inventorydomain.ErrItemNotFound):
		return rejectInvalid(ErrorCodeEntityNotFound, "inventory item not found")
	case errors.Is(err, inventorydomain.ErrInsufficientStock):
		return rejectInvalid(ErrorCodeInsufficientStock, "adjustment would make stock negative")
	case errors.Is(err, inventorydomain.ErrZeroDelta):
		return rejectMalformed(ErrorCodeInvalidPayload, "delta must be non-zero")
	default:
		return err
	}
}
