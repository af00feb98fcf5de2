package inventory

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventorydomain "hotel-ops-go/internal/domain/inventory"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(inventorydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetItemForUpdate(ctx context.Context, hotelID, itemID string) (*inventorydomain.Item, error) {
	var item inventorydomain.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("hotel_id = ? AND id = ?", hotelID, itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventorydomain.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item *inventorydomain.Item, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&inventorydomain.Item{}).
		Where("id = ? AND version = ?", item.ID, expectedVersion).
		Updates(map[string]interface{}{
			"quantity": item.Quantity,
			"version":  item.Version,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) CreateAdjustment(ctx context.Context, adjustment *inventorydomain.Adjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}
