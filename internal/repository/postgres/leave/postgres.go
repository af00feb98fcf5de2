package leave

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	leavedomain "hotel-ops-go/internal/domain/leave"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, request *leavedomain.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, hotelID, id string) (*leavedomain.Request, error) {
	var request leavedomain.Request
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND id = ?", hotelID, id).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leavedomain.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *PostgresRepository) UpdateGuarded(ctx context.Context, request *leavedomain.Request, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&leavedomain.Request{}).
		Where("id = ? AND version = ?", request.ID, expectedVersion).
		Updates(map[string]interface{}{
			"kind":       request.Kind,
			"start_date": request.StartDate,
			"end_date":   request.EndDate,
			"status":     request.Status,
			"reason":     request.Reason,
			"version":    request.Version,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) SoftDeleteGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&leavedomain.Request{}).
		Where("hotel_id = ? AND id = ? AND version = ?", hotelID, id, expectedVersion).
		Updates(map[string]interface{}{
			"status":     leavedomain.StatusCancelled,
			"version":    expectedVersion + 1,
			"deleted_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
