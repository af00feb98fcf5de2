package sync

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	syncdomain "hotel-ops-go/internal/domain/sync"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) BeginBatch(ctx context.Context, batch *syncdomain.BatchRecord) (bool, *syncdomain.BatchRecord, error) {
	err := r.db.WithContext(ctx).Create(batch).Error
	if err == nil {
		return true, nil, nil
	}
	if !isUniqueViolation(err) {
		return false, nil, err
	}
	if batch.IdempotencyKey == nil {
		return false, nil, nil
	}

	var existing syncdomain.BatchRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ? AND idempotency_key = ?", batch.UserID, batch.DeviceID, *batch.IdempotencyKey).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}

	return false, &existing, nil
}

func (r *PostgresRepository) CompleteBatch(ctx context.Context, batchID string, status syncdomain.BatchState, responseJSON []byte) error {
	return r.db.WithContext(ctx).
		Model(&syncdomain.BatchRecord{}).
		Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"status":        status,
			"response_json": responseJSON,
		}).Error
}

func (r *PostgresRepository) ReserveOperation(ctx context.Context, operation *syncdomain.OperationRecord) (bool, *syncdomain.OperationRecord, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "device_id"},
				{Name: "operation_id"},
			},
			DoNothing: true,
		}).
		Create(operation)
	if result.Error != nil {
		return false, nil, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil, nil
	}

	var existing syncdomain.OperationRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ? AND operation_id = ?", operation.UserID, operation.DeviceID, operation.OperationID).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}

	return false, &existing, nil
}

func (r *PostgresRepository) UpdateOperation(ctx context.Context, operation *syncdomain.OperationRecord) error {
	return r.db.WithContext(ctx).
		Model(&syncdomain.OperationRecord{}).
		Where("id = ?", operation.ID).
		Updates(map[string]interface{}{
			"status":        operation.Status,
			"local_id":      operation.LocalID,
			"entity_id":     operation.EntityID,
			"new_version":   operation.NewVersion,
			"error_code":    operation.ErrorCode,
			"error_message": operation.ErrorMessage,
			"retryable":     operation.Retryable,
		}).Error
}

func (r *PostgresRepository) TakeOverFailedOperation(ctx context.Context, recordID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&syncdomain.OperationRecord{}).
		Where("id = ? AND status = ?", recordID, syncdomain.OperationStateFailed).
		Update("status", syncdomain.OperationStatePending)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) TakeOverAbandonedOperation(ctx context.Context, recordID string, updatedBefore time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&syncdomain.OperationRecord{}).
		Where("id = ? AND status = ? AND updated_at < ?", recordID, syncdomain.OperationStatePending, updatedBefore).
		Update("updated_at", time.Now().UTC())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) FindEntityIDByLocalID(ctx context.Context, userID, deviceID string, entityType syncdomain.EntityType, localID string) (string, bool, error) {
	type row struct {
		EntityID string `gorm:"column:entity_id"`
	}

	var result row
	err := r.db.WithContext(ctx).
		Table("sync_operations").
		Select("entity_id").
		Where("user_id = ? AND device_id = ? AND entity_type = ? AND local_id = ?", userID, deviceID, entityType, localID).
		Where("status = ?", syncdomain.OperationStateApplied).
		Where("entity_id IS NOT NULL").
		Order("created_at DESC").
		Limit(1).
		Scan(&result).Error
	if err != nil {
		return "", false, err
	}
	if result.EntityID == "" {
		return "", false, nil
	}

	return result.EntityID, true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
