package devices

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	devicesdomain "hotel-ops-go/internal/domain/devices"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, session *devicesdomain.DeviceSession) (*devicesdomain.DeviceSession, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "device_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"device_class", "push_token", "active", "updated_at"}),
		}).
		Create(session).Error
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, session.UserID, session.DeviceID)
}

func (r *PostgresRepository) Get(ctx context.Context, userID, deviceID string) (*devicesdomain.DeviceSession, error) {
	var session devicesdomain.DeviceSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, devicesdomain.ErrDeviceNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]devicesdomain.DeviceSession, error) {
	var sessions []devicesdomain.DeviceSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, userID, deviceID string, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&devicesdomain.DeviceSession{}).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Update("active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) MarkPulled(ctx context.Context, userID, deviceID string, at time.Time, dataVersion string) error {
	return r.db.WithContext(ctx).
		Model(&devicesdomain.DeviceSession{}).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Updates(map[string]interface{}{
			"last_pull_at":      at,
			"last_data_version": dataVersion,
		}).Error
}

func (r *PostgresRepository) MarkPushed(ctx context.Context, userID, deviceID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&devicesdomain.DeviceSession{}).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Update("last_push_at", at).Error
}
