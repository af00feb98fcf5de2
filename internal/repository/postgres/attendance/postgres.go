package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	attendancedomain "hotel-ops-go/internal/domain/attendance"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, record *attendancedomain.Record) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil && isUniqueViolation(err) {
		return attendancedomain.ErrDuplicateDay
	}
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, hotelID, id string) (*attendancedomain.Record, error) {
	var record attendancedomain.Record
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND id = ?", hotelID, id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendancedomain.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PostgresRepository) UpdateGuarded(ctx context.Context, record *attendancedomain.Record, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&attendancedomain.Record{}).
		Where("id = ? AND version = ?", record.ID, expectedVersion).
		Updates(map[string]interface{}{
			"clock_in":  record.ClockIn,
			"clock_out": record.ClockOut,
			"notes":     record.Notes,
			"version":   record.Version,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) SoftDeleteGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&attendancedomain.Record{}).
		Where("hotel_id = ? AND id = ? AND version = ?", hotelID, id, expectedVersion).
		Updates(map[string]interface{}{
			"version":    expectedVersion + 1,
			"deleted_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
