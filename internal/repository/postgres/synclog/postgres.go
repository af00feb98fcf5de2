package synclog

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	synclogdomain "hotel-ops-go/internal/domain/synclog"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *synclogdomain.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresRepository) Finalize(ctx context.Context, id string, at time.Time, status synclogdomain.Status, processed, failed int, errorSummary *string) error {
	return r.db.WithContext(ctx).
		Model(&synclogdomain.Entry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"finished_at":          at,
			"status":               status,
			"operations_processed": processed,
			"operations_failed":    failed,
			"error_summary":        errorSummary,
		}).Error
}

func (r *PostgresRepository) LastFinished(ctx context.Context, userID, deviceID string) (*synclogdomain.Entry, error) {
	var entry synclogdomain.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Where("finished_at IS NOT NULL").
		Order("finished_at DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresRepository) PendingOperations(ctx context.Context, userID, deviceID string) (int64, error) {
	var pending int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(operations_failed), 0) + COALESCE((
			SELECT SUM(operations_sent)
			FROM sync_log_entries
			WHERE user_id = ? AND device_id = ? AND status = ?
		), 0)
		FROM sync_log_entries
		WHERE user_id = ? AND device_id = ? AND status = ? AND kind = ?
		AND started_at > COALESCE((
			SELECT MAX(finished_at)
			FROM sync_log_entries
			WHERE user_id = ? AND device_id = ? AND kind = ? AND status = ?
		), 'epoch'::timestamptz)`,
		userID, deviceID, synclogdomain.StatusInProgress,
		userID, deviceID, synclogdomain.StatusPartial, synclogdomain.KindPush,
		userID, deviceID, synclogdomain.KindPush, synclogdomain.StatusSuccess,
	).Scan(&pending).Error
	if err != nil {
		return 0, err
	}
	return pending, nil
}
