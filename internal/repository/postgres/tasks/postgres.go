package tasks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	tasksdomain "hotel-ops-go/internal/domain/tasks"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *tasksdomain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, hotelID, id string) (*tasksdomain.Task, error) {
	var task tasksdomain.Task
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND id = ?", hotelID, id).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tasksdomain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *PostgresRepository) UpdateGuarded(ctx context.Context, task *tasksdomain.Task, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&tasksdomain.Task{}).
		Where("id = ? AND version = ?", task.ID, expectedVersion).
		Updates(map[string]interface{}{
			"assignee_id": task.AssigneeID,
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"priority":    task.Priority,
			"due_at":      task.DueAt,
			"version":     task.Version,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) SoftDeleteGuarded(ctx context.Context, hotelID, id string, expectedVersion int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&tasksdomain.Task{}).
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
