package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dayplan/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction, so a
// service can compose several task operations atomically.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetOwned retrieves a task by ID, scoped to its owner
func (r *TaskRepository) GetOwned(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", taskID, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// bucketScope narrows a query to one user's bucket; a nil date is the backlog.
func bucketScope(q *gorm.DB, userID uuid.UUID, date *string) *gorm.DB {
	q = q.Where("user_id = ?", userID)
	if date == nil {
		return q.Where("scheduled_date IS NULL")
	}
	return q.Where("scheduled_date = ?", *date)
}

// ListBucketOpen retrieves a bucket's non-completed tasks in bucket order.
// Ties on position fall back to creation time so the order stays total.
func (r *TaskRepository) ListBucketOpen(ctx context.Context, userID uuid.UUID, date *string) ([]model.Task, error) {
	var tasks []model.Task
	q := bucketScope(r.db.WithContext(ctx), userID, date).
		Where("completed_at IS NULL").
		Order("position, created_at")
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListBucket retrieves all of a bucket's tasks, completed ones included.
func (r *TaskRepository) ListBucket(ctx context.Context, userID uuid.UUID, date *string) ([]model.Task, error) {
	var tasks []model.Task
	q := bucketScope(r.db.WithContext(ctx), userID, date).
		Order("position, created_at")
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountAtPosition reports how many other open tasks in the bucket already
// hold the given position key. Used by placement to detect write collisions.
func (r *TaskRepository) CountAtPosition(ctx context.Context, userID uuid.UUID, date *string, pos int, excludeID uuid.UUID) (int64, error) {
	var count int64
	q := bucketScope(r.db.WithContext(ctx).Model(&model.Task{}), userID, date).
		Where("position = ? AND id <> ? AND completed_at IS NULL", pos, excludeID)
	err := q.Count(&count).Error
	return count, err
}

// ListOverdueOpen retrieves a user's incomplete tasks scheduled before the
// given date. Backlog tasks have no date and are never overdue.
func (r *TaskRepository) ListOverdueOpen(ctx context.Context, userID uuid.UUID, before string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NULL AND scheduled_date IS NOT NULL AND scheduled_date < ?", userID, before).
		Order("scheduled_date, position, created_at").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdatePlacement writes a task's bucket and position together. Passing
// Updates a map keeps gorm from skipping the NULL scheduled_date.
func (r *TaskRepository) UpdatePlacement(ctx context.Context, taskID uuid.UUID, date *string, pos int) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"scheduled_date": date,
			"position":       pos,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdatePositions rewrites position keys for a renumbered bucket.
func (r *TaskRepository) UpdatePositions(ctx context.Context, keys map[uuid.UUID]int) error {
	for id, pos := range keys {
		if err := r.db.WithContext(ctx).Model(&model.Task{}).
			Where("id = ?", id).
			Update("position", pos).Error; err != nil {
			return err
		}
	}
	return nil
}

// SetCompleted marks a task done (or reopens it with a nil timestamp).
func (r *TaskRepository) SetCompleted(ctx context.Context, userID, taskID uuid.UUID, completedAt *time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Update("completed_at", completedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task owned by the user
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ? AND user_id = ?", taskID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
