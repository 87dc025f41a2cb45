package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dayplan/internal/model"
)

type RolloverLogRepository struct {
	db *gorm.DB
}

func NewRolloverLogRepository(db *gorm.DB) *RolloverLogRepository {
	return &RolloverLogRepository{db: db}
}

// Claim inserts the running row for (timezone, date). The unique index on
// those columns is the only concurrency gate: a duplicate-key failure means
// another worker owns this run and the caller must back off.
func (r *RolloverLogRepository) Claim(ctx context.Context, timezone, date string) (*model.RolloverLog, error) {
	log := &model.RolloverLog{
		ID:           uuid.New(),
		Timezone:     timezone,
		RolloverDate: date,
		Status:       model.RolloverRunning,
		StartedAt:    time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRolloverClaimed
		}
		return nil, err
	}
	return log, nil
}

// Finish writes the terminal state of a claimed run.
func (r *RolloverLogRepository) Finish(ctx context.Context, log *model.RolloverLog) error {
	result := r.db.WithContext(ctx).Model(&model.RolloverLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]interface{}{
			"status":            log.Status,
			"users_processed":   log.UsersProcessed,
			"users_skipped":     log.UsersSkipped,
			"tasks_rolled_over": log.TasksRolledOver,
			"finished_at":       log.FinishedAt,
			"duration_ms":       log.DurationMs,
			"error_message":     log.ErrorMessage,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRolloverLogNotFound
	}
	return nil
}

func (r *RolloverLogRepository) Get(ctx context.Context, timezone, date string) (*model.RolloverLog, error) {
	var log model.RolloverLog
	err := r.db.WithContext(ctx).
		First(&log, "timezone = ? AND rollover_date = ?", timezone, date).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRolloverLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

func (r *RolloverLogRepository) List(ctx context.Context, limit int) ([]model.RolloverLog, error) {
	var logs []model.RolloverLog
	q := r.db.WithContext(ctx).Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

// Delete clears a log row. This is the operator's escape hatch: removing a
// failed row is the only way to re-run a (timezone, date) key.
func (r *RolloverLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.RolloverLog{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRolloverLogNotFound
	}
	return nil
}
