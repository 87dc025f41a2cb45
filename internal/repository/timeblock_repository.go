package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dayplan/internal/model"
)

type TimeBlockRepository struct {
	db *gorm.DB
}

func NewTimeBlockRepository(db *gorm.DB) *TimeBlockRepository {
	return &TimeBlockRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *TimeBlockRepository) WithTx(tx *gorm.DB) *TimeBlockRepository {
	return &TimeBlockRepository{db: tx}
}

func (r *TimeBlockRepository) Create(ctx context.Context, block *model.TimeBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *TimeBlockRepository) GetOwned(ctx context.Context, userID, blockID uuid.UUID) (*model.TimeBlock, error) {
	var block model.TimeBlock
	result := r.db.WithContext(ctx).First(&block, "id = ? AND user_id = ?", blockID, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, result.Error
	}
	return &block, nil
}

// ListDay retrieves all blocks on one user's day in timeline order:
// start time first, stacking position breaking ties.
func (r *TimeBlockRepository) ListDay(ctx context.Context, userID uuid.UUID, date string) ([]model.TimeBlock, error) {
	var blocks []model.TimeBlock
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("start_time, position").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// MaxPosition returns the highest stacking position on a day, 0 when empty.
func (r *TimeBlockRepository) MaxPosition(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.TimeBlock{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("user_id = ? AND date = ?", userID, date).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

func (r *TimeBlockRepository) Update(ctx context.Context, block *model.TimeBlock) error {
	result := r.db.WithContext(ctx).Save(block)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// UpdateTimes rewrites the extents of a cascaded set of blocks.
func (r *TimeBlockRepository) UpdateTimes(ctx context.Context, blocks []model.TimeBlock) error {
	for _, b := range blocks {
		if err := r.db.WithContext(ctx).Model(&model.TimeBlock{}).
			Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"start_time": b.StartTime,
				"end_time":   b.EndTime,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *TimeBlockRepository) Delete(ctx context.Context, userID, blockID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.TimeBlock{}, "id = ? AND user_id = ?", blockID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlockNotFound
	}
	return nil
}
