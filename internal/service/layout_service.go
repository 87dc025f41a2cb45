package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/timeline"
)

// LayoutService keeps a day's timeline coherent as blocks are created,
// resized, or dragged to new slots. Overlap at rest is legal; the cascade
// only runs when an interactive change grows or moves a block.
type LayoutService struct {
	db       *gorm.DB
	blocks   *repository.TimeBlockRepository
	gridMins int
}

func NewLayoutService(db *gorm.DB, blocks *repository.TimeBlockRepository, gridMins int) *LayoutService {
	if gridMins <= 0 {
		gridMins = timeline.DefaultGridMins
	}
	return &LayoutService{db: db, blocks: blocks, gridMins: gridMins}
}

// PlaceBlock creates a block with snapped edges. A new block stacks at the
// end of its day's position order, so same-start blocks keep drop order.
func (s *LayoutService) PlaceBlock(ctx context.Context, userID uuid.UUID, date string, startTime, endTime int, taskID *uuid.UUID, color string) (*model.TimeBlock, error) {
	startTime = timeline.Snap(startTime, s.gridMins)
	endTime = timeline.Snap(endTime, s.gridMins)
	if err := timeline.ValidateRange(startTime, endTime); err != nil {
		return nil, err
	}

	var block *model.TimeBlock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocks := s.blocks.WithTx(tx)

		maxPos, err := blocks.MaxPosition(ctx, userID, date)
		if err != nil {
			return err
		}

		block = &model.TimeBlock{
			ID:        uuid.New(),
			UserID:    userID,
			TaskID:    taskID,
			Date:      date,
			StartTime: startTime,
			EndTime:   endTime,
			Position:  maxPos + 1,
		}
		if color != "" {
			block.Color = color
		}
		return blocks.Create(ctx, block)
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// ResizeBlock applies new snapped edges and cascades every subsequently
// overlapping block forward, all in one transaction. If any shifted block
// would cross the end of the day the whole resize is rejected.
func (s *LayoutService) ResizeBlock(ctx context.Context, userID, blockID uuid.UUID, newStart, newEnd *int) (*model.TimeBlock, []model.TimeBlock, error) {
	var (
		updated  *model.TimeBlock
		cascaded []model.TimeBlock
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocks := s.blocks.WithTx(tx)

		block, err := blocks.GetOwned(ctx, userID, blockID)
		if err != nil {
			return err
		}

		start := block.StartTime
		end := block.EndTime
		if newStart != nil {
			start = timeline.Snap(*newStart, s.gridMins)
		}
		if newEnd != nil {
			end = timeline.Snap(*newEnd, s.gridMins)
		}

		day, err := blocks.ListDay(ctx, userID, block.Date)
		if err != nil {
			return err
		}

		cascaded, err = timeline.Cascade(day, block.ID, start, end)
		if err != nil {
			return err
		}

		block.StartTime = start
		block.EndTime = end
		if err := blocks.Update(ctx, block); err != nil {
			return err
		}
		if err := blocks.UpdateTimes(ctx, cascaded); err != nil {
			return err
		}
		updated = block
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, cascaded, nil
}

// MoveBlockToSlot gives a block a new snapped start (and possibly day),
// keeping its duration, with the same cascade rule as resize.
func (s *LayoutService) MoveBlockToSlot(ctx context.Context, userID, blockID uuid.UUID, date string, startTime int) (*model.TimeBlock, []model.TimeBlock, error) {
	var (
		updated  *model.TimeBlock
		cascaded []model.TimeBlock
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocks := s.blocks.WithTx(tx)

		block, err := blocks.GetOwned(ctx, userID, blockID)
		if err != nil {
			return err
		}

		duration := block.DurationMins()
		start := timeline.Snap(startTime, s.gridMins)
		end := start + duration

		day, err := blocks.ListDay(ctx, userID, date)
		if err != nil {
			return err
		}

		if date != block.Date {
			// Landing on another day: stack at the end of that day's
			// position order and cascade against its blocks.
			maxPos, err := blocks.MaxPosition(ctx, userID, date)
			if err != nil {
				return err
			}
			block.Date = date
			block.Position = maxPos + 1
			day = append(day, *block)
		}

		cascaded, err = timeline.Cascade(day, block.ID, start, end)
		if err != nil {
			return err
		}

		block.StartTime = start
		block.EndTime = end
		if err := blocks.Update(ctx, block); err != nil {
			return err
		}
		if err := blocks.UpdateTimes(ctx, cascaded); err != nil {
			return err
		}
		updated = block
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, cascaded, nil
}

// ListDay returns the blocks of one day in timeline order.
func (s *LayoutService) ListDay(ctx context.Context, userID uuid.UUID, date string) ([]model.TimeBlock, error) {
	return s.blocks.ListDay(ctx, userID, date)
}

// DeleteBlock removes a block; linked tasks are untouched (weak reference).
func (s *LayoutService) DeleteBlock(ctx context.Context, userID, blockID uuid.UUID) error {
	return s.blocks.Delete(ctx, userID, blockID)
}
