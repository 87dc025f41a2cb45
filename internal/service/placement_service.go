package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/position"
	"dayplan/internal/repository"
)

// IndexEnd targets the end of the destination bucket; MoveTask clamps it.
const IndexEnd = math.MaxInt32

var (
	// ErrPlacementConflict means a concurrent writer took the computed
	// position key. Retried once internally before surfacing.
	ErrPlacementConflict = errors.New("placement conflict")

	// ErrInvalidReorder means the submitted permutation does not match the
	// bucket's current open tasks.
	ErrInvalidReorder = errors.New("reorder does not match bucket contents")
)

// PlacementService is the only path that changes a task's bucket and position
// together. A bucket is identified by a *string date; nil is the backlog.
type PlacementService struct {
	db    *gorm.DB
	tasks *repository.TaskRepository
}

func NewPlacementService(db *gorm.DB, tasks *repository.TaskRepository) *PlacementService {
	return &PlacementService{db: db, tasks: tasks}
}

// MoveTask places a task at the given 0-based index among the destination
// bucket's open tasks. Other tasks keep their position values except on the
// renumbering path, which rewrites the whole bucket inside the same
// transaction. A position collision with a concurrent writer is retried once
// with freshly read neighbors.
func (s *PlacementService) MoveTask(ctx context.Context, userID, taskID uuid.UUID, bucket *string, index int) (*model.Task, error) {
	task, err := s.moveTaskOnce(ctx, s.db, userID, taskID, bucket, index)
	if errors.Is(err, ErrPlacementConflict) {
		task, err = s.moveTaskOnce(ctx, s.db, userID, taskID, bucket, index)
	}
	return task, err
}

// moveTaskTx is MoveTask running inside an already-open transaction, for
// callers (the rollover batch) that group several moves atomically.
func (s *PlacementService) moveTaskTx(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID, bucket *string, index int) (*model.Task, error) {
	return s.placeInBucket(ctx, tx, userID, taskID, bucket, index)
}

func (s *PlacementService) moveTaskOnce(ctx context.Context, db *gorm.DB, userID, taskID uuid.UUID, bucket *string, index int) (*model.Task, error) {
	var moved *model.Task
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.placeInBucket(ctx, tx, userID, taskID, bucket, index)
		if err != nil {
			return err
		}
		moved = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *PlacementService) placeInBucket(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID, bucket *string, index int) (*model.Task, error) {
	tasks := s.tasks.WithTx(tx)

	task, err := tasks.GetOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	// Completed tasks are invisible to index counting; the moved task itself
	// is taken out of the destination ordering before neighbors are read.
	open, err := tasks.ListBucketOpen(ctx, userID, bucket)
	if err != nil {
		return nil, err
	}
	others := open[:0:0]
	for _, t := range open {
		if t.ID != taskID {
			others = append(others, t)
		}
	}

	if index < 0 {
		index = 0
	}
	if index > len(others) {
		index = len(others)
	}

	var before, after *int
	if index > 0 {
		before = &others[index-1].Position
	}
	if index < len(others) {
		after = &others[index].Position
	}

	pos, err := position.KeyBetween(before, after)
	if errors.Is(err, position.ErrNoRoom) {
		pos, err = s.renumberAndPlace(ctx, tasks, others, index)
	}
	if err != nil {
		return nil, fmt.Errorf("compute position: %w", err)
	}

	// A concurrent placement into the same bucket may have landed on the
	// same key between our read and write; surface it for one retry.
	occupied, err := tasks.CountAtPosition(ctx, userID, bucket, pos, taskID)
	if err != nil {
		return nil, err
	}
	if occupied > 0 {
		return nil, ErrPlacementConflict
	}

	if err := tasks.UpdatePlacement(ctx, taskID, bucket, pos); err != nil {
		return nil, err
	}

	task.ScheduledDate = bucket
	task.Position = pos
	return task, nil
}

// renumberAndPlace rewrites the bucket's keys with fresh gaps (relative order
// untouched) and returns the key for the requested slot.
func (s *PlacementService) renumberAndPlace(ctx context.Context, tasks *repository.TaskRepository, others []model.Task, index int) (int, error) {
	ids := make([]uuid.UUID, len(others))
	for i, t := range others {
		ids[i] = t.ID
	}
	keys := position.Renumber(ids)
	if err := tasks.UpdatePositions(ctx, keys); err != nil {
		return 0, err
	}

	var before, after *int
	if index > 0 {
		v := keys[ids[index-1]]
		before = &v
	}
	if index < len(ids) {
		v := keys[ids[index]]
		after = &v
	}
	return position.KeyBetween(before, after)
}

// ReorderBucket applies a full permutation of the bucket's open tasks in one
// transaction, either fully committed or fully rolled back.
func (s *PlacementService) ReorderBucket(ctx context.Context, userID uuid.UUID, bucket *string, orderedIDs []uuid.UUID) ([]model.Task, error) {
	var reordered []model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		open, err := tasks.ListBucketOpen(ctx, userID, bucket)
		if err != nil {
			return err
		}
		if len(open) != len(orderedIDs) {
			return ErrInvalidReorder
		}
		current := make(map[uuid.UUID]bool, len(open))
		for _, t := range open {
			current[t.ID] = true
		}
		for _, id := range orderedIDs {
			if !current[id] {
				return ErrInvalidReorder
			}
			delete(current, id)
		}

		if err := tasks.UpdatePositions(ctx, position.Renumber(orderedIDs)); err != nil {
			return err
		}

		reordered, err = tasks.ListBucketOpen(ctx, userID, bucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}
