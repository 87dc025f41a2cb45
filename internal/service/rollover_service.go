package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

// RolloverService moves every unfinished past-dated task forward, once per
// (timezone, local date). The rollover_logs uniqueness constraint is the only
// concurrency guard: whichever instance claims the row runs the batch, any
// other attempt exits immediately. A failed run stays failed until an
// operator clears the row; it is never retried automatically.
type RolloverService struct {
	db        *gorm.DB
	users     *repository.UserRepository
	tasks     *repository.TaskRepository
	settings  *repository.SettingsRepository
	logs      *repository.RolloverLogRepository
	placement *PlacementService
	workers   int
}

func NewRolloverService(
	db *gorm.DB,
	users *repository.UserRepository,
	tasks *repository.TaskRepository,
	settings *repository.SettingsRepository,
	logs *repository.RolloverLogRepository,
	placement *PlacementService,
	workers int,
) *RolloverService {
	if workers < 1 {
		workers = 1
	}
	return &RolloverService{
		db:        db,
		users:     users,
		tasks:     tasks,
		settings:  settings,
		logs:      logs,
		placement: placement,
		workers:   workers,
	}
}

// RunForTimezone claims and executes the rollover batch for one timezone's
// local date. Returns repository.ErrRolloverClaimed when another worker
// already owns the run. Per-user failures are counted as skipped and logged;
// they never abort the rest of the batch.
func (s *RolloverService) RunForTimezone(ctx context.Context, timezone, date string) (*model.RolloverLog, error) {
	runLog, err := s.logs.Claim(ctx, timezone, date)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListByTimezone(ctx, timezone)
	if err != nil {
		msg := err.Error()
		runLog.Status = model.RolloverFailed
		runLog.ErrorMessage = &msg
		s.finish(ctx, runLog)
		return runLog, fmt.Errorf("rollover %s %s: list users: %w", timezone, date, err)
	}

	processed, skipped, rolled := s.processUsers(ctx, users, date)

	runLog.UsersProcessed = processed
	runLog.UsersSkipped = skipped
	runLog.TasksRolledOver = rolled
	runLog.Status = model.RolloverCompleted
	s.finish(ctx, runLog)

	log.Printf("rollover %s %s: %d users, %d skipped, %d tasks", timezone, date, processed, skipped, rolled)
	return runLog, nil
}

// processUsers fans the batch out over a bounded worker pool. Each user is an
// independent bucket, so cross-user parallelism never shares a transaction.
func (s *RolloverService) processUsers(ctx context.Context, users []model.User, date string) (processed, skipped, rolled int) {
	jobs := make(chan model.User)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for user := range jobs {
				count, err := s.rolloverUser(ctx, user, date)
				mu.Lock()
				if err != nil {
					skipped++
					log.Printf("rollover: skipping user %s: %v", user.ID, err)
				} else {
					processed++
					rolled += count
				}
				mu.Unlock()
			}
		}()
	}

	for _, user := range users {
		jobs <- user
	}
	close(jobs)
	wg.Wait()
	return processed, skipped, rolled
}

// rolloverUser moves one user's overdue open tasks in a single transaction,
// honoring that user's destination and position preferences.
func (s *RolloverService) rolloverUser(ctx context.Context, user model.User, date string) (int, error) {
	destination := model.RolloverToToday
	insertAt := model.RolloverPositionTop

	prefs, err := s.settings.GetByUserID(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	if prefs != nil {
		destination = prefs.RolloverDestination
		insertAt = prefs.RolloverPosition
	}

	var bucket *string
	if destination == model.RolloverToToday {
		bucket = &date
	}

	moved := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overdue, err := s.tasks.WithTx(tx).ListOverdueOpen(ctx, user.ID, date)
		if err != nil {
			return err
		}

		for i, task := range overdue {
			index := IndexEnd
			if insertAt == model.RolloverPositionTop {
				// Successive indexes 0,1,2,... keep the tasks' relative
				// order while still landing above the bucket's old head.
				index = i
			}
			if _, err := s.placement.moveTaskTx(ctx, tx, user.ID, task.ID, bucket, index); err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

func (s *RolloverService) finish(ctx context.Context, runLog *model.RolloverLog) {
	now := time.Now().UTC()
	runLog.FinishedAt = &now
	runLog.DurationMs = now.Sub(runLog.StartedAt).Milliseconds()
	if err := s.logs.Finish(ctx, runLog); err != nil {
		log.Printf("rollover: failed to record run %s/%s: %v", runLog.Timezone, runLog.RolloverDate, err)
	}
}
