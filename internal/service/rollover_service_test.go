package service_test

import (
	"context"
	"testing"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	berlin    = "Europe/Berlin"
	today     = "2026-03-02"
	yesterday = "2026-03-01"
)

func newRollover(db *gorm.DB) *service.RolloverService {
	taskRepo := repository.NewTaskRepository(db)
	return service.NewRolloverService(
		db,
		repository.NewUserRepository(db),
		taskRepo,
		repository.NewSettingsRepository(db),
		repository.NewRolloverLogRepository(db),
		service.NewPlacementService(db, taskRepo),
		2,
	)
}

func saveSettings(t *testing.T, db *gorm.DB, userID uuid.UUID, destination, position string) {
	t.Helper()
	require.NoError(t, db.Create(&model.NotificationSettings{
		ID:                  uuid.New(),
		UserID:              userID,
		RolloverDestination: destination,
		RolloverPosition:    position,
	}).Error)
}

func TestRollover_MovesIncompleteLeavesCompleted(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, berlin)
	saveSettings(t, db, user.ID, model.RolloverToBacklog, model.RolloverPositionTop)

	createTask(t, db, user.ID, "a", strPtr(yesterday), 10)
	b := createTask(t, db, user.ID, "b", strPtr(yesterday), 20)
	completeTask(t, db, b.ID)
	createTask(t, db, user.ID, "old-backlog", nil, 1024)

	runLog, err := newRollover(db).RunForTimezone(context.Background(), berlin, today)

	require.NoError(t, err)
	assert.Equal(t, model.RolloverCompleted, runLog.Status)
	assert.Equal(t, 1, runLog.UsersProcessed)
	assert.Equal(t, 0, runLog.UsersSkipped)
	assert.Equal(t, 1, runLog.TasksRolledOver)

	// A landed at the top of the backlog, above its prior head.
	assert.Equal(t, []string{"a", "old-backlog"}, bucketTitles(t, db, user.ID, nil))

	// B was completed and is untouched.
	var bDate *string
	require.NoError(t, db.Table("tasks").Where("id = ?", b.ID).Pluck("scheduled_date", &bDate).Error)
	require.NotNil(t, bDate)
	assert.Equal(t, yesterday, *bDate)
}

func TestRollover_SecondRunIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, berlin)
	createTask(t, db, user.ID, "a", strPtr(yesterday), 10)
	svc := newRollover(db)

	first, err := svc.RunForTimezone(context.Background(), berlin, today)
	require.NoError(t, err)
	assert.Equal(t, model.RolloverCompleted, first.Status)

	// Simulate the task drifting back so a second run would have work to do
	// if it were allowed to execute.
	createTask(t, db, user.ID, "late", strPtr(yesterday), 20)

	_, err = svc.RunForTimezone(context.Background(), berlin, today)
	assert.ErrorIs(t, err, repository.ErrRolloverClaimed)

	// Exactly one completed log row for the key.
	var count int64
	require.NoError(t, db.Model(&model.RolloverLog{}).
		Where("timezone = ? AND rollover_date = ?", berlin, today).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The late task was not moved by the rejected second attempt.
	var lateDate *string
	require.NoError(t, db.Table("tasks").Where("title = ?", "late").Pluck("scheduled_date", &lateDate).Error)
	require.NotNil(t, lateDate)
	assert.Equal(t, yesterday, *lateDate)
}

func TestRollover_DefaultsToTodayTop(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, berlin) // no settings row saved

	createTask(t, db, user.ID, "overdue", strPtr(yesterday), 10)
	createTask(t, db, user.ID, "planned", strPtr(today), 1024)

	_, err := newRollover(db).RunForTimezone(context.Background(), berlin, today)

	require.NoError(t, err)
	assert.Equal(t, []string{"overdue", "planned"}, bucketTitles(t, db, user.ID, strPtr(today)))
}

func TestRollover_BottomAppendsAfterExisting(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, berlin)
	saveSettings(t, db, user.ID, model.RolloverToToday, model.RolloverPositionBottom)

	createTask(t, db, user.ID, "overdue-1", strPtr("2026-02-27"), 10)
	createTask(t, db, user.ID, "overdue-2", strPtr(yesterday), 20)
	createTask(t, db, user.ID, "planned", strPtr(today), 1024)

	_, err := newRollover(db).RunForTimezone(context.Background(), berlin, today)

	require.NoError(t, err)
	assert.Equal(t, []string{"planned", "overdue-1", "overdue-2"}, bucketTitles(t, db, user.ID, strPtr(today)))
}

func TestRollover_TopPreservesRelativeOrder(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, berlin)
	saveSettings(t, db, user.ID, model.RolloverToBacklog, model.RolloverPositionTop)

	createTask(t, db, user.ID, "oldest", strPtr("2026-02-27"), 10)
	createTask(t, db, user.ID, "newer", strPtr(yesterday), 20)
	createTask(t, db, user.ID, "backlog-head", nil, 1024)

	_, err := newRollover(db).RunForTimezone(context.Background(), berlin, today)

	require.NoError(t, err)
	assert.Equal(t, []string{"oldest", "newer", "backlog-head"}, bucketTitles(t, db, user.ID, nil))
}

func TestRollover_OnlyMatchingTimezone(t *testing.T) {
	db := setupTestDB(t)
	inBatch := createUser(t, db, berlin)
	outside := createUser(t, db, "America/New_York")

	createTask(t, db, inBatch.ID, "moved", strPtr(yesterday), 10)
	createTask(t, db, outside.ID, "stays", strPtr(yesterday), 10)

	runLog, err := newRollover(db).RunForTimezone(context.Background(), berlin, today)

	require.NoError(t, err)
	assert.Equal(t, 1, runLog.UsersProcessed)
	assert.Equal(t, 1, runLog.TasksRolledOver)

	var staysDate *string
	require.NoError(t, db.Table("tasks").Where("title = ?", "stays").Pluck("scheduled_date", &staysDate).Error)
	require.NotNil(t, staysDate)
	assert.Equal(t, yesterday, *staysDate)
}

func TestRollover_PerUserPreferencesInsideSharedBatch(t *testing.T) {
	db := setupTestDB(t)
	toBacklog := createUser(t, db, berlin)
	toToday := createUser(t, db, berlin)
	saveSettings(t, db, toBacklog.ID, model.RolloverToBacklog, model.RolloverPositionTop)
	saveSettings(t, db, toToday.ID, model.RolloverToToday, model.RolloverPositionBottom)

	createTask(t, db, toBacklog.ID, "goes-to-backlog", strPtr(yesterday), 10)
	createTask(t, db, toToday.ID, "goes-to-today", strPtr(yesterday), 10)

	runLog, err := newRollover(db).RunForTimezone(context.Background(), berlin, today)

	require.NoError(t, err)
	assert.Equal(t, 2, runLog.UsersProcessed)
	assert.Equal(t, []string{"goes-to-backlog"}, bucketTitles(t, db, toBacklog.ID, nil))
	assert.Equal(t, []string{"goes-to-today"}, bucketTitles(t, db, toToday.ID, strPtr(today)))
}

func TestRollover_NoUsersStillCompletes(t *testing.T) {
	db := setupTestDB(t)

	runLog, err := newRollover(db).RunForTimezone(context.Background(), berlin, today)

	require.NoError(t, err)
	assert.Equal(t, model.RolloverCompleted, runLog.Status)
	assert.Equal(t, 0, runLog.UsersProcessed)
	assert.Equal(t, 0, runLog.TasksRolledOver)
	assert.NotNil(t, runLog.FinishedAt)
}
