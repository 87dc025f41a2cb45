package service_test

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.TimeBlock{},
		&model.RolloverLog{},
		&model.NotificationSettings{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

func createUser(t *testing.T, db *gorm.DB, timezone string) *model.User {
	t.Helper()
	user := &model.User{
		ID:             uuid.New(),
		Email:          uuid.NewString() + "@example.com",
		HashedPassword: "hashed",
		Name:           "Test User",
		Timezone:       timezone,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTask seeds a task directly, bypassing placement, so tests control the
// raw position values.
func createTask(t *testing.T, db *gorm.DB, userID uuid.UUID, title string, date *string, pos int) *model.Task {
	t.Helper()
	task := &model.Task{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		ScheduledDate: date,
		Priority:      model.PriorityP2,
		Position:      pos,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func completeTask(t *testing.T, db *gorm.DB, taskID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Model(&model.Task{}).Where("id = ?", taskID).Update("completed_at", &now).Error)
}

func newPlacement(db *gorm.DB) *service.PlacementService {
	return service.NewPlacementService(db, repository.NewTaskRepository(db))
}

// bucketTitles reads a bucket's open tasks back in position order.
func bucketTitles(t *testing.T, db *gorm.DB, userID uuid.UUID, date *string) []string {
	t.Helper()
	tasks, err := repository.NewTaskRepository(db).ListBucketOpen(context.Background(), userID, date)
	require.NoError(t, err)
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	return titles
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
