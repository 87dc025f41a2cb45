package model

import (
	"time"

	"github.com/google/uuid"
)

// Rollover run statuses.
const (
	RolloverRunning   = "running"
	RolloverCompleted = "completed"
	RolloverFailed    = "failed"
)

// RolloverLog records one nightly rollover run per (timezone, date). The
// uniqueness constraint doubles as the concurrency gate: whichever worker
// inserts the row first owns the run, everyone else backs off.
type RolloverLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Timezone        string    `gorm:"not null;uniqueIndex:idx_rollover_tz_date"`
	RolloverDate    string    `gorm:"not null;uniqueIndex:idx_rollover_tz_date"` // YYYY-MM-DD
	Status          string    `gorm:"not null;check:status IN ('running', 'completed', 'failed')"`
	UsersProcessed  int       `gorm:"not null;default:0"`
	UsersSkipped    int       `gorm:"not null;default:0"`
	TasksRolledOver int       `gorm:"not null;default:0"`
	StartedAt       time.Time `gorm:"not null"`
	FinishedAt      *time.Time
	DurationMs      int64
	ErrorMessage    *string
}
