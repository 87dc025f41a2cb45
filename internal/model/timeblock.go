package model

import (
	"time"

	"github.com/google/uuid"
)

// MinutesPerDay bounds block times; EndTime may be at most 1440 (midnight).
const MinutesPerDay = 1440

type TimeBlock struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	TaskID    *uuid.UUID `gorm:"type:uuid;index"` // weak link; block may outlive the task
	Date      string     `gorm:"not null;index"`  // YYYY-MM-DD
	StartTime int        `gorm:"not null"`        // minute of day
	EndTime   int        `gorm:"not null"`
	Position  int        `gorm:"not null"` // stacking order for same start times
	Color     string     `gorm:"not null;default:'#4F46E5'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

// DurationMins is always positive for a persisted block.
func (b *TimeBlock) DurationMins() int {
	return b.EndTime - b.StartTime
}
