package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical format for day buckets and block dates.
// Dates are stored as plain YYYY-MM-DD strings so that "local calendar day"
// comparisons stay exact regardless of the user's timezone.
const DateLayout = "2006-01-02"

// Task priorities, most urgent first.
const (
	PriorityP0 = "P0"
	PriorityP1 = "P1"
	PriorityP2 = "P2"
	PriorityP3 = "P3"
)

type Task struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"not null"`
	Notes         string
	ScheduledDate *string    `gorm:"index"` // YYYY-MM-DD; nil means backlog
	Priority      string     `gorm:"not null;default:'P2';check:priority IN ('P0', 'P1', 'P2', 'P3')"`
	Position      int        `gorm:"not null"`
	EstimatedMins *int
	ActualMins    *int
	CompletedAt   *time.Time
	SeriesID      *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User User `gorm:"foreignKey:UserID"`
}
