package model

import (
	"time"

	"github.com/google/uuid"
)

// Where unfinished tasks land after the nightly rollover.
const (
	RolloverToBacklog = "backlog"
	RolloverToToday   = "today"
)

// Where in the destination bucket rolled-over tasks are inserted.
const (
	RolloverPositionTop    = "top"
	RolloverPositionBottom = "bottom"
)

// NotificationSettings holds per-user rollover policy. Written only through
// the settings endpoint; the scheduling core reads it and never mutates it.
type NotificationSettings struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	RolloverDestination string    `gorm:"not null;default:'today';check:rollover_destination IN ('backlog', 'today')"`
	RolloverPosition    string    `gorm:"not null;default:'top';check:rollover_position IN ('top', 'bottom')"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time

	User User `gorm:"foreignKey:UserID"`
}
