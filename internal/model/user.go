package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	Name           string    `gorm:"not null"`
	Timezone       string    `gorm:"not null;default:'UTC'"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
