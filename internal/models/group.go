package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupChallenge is a curated challenge that several users run in parallel,
// each through their own plan. It carries no lifecycle of its own; the read
// surface composes participant progress from each plan.
type GroupChallenge struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Image       string         `gorm:"type:text" json:"image"`
	Category    string         `gorm:"size:50;index" json:"category"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// GroupParticipant joins a user's plan into a group challenge.
type GroupParticipant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_participants_pair" json:"group_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_participants_pair" json:"user_id"`
	PlanID    uuid.UUID `gorm:"type:uuid;not null" json:"plan_id"`
	CreatedAt time.Time `json:"created_at"`
}
