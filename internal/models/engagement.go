package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanLike records who liked a plan so the like toggle stays idempotent.
type PlanLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_likes_pair" json:"plan_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_likes_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VerificationVote is a user's one-shot outcome prediction on a plan,
// cast while the plan sits in its verification window.
type VerificationVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_verification_votes_pair" json:"plan_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_verification_votes_pair" json:"user_id"`
	Approve   bool      `gorm:"not null" json:"approve"`
	CreatedAt time.Time `json:"created_at"`
}
