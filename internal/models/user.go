package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account plus its public challenge profile. TrustScore is
// derived (success history + face verification) and is only ever written by
// the trust recompute; handlers must treat it as read-only.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	Role           string         `gorm:"size:20;default:'user'" json:"role"`
	Name           string         `gorm:"size:100;not null" json:"name"`
	Avatar         string         `gorm:"type:text" json:"avatar"`
	Bio            string         `gorm:"size:500" json:"bio"`
	TrustScore     int            `gorm:"default:0" json:"trust_score"`
	IsFaceVerified bool           `gorm:"default:false" json:"is_face_verified"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Follow links a follower to the user they follow.
type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
