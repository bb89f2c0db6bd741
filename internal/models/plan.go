package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanStatus is the lifecycle state of a plan. It is a pure function of the
// deadline, milestone states and the verification vote outcome; only the
// lifecycle service may write it.
type PlanStatus string

const (
	StatusActive              PlanStatus = "ACTIVE"
	StatusVerificationPending PlanStatus = "VERIFICATION_PENDING"
	StatusCompletedSuccess    PlanStatus = "COMPLETED_SUCCESS"
	StatusCompletedFail       PlanStatus = "COMPLETED_FAIL"
	StatusFailedByAbandonment PlanStatus = "FAILED_BY_ABANDONMENT"
)

// IsTerminal reports whether no further transition may leave the state.
func (s PlanStatus) IsTerminal() bool {
	switch s {
	case StatusCompletedSuccess, StatusCompletedFail, StatusFailedByAbandonment:
		return true
	}
	return false
}

// VerificationType is the evidence class attached to a completed milestone.
type VerificationType string

const (
	VerificationPhotoText VerificationType = "PHOTO_TEXT"
	VerificationBiometric VerificationType = "OFFICIAL_BIOMETRIC"
)

// Credibility returns the evidence weight in percent: casual photo/text
// evidence carries 20, official biometric evidence 80.
func (v VerificationType) Credibility() int {
	if v == VerificationBiometric {
		return 80
	}
	return 20
}

// Valid reports whether v is a known verification type.
func (v VerificationType) Valid() bool {
	return v == VerificationPhotoText || v == VerificationBiometric
}

// Plan is a time-boxed personal challenge with a milestone breakdown.
type Plan struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Images      datatypes.JSON `json:"images"`
	Categories  datatypes.JSON `json:"categories"`
	Hashtags    datatypes.JSON `json:"hashtags"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     time.Time      `gorm:"not null;index" json:"end_date"`
	Status      PlanStatus     `gorm:"size:30;not null;default:'ACTIVE';index" json:"status"`
	Likes       int            `gorm:"default:0" json:"likes"`
	Milestones  []Milestone    `gorm:"foreignKey:PlanID" json:"milestones,omitempty"`
	Logs        []ProgressLog  `gorm:"foreignKey:PlanID" json:"logs,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Milestone is a weighted sub-goal of a plan. Milestones are created with
// the plan and never deleted once it has started; IsCompleted flips only
// through an accepted evidence submission.
type Milestone struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"plan_id"`
	Position         int              `gorm:"not null" json:"position"`
	Title            string           `gorm:"size:200;not null" json:"title"`
	DueDate          time.Time        `gorm:"not null" json:"due_date"`
	Weight           int              `gorm:"not null;default:2" json:"weight"`
	IsCompleted      bool             `gorm:"default:false" json:"is_completed"`
	VerificationType VerificationType `gorm:"size:30" json:"verification_type,omitempty"`
	Likes            int              `gorm:"default:0" json:"likes"`
	Analysis         datatypes.JSON   `json:"analysis,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ProgressLog is one evidence submission, tied 1:1 to a milestone.
// Immutable once created; rows are append-only.
type ProgressLog struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"plan_id"`
	MilestoneID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"milestone_id"`
	MilestoneTitle   string           `gorm:"size:200;not null" json:"milestone_title"`
	Image            string           `gorm:"type:text;not null" json:"image"`
	VerificationType VerificationType `gorm:"size:30;not null" json:"verification_type"`
	Answers          datatypes.JSON   `json:"answers"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ReflectionAnswers is the fixed set of free-form reflection questions
// attached to every evidence submission. Content is opaque to the engine.
type ReflectionAnswers struct {
	Q1 string `json:"q1"` // hardest part so far
	Q2 string `json:"q2"` // what was unexpected
	Q3 string `json:"q3"` // what was achieved
	Q4 string `json:"q4"` // why it worked
	Q5 string `json:"q5"` // what needs improving
	Q6 string `json:"q6"` // how to improve
	Q7 string `json:"q7"` // closing words
}
