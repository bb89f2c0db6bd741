package services

import (
	"testing"
	"time"

	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitEvidence(t *testing.T) {
	db := newTestDB(t)
	svc := NewEvidenceService(db)

	owner := seedUser(t, db, "owner@example.com")
	now := time.Now()
	plan := seedPlan(t, db, owner.ID, now.Add(-24*time.Hour), now.Add(30*24*time.Hour))
	milestone := plan.Milestones[0]

	req := dto.SubmitEvidenceRequest{
		Image:            "https://cdn.example.com/run.jpg",
		VerificationType: models.VerificationPhotoText,
		Answers:          models.ReflectionAnswers{Q1: "getting out the door", Q3: "5km without stopping"},
	}

	log, err := svc.SubmitEvidence(plan.ID, milestone.ID, owner.ID, req, now)
	require.NoError(t, err)
	assert.Equal(t, milestone.ID, log.MilestoneID)
	assert.Equal(t, milestone.Title, log.MilestoneTitle)

	var stored models.Milestone
	require.NoError(t, db.First(&stored, "id = ?", milestone.ID).Error)
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, models.VerificationPhotoText, stored.VerificationType)

	// A milestone accepts evidence exactly once.
	_, err = svc.SubmitEvidence(plan.ID, milestone.ID, owner.ID, req, now)
	assert.ErrorIs(t, err, ErrMilestoneCompleted)

	var logCount int64
	db.Model(&models.ProgressLog{}).Where("plan_id = ?", plan.ID).Count(&logCount)
	assert.EqualValues(t, 1, logCount)
}

func TestSubmitEvidenceAfterGrace(t *testing.T) {
	db := newTestDB(t)
	svc := NewEvidenceService(db)

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now().Add(-20 * 24 * time.Hour)
	plan := seedPlan(t, db, owner.ID, start, time.Now().Add(40*24*time.Hour))
	milestone := plan.Milestones[0]

	req := dto.SubmitEvidenceRequest{
		Image:            "https://cdn.example.com/run.jpg",
		VerificationType: models.VerificationPhotoText,
	}

	// One second past the grace period: refused, and nothing is written.
	late := milestone.DueDate.Add(24*time.Hour + time.Second)
	_, err := svc.SubmitEvidence(plan.ID, milestone.ID, owner.ID, req, late)
	assert.ErrorIs(t, err, ErrEvidenceWindow)

	var stored models.Milestone
	require.NoError(t, db.First(&stored, "id = ?", milestone.ID).Error)
	assert.False(t, stored.IsCompleted)

	var logCount int64
	db.Model(&models.ProgressLog{}).Where("plan_id = ?", plan.ID).Count(&logCount)
	assert.EqualValues(t, 0, logCount)

	// At the grace boundary itself the submission still lands.
	_, err = svc.SubmitEvidence(plan.ID, milestone.ID, owner.ID, req, milestone.DueDate.Add(24*time.Hour))
	require.NoError(t, err)
}

func TestSubmitEvidenceOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewEvidenceService(db)

	owner := seedUser(t, db, "owner@example.com")
	stranger := seedUser(t, db, "stranger@example.com")
	now := time.Now()
	plan := seedPlan(t, db, owner.ID, now, now.Add(30*24*time.Hour))

	req := dto.SubmitEvidenceRequest{
		Image:            "https://cdn.example.com/run.jpg",
		VerificationType: models.VerificationBiometric,
	}
	_, err := svc.SubmitEvidence(plan.ID, plan.Milestones[0].ID, stranger.ID, req, now)
	assert.ErrorIs(t, err, ErrNotPlanOwner)
}

func TestSubmitEvidenceValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewEvidenceService(db)

	owner := seedUser(t, db, "owner@example.com")
	now := time.Now()
	plan := seedPlan(t, db, owner.ID, now, now.Add(30*24*time.Hour))
	milestoneID := plan.Milestones[0].ID

	_, err := svc.SubmitEvidence(plan.ID, milestoneID, owner.ID, dto.SubmitEvidenceRequest{
		VerificationType: models.VerificationPhotoText,
	}, now)
	assert.ErrorIs(t, err, ErrImageRequired)

	_, err = svc.SubmitEvidence(plan.ID, milestoneID, owner.ID, dto.SubmitEvidenceRequest{
		Image:            "https://cdn.example.com/run.jpg",
		VerificationType: "SELFIE_VIDEO",
	}, now)
	assert.ErrorIs(t, err, ErrInvalidVerification)
}
