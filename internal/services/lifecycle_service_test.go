package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedVote(t *testing.T, db *gorm.DB, planID uuid.UUID, approve bool) {
	t.Helper()
	voter := seedUser(t, db, uuid.NewString()+"@example.com")
	vote := models.VerificationVote{
		ID:      uuid.New(),
		PlanID:  planID,
		UserID:  voter.ID,
		Approve: approve,
	}
	require.NoError(t, db.Create(&vote).Error)
}

func TestRefreshTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, NewUserService(db))

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now().Add(-30 * 24 * time.Hour)
	end := time.Now().Add(-12 * time.Hour)
	plan := seedPlan(t, db, owner.ID, start, end)

	// Deadline passed: the plan moves into its vote window.
	status, err := svc.Refresh(plan.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerificationPending, status)

	// Refreshing again in the window changes nothing.
	status, err = svc.Refresh(plan.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerificationPending, status)

	// Majority approval closes the window as a success.
	seedVote(t, db, plan.ID, true)
	seedVote(t, db, plan.ID, true)
	seedVote(t, db, plan.ID, false)

	afterWindow := end.Add(48*time.Hour + time.Minute)
	status, err = svc.Refresh(plan.ID, afterWindow)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompletedSuccess, status)

	// Terminal is absorbing.
	status, err = svc.Refresh(plan.ID, afterWindow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompletedSuccess, status)
}

func TestRefreshDefaultsToFail(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, NewUserService(db))

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now().Add(-30 * 24 * time.Hour)
	end := time.Now().Add(-10 * 24 * time.Hour)
	plan := seedPlan(t, db, owner.ID, start, end)

	// No votes at all and the window long closed: the plan fails, even
	// though it was never evaluated in between.
	status, err := svc.Refresh(plan.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompletedFail, status)
}

func TestRefreshTieFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, NewUserService(db))

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now().Add(-30 * 24 * time.Hour)
	end := time.Now().Add(-5 * 24 * time.Hour)
	plan := seedPlan(t, db, owner.ID, start, end)

	seedVote(t, db, plan.ID, true)
	seedVote(t, db, plan.ID, false)

	status, err := svc.Refresh(plan.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompletedFail, status)
}

func TestRefreshRecomputesTrustOnTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, NewUserService(db))

	owner := seedUser(t, db, "owner@example.com")
	start := time.Now().Add(-30 * 24 * time.Hour)
	end := time.Now().Add(-5 * 24 * time.Hour)
	plan := seedPlan(t, db, owner.ID, start, end)

	seedVote(t, db, plan.ID, true)

	status, err := svc.Refresh(plan.ID, time.Now())
	require.NoError(t, err)
	require.Equal(t, models.StatusCompletedSuccess, status)

	// One success out of one finished plan, no face verification: 70.
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", owner.ID).Error)
	assert.Equal(t, 70, stored.TrustScore)
}

func TestSweepAbandoned(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, NewUserService(db))

	owner := seedUser(t, db, "owner@example.com")
	now := time.Now()

	// Idle for three weeks with no evidence at all.
	idle := seedPlan(t, db, owner.ID, now.Add(-21*24*time.Hour), now.Add(30*24*time.Hour))

	// Same age, but evidence landed two days ago.
	active := seedPlan(t, db, owner.ID, now.Add(-21*24*time.Hour), now.Add(30*24*time.Hour))
	log := models.ProgressLog{
		ID:               uuid.New(),
		PlanID:           active.ID,
		MilestoneID:      active.Milestones[0].ID,
		MilestoneTitle:   active.Milestones[0].Title,
		Image:            "https://cdn.example.com/run.jpg",
		VerificationType: models.VerificationPhotoText,
		CreatedAt:        now.Add(-2 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(&log).Error)

	// Too young to count as abandoned.
	fresh := seedPlan(t, db, owner.ID, now.Add(-3*24*time.Hour), now.Add(30*24*time.Hour))

	failed, err := svc.SweepAbandoned(now)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	var stored models.Plan
	require.NoError(t, db.First(&stored, "id = ?", idle.ID).Error)
	assert.Equal(t, models.StatusFailedByAbandonment, stored.Status)

	require.NoError(t, db.First(&stored, "id = ?", active.ID).Error)
	assert.Equal(t, models.StatusActive, stored.Status)

	require.NoError(t, db.First(&stored, "id = ?", fresh.ID).Error)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestSweepDue(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db, NewUserService(db))

	owner := seedUser(t, db, "owner@example.com")
	now := time.Now()

	due := seedPlan(t, db, owner.ID, now.Add(-10*24*time.Hour), now.Add(-time.Hour))
	running := seedPlan(t, db, owner.ID, now.Add(-10*24*time.Hour), now.Add(10*24*time.Hour))

	transitioned, err := svc.SweepDue(now)
	require.NoError(t, err)
	assert.Equal(t, 1, transitioned)

	var stored models.Plan
	require.NoError(t, db.First(&stored, "id = ?", due.ID).Error)
	assert.Equal(t, models.StatusVerificationPending, stored.Status)

	require.NoError(t, db.First(&stored, "id = ?", running.ID).Error)
	assert.Equal(t, models.StatusActive, stored.Status)
}
