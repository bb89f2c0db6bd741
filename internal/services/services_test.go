package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.RefreshToken{},
		&models.Plan{},
		&models.Milestone{},
		&models.ProgressLog{},
		&models.PlanLike{},
		&models.VerificationVote{},
		&models.GroupChallenge{},
		&models.GroupParticipant{},
		&models.Report{},
		&models.Block{},
	)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "hashed",
		Name:     "Test User",
		Role:     "user",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedPlan creates an active plan with five weight-2 milestones spread over
// the plan's window.
func seedPlan(t *testing.T, db *gorm.DB, userID uuid.UUID, start, end time.Time) models.Plan {
	t.Helper()
	plan := models.Plan{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Run a half marathon",
		StartDate: start,
		EndDate:   end,
		Status:    models.StatusActive,
		CreatedAt: start,
	}
	require.NoError(t, db.Create(&plan).Error)

	span := end.Sub(start)
	for i := 1; i <= 5; i++ {
		milestone := models.Milestone{
			ID:       uuid.New(),
			PlanID:   plan.ID,
			Position: i,
			Title:    "Training block",
			DueDate:  start.Add(span * time.Duration(i) / 6),
			Weight:   2,
		}
		require.NoError(t, db.Create(&milestone).Error)
	}
	require.NoError(t, db.Preload("Milestones").First(&plan, "id = ?", plan.ID).Error)
	return plan
}

func milestoneDrafts(start, end time.Time, n int) []dto.MilestoneDraft {
	drafts := make([]dto.MilestoneDraft, 0, n)
	span := end.Sub(start)
	for i := 1; i <= n; i++ {
		drafts = append(drafts, dto.MilestoneDraft{
			Title:   "Step",
			DueDate: start.Add(span * time.Duration(i) / time.Duration(n+1)),
			Weight:  2,
		})
	}
	return drafts
}
