package services

import (
	"testing"
	"time"

	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFollow(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	_, err := svc.ToggleFollow(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)

	following, err := svc.ToggleFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	profile, err := svc.GetProfile(bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.Followers)
	assert.EqualValues(t, 0, profile.Following)

	following, err = svc.ToggleFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	profile, err = svc.GetProfile(bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, profile.Followers)
}

func TestVerifyFace(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := seedUser(t, db, "user@example.com")

	require.NoError(t, svc.VerifyFace(user.ID))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.IsFaceVerified)
	assert.Equal(t, 30, stored.TrustScore)

	// Verifying again is a no-op.
	require.NoError(t, svc.VerifyFace(user.ID))
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, 30, stored.TrustScore)
}

func TestRecomputeTrustScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := seedUser(t, db, "user@example.com")
	now := time.Now()

	// Three successes and one abandonment: round(0.75*70) = 53.
	outcomes := []models.PlanStatus{
		models.StatusCompletedSuccess,
		models.StatusCompletedSuccess,
		models.StatusCompletedSuccess,
		models.StatusFailedByAbandonment,
		models.StatusActive, // running plans do not count
	}
	for _, status := range outcomes {
		plan := seedPlan(t, db, user.ID, now.Add(-60*24*time.Hour), now.Add(-30*24*time.Hour))
		require.NoError(t, db.Model(&models.Plan{}).
			Where("id = ?", plan.ID).
			Update("status", status).Error)
	}

	require.NoError(t, svc.RecomputeTrustScore(user.ID))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, 53, stored.TrustScore)
}
