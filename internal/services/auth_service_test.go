package services

import (
	"testing"
	"time"

	"github.com/planprove/backend/internal/config"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:    "runner@example.com",
		Password: "correct-horse",
		Name:     "Runner",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "runner@example.com", resp.User.Email)

	// Duplicate email is refused.
	_, err = svc.Register(&dto.RegisterRequest{
		Email:    "runner@example.com",
		Password: "whatever",
		Name:     "Imposter",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(&dto.LoginRequest{
		Email:    "runner@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	_, err = svc.Login(&dto.LoginRequest{
		Email:    "runner@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	reg, err := svc.Register(&dto.RegisterRequest{
		Email:    "runner@example.com",
		Password: "correct-horse",
		Name:     "Runner",
	})
	require.NoError(t, err)

	rotated, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, rotated.RefreshToken)

	// The old token died with the rotation.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	reg, err := svc.Register(&dto.RegisterRequest{
		Email:    "runner@example.com",
		Password: "correct-horse",
		Name:     "Runner",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: reg.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	reg, err := svc.Register(&dto.RegisterRequest{
		Email:    "runner@example.com",
		Password: "correct-horse",
		Name:     "Runner",
	})
	require.NoError(t, err)
	userID := reg.User.ID

	now := time.Now()
	seedPlan(t, db, userID, now, now.Add(30*24*time.Hour))

	assert.ErrorIs(t, svc.DeleteAccount(userID, "wrong"), ErrInvalidCredentials)

	require.NoError(t, svc.DeleteAccount(userID, "correct-horse"))

	var users, plans, milestones int64
	db.Unscoped().Model(&models.User{}).Where("id = ?", userID).Count(&users)
	db.Unscoped().Model(&models.Plan{}).Where("user_id = ?", userID).Count(&plans)
	db.Model(&models.Milestone{}).Count(&milestones)
	assert.EqualValues(t, 0, users)
	assert.EqualValues(t, 0, plans)
	assert.EqualValues(t, 0, milestones)
}
