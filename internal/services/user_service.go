package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/planprove/backend/internal/dto"
	"github.com/planprove/backend/internal/engine"
	"github.com/planprove/backend/internal/models"
	"gorm.io/gorm"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// UserService owns profiles, the follow graph, face verification and the
// trust score recompute. The trust score changes only when a plan reaches a
// terminal state or the face verification flag flips.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetProfile(userID uuid.UUID) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var followers, following int64
	s.db.Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&followers)
	s.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following)

	return &dto.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Avatar:         user.Avatar,
		Bio:            user.Bio,
		TrustScore:     user.TrustScore,
		IsFaceVerified: user.IsFaceVerified,
		Followers:      followers,
		Following:      following,
	}, nil
}

// ToggleFollow follows the target if not yet followed, unfollows otherwise.
// Returns whether the caller now follows the target.
func (s *UserService) ToggleFollow(followerID, followeeID uuid.UUID) (bool, error) {
	if followerID == followeeID {
		return false, ErrSelfFollow
	}

	var existing models.Follow
	err := s.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).First(&existing).Error
	if err == nil {
		if err := s.db.Delete(&existing).Error; err != nil {
			return true, err
		}
		return false, nil
	}

	follow := models.Follow{
		ID:         uuid.New(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
	if err := s.db.Create(&follow).Error; err != nil {
		return false, err
	}
	return true, nil
}

// VerifyFace marks the user as identity-verified. The flag comes from an
// external identity collaborator and is set once; a recompute follows so
// the 30-point face share lands immediately.
func (s *UserService) VerifyFace(userID uuid.UUID) error {
	result := s.db.Model(&models.User{}).
		Where("id = ? AND is_face_verified = false", userID).
		Update("is_face_verified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Already verified (or missing) - nothing to recompute.
		return nil
	}
	return s.RecomputeTrustScore(userID)
}

// RecomputeTrustScore re-derives the user's trust score from the outcomes
// of their terminal plans plus the face verification flag.
func (s *UserService) RecomputeTrustScore(userID uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	var outcomes []models.PlanStatus
	if err := s.db.Model(&models.Plan{}).
		Where("user_id = ?", userID).
		Pluck("status", &outcomes).Error; err != nil {
		return fmt.Errorf("failed to load plan outcomes: %w", err)
	}

	score := engine.TrustScore(user.IsFaceVerified, outcomes)
	if score == user.TrustScore {
		return nil
	}

	if err := s.db.Model(&user).Update("trust_score", score).Error; err != nil {
		return fmt.Errorf("failed to store trust score: %w", err)
	}
	slog.Info("trust score recomputed", "user_id", userID.String(), "score", score)
	return nil
}
